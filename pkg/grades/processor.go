package grades

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/extractor"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Stats summarizes grade processing.
type Stats struct {
	TotalStudents    int `json:"total_students"`
	TotalGrades      int `json:"total_grades"`
	TranscriptsBuilt int `json:"transcripts_built"`
	IssuesFound      int `json:"issues_found"`
	InvalidGrades    int `json:"invalid_grades"`
	DuplicateGrades  int `json:"duplicate_grades"`
}

// Processor converts raw gradebook rows into canonical grade records.
// Unrecognizable grades are recorded as issues and kept with zero points so
// downstream counts still reconcile.
type Processor struct {
	logger    ectologger.Logger
	extractor *extractor.Extractor

	grades       map[string][]*models.GradeRecord // student id -> grades in insertion order
	studentOrder []string
	transcripts  map[string]*models.StudentTranscript
	issues       []models.Issue
}

// NewProcessor creates a new grade processor
func NewProcessor(logger ectologger.Logger) *Processor {
	return &Processor{
		logger:      logger,
		extractor:   extractor.New(extractor.GradeAliases),
		grades:      make(map[string][]*models.GradeRecord),
		transcripts: make(map[string]*models.StudentTranscript),
	}
}

// ProcessGrade converts one raw gradebook row into a canonical grade record
// and stores it. Grades that resolve to no letter record an invalid-grade
// issue but are still kept.
func (p *Processor) ProcessGrade(ctx context.Context, record map[string]any, source string) *models.GradeRecord {
	ctx, span := tracing.StartSpan(ctx, "grades.Processor.ProcessGrade")
	defer span.End()

	studentID := p.extractor.String(record, "student_id")
	rawGrade := p.extractor.String(record, "grade")

	gradeType := DetectType(rawGrade)
	letterGrade, numericGrade := p.convertGrade(rawGrade, gradeType)

	gradePoints := 0.0
	if letterGrade != "" {
		if points, ok := LetterToPoints(letterGrade); ok {
			gradePoints = points
		}
	}

	credits, _ := p.extractor.Float(record, "credits")

	courseNameUpper := strings.ToUpper(p.extractor.String(record, "course_name"))
	isHonors := strings.Contains(courseNameUpper, "HONORS") || strings.Contains(courseNameUpper, "HON")
	isAP := strings.Contains(courseNameUpper, "AP ") || strings.HasPrefix(courseNameUpper, "AP")

	term := normalizers.TitleCase(p.extractor.String(record, "term"))

	creditsEarned := 0.0
	if letterGrade != "" && letterGrade != "F" && letterGrade != "I" && letterGrade != "W" {
		creditsEarned = credits
	}

	grade := &models.GradeRecord{
		ID:               fmt.Sprintf("%s-%s-%s", studentID, p.extractor.StringOr(record, "course_code", "UNKNOWN"), term),
		StudentID:        studentID,
		CourseCode:       strings.ToUpper(p.extractor.String(record, "course_code")),
		CourseName:       normalizers.TitleCase(p.extractor.String(record, "course_name")),
		Term:             term,
		SchoolYear:       p.extractor.String(record, "year"),
		RawGrade:         rawGrade,
		GradeType:        gradeType,
		LetterGrade:      letterGrade,
		NumericGrade:     numericGrade,
		CreditsAttempted: credits,
		CreditsEarned:    creditsEarned,
		GradePoints:      gradePoints,
		IsWeighted:       isHonors || isAP,
		IsHonors:         isHonors,
		IsAP:             isAP,
		InstructorName:   normalizers.TitleCase(p.extractor.String(record, "instructor")),
		Status:           models.GradeStatusFinal,
		SourceSystem:     source,
	}

	if letterGrade == "" && rawGrade != "" {
		p.issues = append(p.issues, models.NewIssue(
			models.IssueReasonInvalidGrade, studentID,
			fmt.Sprintf("unrecognizable grade %q for course %s", rawGrade, grade.CourseCode),
		).WithDetail("course_code", grade.CourseCode).WithDetail("raw_grade", rawGrade))

		p.logger.WithContext(ctx).WithFields(map[string]any{
			"student_id":  studentID,
			"course_code": grade.CourseCode,
			"raw_grade":   rawGrade,
		}).Warn("invalid grade value")
	}

	if _, ok := p.grades[studentID]; !ok {
		p.studentOrder = append(p.studentOrder, studentID)
	}
	p.grades[studentID] = append(p.grades[studentID], grade)

	return grade
}

func (p *Processor) convertGrade(rawGrade string, gradeType models.GradeType) (string, *float64) {
	switch gradeType {
	case models.GradeTypePercentage:
		v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(rawGrade), "%"), 64)
		if err != nil {
			return "", nil
		}
		return PercentageToLetter(v), &v

	case models.GradeTypeNumeric:
		v, err := strconv.ParseFloat(strings.TrimSpace(rawGrade), 64)
		if err != nil {
			return "", nil
		}
		return NumericToLetter(v), &v

	default:
		letter := NormalizeLetterGrade(rawGrade)
		if letter == "" {
			return "", nil
		}
		if points, ok := LetterToPoints(letter); ok {
			return letter, &points
		}
		return letter, nil
	}
}

// FindDuplicates returns pairs of a student's grades sharing
// (course, term, school year), recording a duplicate-grade issue per pair.
func (p *Processor) FindDuplicates(ctx context.Context, studentID string) [][2]*models.GradeRecord {
	_, span := tracing.StartSpan(ctx, "grades.Processor.FindDuplicates")
	defer span.End()

	var duplicates [][2]*models.GradeRecord
	grades := p.grades[studentID]

	for i := 0; i < len(grades); i++ {
		for j := i + 1; j < len(grades); j++ {
			g1, g2 := grades[i], grades[j]
			if g1.CourseCode == g2.CourseCode && g1.Term == g2.Term && g1.SchoolYear == g2.SchoolYear {
				duplicates = append(duplicates, [2]*models.GradeRecord{g1, g2})
				p.issues = append(p.issues, models.NewIssue(
					models.IssueReasonDuplicateGrade, studentID,
					fmt.Sprintf("duplicate grade for course %s term %s", g1.CourseCode, g1.Term),
				).WithDetail("course_code", g1.CourseCode).WithDetail("term", g1.Term))
			}
		}
	}

	return duplicates
}

// Grades returns a student's grade records in insertion order.
func (p *Processor) Grades(studentID string) []*models.GradeRecord {
	return p.grades[studentID]
}

// StudentIDs returns the ingested student ids in first-seen order.
func (p *Processor) StudentIDs() []string {
	out := make([]string, len(p.studentOrder))
	copy(out, p.studentOrder)
	return out
}

// Issues returns the accumulated data-quality issues without clearing them.
func (p *Processor) Issues() []models.Issue {
	return p.issues
}

// Stats summarizes processing so far.
func (p *Processor) Stats() Stats {
	total := 0
	for _, g := range p.grades {
		total += len(g)
	}

	s := Stats{
		TotalStudents:    len(p.grades),
		TotalGrades:      total,
		TranscriptsBuilt: len(p.transcripts),
		IssuesFound:      len(p.issues),
	}
	for _, issue := range p.issues {
		switch issue.Reason {
		case models.IssueReasonInvalidGrade:
			s.InvalidGrades++
		case models.IssueReasonDuplicateGrade:
			s.DuplicateGrades++
		}
	}

	return s
}

// Reset clears all state between migrations.
func (p *Processor) Reset() {
	p.grades = make(map[string][]*models.GradeRecord)
	p.studentOrder = nil
	p.transcripts = make(map[string]*models.StudentTranscript)
	p.issues = nil
}
