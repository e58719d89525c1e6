package grades

import (
	"context"
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// TranscriptBuilder assembles official transcripts from processed grades.
type TranscriptBuilder struct {
	processor *Processor
}

// NewTranscriptBuilder creates a builder over a grade processor
func NewTranscriptBuilder(processor *Processor) *TranscriptBuilder {
	return &TranscriptBuilder{processor: processor}
}

// BuildTranscript builds a student's transcript from their grade records.
// Duplicate grades on (course, term, school year) keep the record with the
// higher grade points. Only final records with a letter grade become
// transcript entries.
func (b *TranscriptBuilder) BuildTranscript(ctx context.Context, studentID string) *models.StudentTranscript {
	_, span := tracing.StartSpan(ctx, "grades.TranscriptBuilder.BuildTranscript")
	defer span.End()

	transcript := &models.StudentTranscript{StudentID: studentID}
	grades := b.processor.grades[studentID]

	// Deduplicate, keeping the higher grade-point record
	unique := make(map[string]*models.GradeRecord)
	var keyOrder []string
	for _, grade := range grades {
		key := fmt.Sprintf("%s-%s-%s", grade.CourseCode, grade.Term, grade.SchoolYear)
		existing, ok := unique[key]
		if !ok {
			unique[key] = grade
			keyOrder = append(keyOrder, key)
		} else if grade.GradePoints > existing.GradePoints {
			unique[key] = grade
		}
	}

	for _, key := range keyOrder {
		grade := unique[key]
		if grade.Status != models.GradeStatusFinal || grade.LetterGrade == "" {
			continue
		}
		entry := models.TranscriptEntry{
			CourseCode:       grade.CourseCode,
			CourseName:       grade.CourseName,
			Term:             grade.Term,
			SchoolYear:       grade.SchoolYear,
			LetterGrade:      grade.LetterGrade,
			CreditsAttempted: grade.CreditsAttempted,
			CreditsEarned:    grade.CreditsEarned,
			GradePoints:      grade.GradePoints,
			IsWeighted:       grade.IsWeighted,
		}
		transcript.Entries = append(transcript.Entries, entry)
		transcript.TotalCreditsEarned += entry.CreditsEarned
	}

	transcript.CalculateGPA()
	b.processor.transcripts[studentID] = transcript

	return transcript
}

// GPASummary returns a student's GPA summary, building the transcript if it
// does not exist yet.
func (b *TranscriptBuilder) GPASummary(ctx context.Context, studentID string) *models.StudentTranscript {
	if transcript, ok := b.processor.transcripts[studentID]; ok {
		return transcript
	}
	return b.BuildTranscript(ctx, studentID)
}

// Transcript returns a previously built transcript.
func (b *TranscriptBuilder) Transcript(studentID string) (*models.StudentTranscript, bool) {
	t, ok := b.processor.transcripts[studentID]
	return t, ok
}
