package models

// GradeType classifies the representation of a raw grade value.
type GradeType string

const (
	GradeTypeLetter         GradeType = "letter"
	GradeTypeNumeric        GradeType = "numeric" // 4.0 GPA scale
	GradeTypePercentage     GradeType = "percentage"
	GradeTypePassFail       GradeType = "pass_fail"
	GradeTypeStandardsBased GradeType = "standards_based"
)

// GradeStatus is the lifecycle status of a grade record.
type GradeStatus string

const (
	GradeStatusFinal      GradeStatus = "final"
	GradeStatusInProgress GradeStatus = "in_progress"
	GradeStatusIncomplete GradeStatus = "incomplete"
	GradeStatusWithdrawn  GradeStatus = "withdrawn"
	GradeStatusTransfer   GradeStatus = "transfer"
)

// GradeRecord is one raw-to-canonical grade observation.
type GradeRecord struct {
	ID               string      `json:"id"`
	StudentID        string      `json:"student_id"`
	CourseCode       string      `json:"course_code"`
	CourseName       string      `json:"course_name"`
	Term             string      `json:"term"`
	SchoolYear       string      `json:"school_year"`
	RawGrade         string      `json:"raw_grade"`
	GradeType        GradeType   `json:"grade_type"`
	LetterGrade      string      `json:"letter_grade,omitempty"`
	NumericGrade     *float64    `json:"numeric_grade,omitempty"`
	CreditsAttempted float64     `json:"credits_attempted"`
	CreditsEarned    float64     `json:"credits_earned"`
	GradePoints      float64     `json:"grade_points"`
	IsWeighted       bool        `json:"is_weighted"`
	IsHonors         bool        `json:"is_honors"`
	IsAP             bool        `json:"is_ap"`
	InstructorName   string      `json:"instructor_name,omitempty"`
	Status           GradeStatus `json:"status"`
	SourceSystem     string      `json:"source_system,omitempty"`
}

// TranscriptEntry is one deduplicated, final course grade on a transcript.
type TranscriptEntry struct {
	CourseCode       string  `json:"course_code"`
	CourseName       string  `json:"course_name"`
	Term             string  `json:"term"`
	SchoolYear       string  `json:"school_year"`
	LetterGrade      string  `json:"letter_grade"`
	CreditsAttempted float64 `json:"credits_attempted"`
	CreditsEarned    float64 `json:"credits_earned"`
	GradePoints      float64 `json:"grade_points"`
	IsWeighted       bool    `json:"is_weighted"`
}

// QualityPoints returns the GPA quality points for this entry.
func (e *TranscriptEntry) QualityPoints() float64 {
	return e.GradePoints * e.CreditsAttempted
}

// StudentTranscript aggregates a student's final grades with derived GPAs.
type StudentTranscript struct {
	StudentID             string            `json:"student_id"`
	Entries               []TranscriptEntry `json:"entries"`
	CumulativeGPA         float64           `json:"cumulative_gpa"`
	WeightedGPA           float64           `json:"weighted_gpa"`
	TotalCreditsAttempted float64           `json:"total_credits_attempted"`
	TotalCreditsEarned    float64           `json:"total_credits_earned"`
}

// weightedBonus is the flat grade-point bonus honors/AP courses receive in
// the weighted GPA calculation. It never alters stored base grade points.
const weightedBonus = 0.5

// CalculateGPA computes the cumulative and weighted GPAs from the entries.
// Entries with zero attempted credits contribute to neither sum; an empty or
// zero-credit transcript yields (0, 0), not an error.
func (t *StudentTranscript) CalculateGPA() (float64, float64) {
	if len(t.Entries) == 0 {
		t.CumulativeGPA = 0.0
		t.WeightedGPA = 0.0
		return 0.0, 0.0
	}

	var qualityPoints, weightedQualityPoints, totalCredits float64

	for _, entry := range t.Entries {
		if entry.CreditsAttempted <= 0 {
			continue
		}
		qualityPoints += entry.GradePoints * entry.CreditsAttempted
		bonus := 0.0
		if entry.IsWeighted {
			bonus = weightedBonus
		}
		weightedQualityPoints += (entry.GradePoints + bonus) * entry.CreditsAttempted
		totalCredits += entry.CreditsAttempted
	}

	t.TotalCreditsAttempted = totalCredits
	if totalCredits > 0 {
		t.CumulativeGPA = roundTo(qualityPoints/totalCredits, 3)
		t.WeightedGPA = roundTo(weightedQualityPoints/totalCredits, 3)
	} else {
		t.CumulativeGPA = 0.0
		t.WeightedGPA = 0.0
	}

	return t.CumulativeGPA, t.WeightedGPA
}
