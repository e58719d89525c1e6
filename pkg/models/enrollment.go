package models

import "time"

// TermType classifies an academic term.
type TermType string

const (
	TermTypeYear         TermType = "year"
	TermTypeSemester     TermType = "semester"
	TermTypeTrimester    TermType = "trimester"
	TermTypeQuarter      TermType = "quarter"
	TermTypeSummer       TermType = "summer"
	TermTypeIntersession TermType = "intersession"
)

// AcademicTerm is one term/session of a canonical academic calendar.
// A nested term's interval never exceeds its parent term's interval.
type AcademicTerm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TermType     TermType  `json:"term_type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	SchoolYear   string    `json:"school_year"`
	IsPrimary    bool      `json:"is_primary"`
	ParentTermID *string   `json:"parent_term_id,omitempty"`
}

// DurationDays returns the inclusive length of the term in days.
func (t *AcademicTerm) DurationDays() int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// ContainsDate reports whether a date falls within the term interval.
func (t *AcademicTerm) ContainsDate(d time.Time) bool {
	return !d.Before(t.StartDate) && !d.After(t.EndDate)
}

// OverlapsWith reports whether two terms share at least one day.
func (t *AcademicTerm) OverlapsWith(other *AcademicTerm) bool {
	return !t.StartDate.After(other.EndDate) && !other.StartDate.After(t.EndDate)
}

// EnrollmentSpan is one contiguous enrollment interval for a student at a
// school. EndDate is nil while the enrollment is ongoing. Spans are mutable
// during normalization (the end date may be extended) and treated as
// immutable once finalized.
type EnrollmentSpan struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	SchoolID     string     `json:"school_id"`
	SchoolName   string     `json:"school_name,omitempty"`
	GradeLevel   int        `json:"grade_level"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Status       string     `json:"status"`
	EntryReason  string     `json:"entry_reason,omitempty"`
	ExitReason   string     `json:"exit_reason,omitempty"`
	SourceSystem string     `json:"source_system,omitempty"`
}

// IsActive reports whether the span contains the given date.
func (e *EnrollmentSpan) IsActive(asOf time.Time) bool {
	if e.EndDate != nil {
		return !asOf.Before(e.StartDate) && !asOf.After(*e.EndDate)
	}
	return !asOf.Before(e.StartDate)
}

// OverlapsWith reports whether two spans overlap and by how many days.
// Two open-ended spans at the same school overlap by definition (zero days
// reported). Otherwise open ends are substituted with today and the standard
// closed-interval intersection is measured inclusively.
func (e *EnrollmentSpan) OverlapsWith(other *EnrollmentSpan) (bool, int) {
	if e.EndDate == nil && other.EndDate == nil {
		return e.SchoolID == other.SchoolID, 0
	}

	today := time.Now()
	selfEnd := today
	if e.EndDate != nil {
		selfEnd = *e.EndDate
	}
	otherEnd := today
	if other.EndDate != nil {
		otherEnd = *other.EndDate
	}

	if !e.StartDate.After(otherEnd) && !other.StartDate.After(selfEnd) {
		overlapStart := e.StartDate
		if other.StartDate.After(overlapStart) {
			overlapStart = other.StartDate
		}
		overlapEnd := selfEnd
		if otherEnd.Before(overlapEnd) {
			overlapEnd = otherEnd
		}
		days := int(overlapEnd.Sub(overlapStart).Hours()/24) + 1
		return true, days
	}

	return false, 0
}

// GapWith reports whether a gap exists between two spans and its length in
// days. Gaps are only computable when both spans are closed.
func (e *EnrollmentSpan) GapWith(other *EnrollmentSpan) (bool, int) {
	if e.EndDate == nil || other.EndDate == nil {
		return false, 0
	}

	if e.EndDate.Before(other.StartDate) {
		gapDays := int(other.StartDate.Sub(*e.EndDate).Hours()/24) - 1
		return gapDays > 0, gapDays
	}
	if other.EndDate.Before(e.StartDate) {
		gapDays := int(e.StartDate.Sub(*other.EndDate).Hours()/24) - 1
		return gapDays > 0, gapDays
	}

	return false, 0
}
