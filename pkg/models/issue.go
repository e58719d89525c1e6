package models

import (
	"time"

	"github.com/google/uuid"
)

// IssueReason classifies a data-quality finding.
type IssueReason string

const (
	IssueReasonUnmappedCode        IssueReason = "unmapped_code"
	IssueReasonInvalidGrade        IssueReason = "invalid_grade"
	IssueReasonDuplicateGrade      IssueReason = "duplicate_grade"
	IssueReasonEnrollmentOverlap   IssueReason = "enrollment_overlap"
	IssueReasonEnrollmentGap       IssueReason = "enrollment_gap"
	IssueReasonTotalMismatch       IssueReason = "total_mismatch"
	IssueReasonUnparseableDate     IssueReason = "unparseable_date"
	IssueReasonDuplicateAttendance IssueReason = "duplicate_attendance"
	IssueReasonMissingField        IssueReason = "missing_field"
)

// Issue is a data-quality finding recorded during processing. Issues are
// accumulated and reported, never raised as errors; bad data degrades, it
// does not halt a migration.
type Issue struct {
	ID        string            `json:"id"`
	Reason    IssueReason       `json:"reason"`
	StudentID string            `json:"student_id,omitempty"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewIssue builds an issue with a fresh id and timestamp.
func NewIssue(reason IssueReason, studentID, message string) Issue {
	return Issue{
		ID:        uuid.NewString(),
		Reason:    reason,
		StudentID: studentID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// WithDetail attaches a contextual key/value to the issue.
func (i Issue) WithDetail(key, value string) Issue {
	if i.Details == nil {
		i.Details = make(map[string]string)
	}
	i.Details[key] = value
	return i
}
