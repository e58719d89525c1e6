package enrollment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/dates"
	"github.com/Ramsey-B/clover/pkg/extractor"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config contains configuration for the enrollment processor
type Config struct {
	GapThresholdDays int // gaps at or below this length are not flagged
}

// DefaultConfig returns default processor configuration
func DefaultConfig() Config {
	return Config{GapThresholdDays: 5}
}

// Overlap describes two spans of one student that share days.
type Overlap struct {
	First  *models.EnrollmentSpan
	Second *models.EnrollmentSpan
	Days   int
}

// Gap describes a hole between two consecutive closed spans.
type Gap struct {
	Before *models.EnrollmentSpan
	After  *models.EnrollmentSpan
	Days   int
}

// Stats summarizes enrollment processing.
type Stats struct {
	TotalStudents    int `json:"total_students"`
	TotalEnrollments int `json:"total_enrollments"`
	IssuesFound      int `json:"issues_found"`
	Overlaps         int `json:"overlaps"`
	Gaps             int `json:"gaps"`
}

// Processor ingests raw enrollment records, normalizes them into spans, and
// detects overlaps and gaps. Data problems are recorded as issues, never
// returned as errors.
type Processor struct {
	logger    ectologger.Logger
	config    Config
	extractor *extractor.Extractor
	calendar  *Calendar

	enrollments  map[string][]*models.EnrollmentSpan // student id -> spans in insertion order
	studentOrder []string
	issues       []models.Issue
}

// NewProcessor creates a new enrollment processor
func NewProcessor(logger ectologger.Logger, config Config) *Processor {
	return &Processor{
		logger:      logger,
		config:      config,
		extractor:   extractor.New(extractor.EnrollmentAliases),
		calendar:    NewCalendar(),
		enrollments: make(map[string][]*models.EnrollmentSpan),
	}
}

// Calendar returns the calendar normalizer used for term crosswalks.
func (p *Processor) Calendar() *Calendar {
	return p.calendar
}

// AddEnrollment parses a raw enrollment record into a span and stores it.
// An unparseable start date falls back to today and records an issue;
// processing never halts on bad data.
func (p *Processor) AddEnrollment(ctx context.Context, record map[string]any, source string) *models.EnrollmentSpan {
	ctx, span := tracing.StartSpan(ctx, "enrollment.Processor.AddEnrollment")
	defer span.End()

	studentID := p.extractor.String(record, "student_id")

	startRaw := p.extractor.String(record, "start_date")
	startDate, ok := dates.Parse(startRaw)
	if !ok {
		startDate = dates.DateOnly(time.Now())
		if startRaw != "" {
			p.issues = append(p.issues, models.NewIssue(
				models.IssueReasonUnparseableDate, studentID,
				fmt.Sprintf("unparseable enrollment start date %q, defaulting to today", startRaw),
			).WithDetail("field", "start_date"))
		}
	}

	var endDate *time.Time
	if d, ok := dates.Parse(p.extractor.String(record, "end_date")); ok {
		endDate = &d
	}

	enrollment := &models.EnrollmentSpan{
		ID:           p.extractor.StringOr(record, "enrollment_id", fmt.Sprintf("%s-%s", studentID, source)),
		StudentID:    studentID,
		SchoolID:     p.extractor.String(record, "school_id"),
		SchoolName:   p.extractor.String(record, "school_name"),
		GradeLevel:   p.extractor.IntOr(record, "grade_level", 0),
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       p.extractor.StringOr(record, "status", "Active"),
		EntryReason:  p.extractor.String(record, "entry_reason"),
		ExitReason:   p.extractor.String(record, "exit_reason"),
		SourceSystem: source,
	}

	if _, ok := p.enrollments[studentID]; !ok {
		p.studentOrder = append(p.studentOrder, studentID)
	}
	p.enrollments[studentID] = append(p.enrollments[studentID], enrollment)

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"student_id": studentID,
		"school_id":  enrollment.SchoolID,
		"source":     source,
	}).Debug("enrollment added")

	return enrollment
}

// FindOverlaps returns every overlapping span pair for a student. Each
// overlap with at least one shared day also records an issue.
func (p *Processor) FindOverlaps(ctx context.Context, studentID string) []Overlap {
	_, span := tracing.StartSpan(ctx, "enrollment.Processor.FindOverlaps")
	defer span.End()

	var overlaps []Overlap
	spans := p.enrollments[studentID]

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			overlapping, days := spans[i].OverlapsWith(spans[j])
			if overlapping && days > 0 {
				overlaps = append(overlaps, Overlap{First: spans[i], Second: spans[j], Days: days})
				p.issues = append(p.issues, models.NewIssue(
					models.IssueReasonEnrollmentOverlap, studentID,
					fmt.Sprintf("enrollments %s and %s overlap by %d days", spans[i].ID, spans[j].ID, days),
				).WithDetail("enrollment1", spans[i].ID).WithDetail("enrollment2", spans[j].ID))
			}
		}
	}

	return overlaps
}

// FindGaps returns the gaps between a student's consecutive closed spans
// that exceed the configured threshold, recording an issue per gap.
func (p *Processor) FindGaps(ctx context.Context, studentID string) []Gap {
	_, span := tracing.StartSpan(ctx, "enrollment.Processor.FindGaps")
	defer span.End()

	spans := sortedByStart(p.enrollments[studentID])

	var gaps []Gap
	for i := 0; i+1 < len(spans); i++ {
		hasGap, gapDays := spans[i].GapWith(spans[i+1])
		if hasGap && gapDays > p.config.GapThresholdDays {
			gaps = append(gaps, Gap{Before: spans[i], After: spans[i+1], Days: gapDays})
			p.issues = append(p.issues, models.NewIssue(
				models.IssueReasonEnrollmentGap, studentID,
				fmt.Sprintf("gap of %d days between enrollments %s and %s", gapDays, spans[i].ID, spans[i+1].ID),
			).WithDetail("enrollment1", spans[i].ID).WithDetail("enrollment2", spans[i+1].ID))
		}
	}

	return gaps
}

// Normalize resolves a student's overlapping same-school spans by sorting on
// start date and greedily extending the previous span. The greedy pass only
// compares adjacent spans; it is deterministic, not globally optimal.
func (p *Processor) Normalize(ctx context.Context, studentID string) []*models.EnrollmentSpan {
	ctx, span := tracing.StartSpan(ctx, "enrollment.Processor.Normalize")
	defer span.End()

	spans := p.enrollments[studentID]
	if len(spans) == 0 {
		return nil
	}

	sorted := sortedByStart(spans)

	resolved := []*models.EnrollmentSpan{sorted[0]}
	for _, current := range sorted[1:] {
		last := resolved[len(resolved)-1]
		overlapping, _ := last.OverlapsWith(current)

		if overlapping && last.SchoolID == current.SchoolID {
			// Same school, merge into the earlier span
			if current.EndDate != nil && (last.EndDate == nil || current.EndDate.After(*last.EndDate)) {
				last.EndDate = current.EndDate
			}
		} else {
			resolved = append(resolved, current)
		}
	}

	p.enrollments[studentID] = resolved

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"student_id": studentID,
		"span_count": len(resolved),
	}).Debug("enrollments normalized")

	return resolved
}

// ActiveEnrollment returns the first stored span containing asOf, in
// original insertion order, or nil when none is active.
func (p *Processor) ActiveEnrollment(studentID string, asOf time.Time) *models.EnrollmentSpan {
	for _, e := range p.enrollments[studentID] {
		if e.IsActive(asOf) {
			return e
		}
	}
	return nil
}

// History returns a student's spans sorted by start date.
func (p *Processor) History(studentID string) []*models.EnrollmentSpan {
	return sortedByStart(p.enrollments[studentID])
}

// Issues returns the accumulated data-quality issues without clearing them.
func (p *Processor) Issues() []models.Issue {
	return p.issues
}

// Stats summarizes processing so far.
func (p *Processor) Stats() Stats {
	total := 0
	for _, spans := range p.enrollments {
		total += len(spans)
	}

	s := Stats{
		TotalStudents:    len(p.enrollments),
		TotalEnrollments: total,
		IssuesFound:      len(p.issues),
	}
	for _, issue := range p.issues {
		switch issue.Reason {
		case models.IssueReasonEnrollmentOverlap:
			s.Overlaps++
		case models.IssueReasonEnrollmentGap:
			s.Gaps++
		}
	}

	return s
}

// StudentIDs returns the ingested student ids in first-seen order.
func (p *Processor) StudentIDs() []string {
	out := make([]string, len(p.studentOrder))
	copy(out, p.studentOrder)
	return out
}

// Reset clears all state between migrations.
func (p *Processor) Reset() {
	p.enrollments = make(map[string][]*models.EnrollmentSpan)
	p.studentOrder = nil
	p.issues = nil
	p.calendar = NewCalendar()
}

func sortedByStart(spans []*models.EnrollmentSpan) []*models.EnrollmentSpan {
	out := make([]*models.EnrollmentSpan, len(spans))
	copy(out, spans)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}
