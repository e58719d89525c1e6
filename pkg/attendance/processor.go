package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/dates"
	"github.com/Ramsey-B/clover/pkg/extractor"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// VerificationResult reports whether computed aggregate totals match the
// source system's expected counts.
type VerificationResult struct {
	Verified        bool `json:"verified"`
	ExpectedPresent int  `json:"expected_present"`
	ActualPresent   int  `json:"actual_present"`
	PresentMatch    bool `json:"present_match"`
	ExpectedAbsent  int  `json:"expected_absent"`
	ActualAbsent    int  `json:"actual_absent"`
	AbsentMatch     bool `json:"absent_match"`
}

// Stats summarizes attendance processing.
type Stats struct {
	TotalStudents        int      `json:"total_students"`
	TotalRecords         int      `json:"total_records"`
	DailySummaries       int      `json:"daily_summaries"`
	AggregatesCalculated int      `json:"aggregates_calculated"`
	IssuesFound          int      `json:"issues_found"`
	UnmappedCodes        []string `json:"unmapped_codes"`
}

// Processor normalizes attendance events and rolls them up into daily
// summaries and date-range aggregates. Unmapped codes and total mismatches
// are recorded as issues, never returned as errors.
type Processor struct {
	logger    ectologger.Logger
	extractor *extractor.Extractor
	mapper    *CodeMapper

	records        map[string][]*models.AttendanceRecord // student id -> records in insertion order
	studentOrder   []string
	dailySummaries map[string]map[time.Time]*models.DailyAttendanceSummary
	aggregates     map[string]*models.AttendanceAggregate
	issues         []models.Issue
}

// NewProcessor creates a new attendance processor
func NewProcessor(logger ectologger.Logger) *Processor {
	return &Processor{
		logger:         logger,
		extractor:      extractor.New(extractor.AttendanceAliases),
		mapper:         NewCodeMapper(),
		records:        make(map[string][]*models.AttendanceRecord),
		dailySummaries: make(map[string]map[time.Time]*models.DailyAttendanceSummary),
		aggregates:     make(map[string]*models.AttendanceAggregate),
	}
}

// Mapper returns the code mapper so callers can register custom codes.
func (p *Processor) Mapper() *CodeMapper {
	return p.mapper
}

// ProcessRecord normalizes one raw attendance event and stores it. Records
// with an unmapped code default to Absent and record an issue; unparseable
// dates fall back to today.
func (p *Processor) ProcessRecord(ctx context.Context, record map[string]any, source string) *models.AttendanceRecord {
	ctx, span := tracing.StartSpan(ctx, "attendance.Processor.ProcessRecord")
	defer span.End()

	studentID := p.extractor.String(record, "student_id")
	rawCode := p.extractor.String(record, "status")

	recordDate, ok := dates.Parse(p.extractor.String(record, "date"))
	if !ok {
		recordDate = dates.DateOnly(time.Now())
	}
	recordDate = dates.DateOnly(recordDate)

	status, wasMapped := p.mapper.MapCode(rawCode)
	if !wasMapped && rawCode != "" {
		p.issues = append(p.issues, models.NewIssue(
			models.IssueReasonUnmappedCode, studentID,
			fmt.Sprintf("unmapped attendance code %q, defaulting to Absent", rawCode),
		).WithDetail("code", rawCode).WithDetail("date", recordDate.Format("2006-01-02")))

		p.logger.WithContext(ctx).WithFields(map[string]any{
			"student_id": studentID,
			"code":       rawCode,
		}).Warn("unmapped attendance code")
	}

	attendanceType := models.AttendanceTypeDaily
	var period *int
	if v, ok := p.extractor.Int(record, "period"); ok {
		period = &v
		attendanceType = models.AttendanceTypePeriod
	}

	periodPart := 0
	if period != nil {
		periodPart = *period
	}

	rec := &models.AttendanceRecord{
		ID:             p.extractor.StringOr(record, "id", fmt.Sprintf("%s-%s-%d", studentID, recordDate.Format("2006-01-02"), periodPart)),
		StudentID:      studentID,
		Date:           recordDate,
		Status:         status,
		AttendanceType: attendanceType,
		Period:         period,
		SectionID:      p.extractor.String(record, "section_id"),
		TeacherName:    normalizers.TitleCase(p.extractor.String(record, "teacher")),
		Notes:          p.extractor.String(record, "notes"),
		SourceCode:     rawCode,
		SourceSystem:   source,
	}

	if _, ok := p.records[studentID]; !ok {
		p.studentOrder = append(p.studentOrder, studentID)
	}
	p.records[studentID] = append(p.records[studentID], rec)

	return rec
}

// FindDuplicates returns pairs of a student's records sharing (date, period),
// recording an issue per duplicate.
func (p *Processor) FindDuplicates(ctx context.Context, studentID string) [][2]*models.AttendanceRecord {
	_, span := tracing.StartSpan(ctx, "attendance.Processor.FindDuplicates")
	defer span.End()

	var duplicates [][2]*models.AttendanceRecord
	seen := make(map[string]*models.AttendanceRecord)

	for _, rec := range p.records[studentID] {
		key := rec.Date.Format("2006-01-02") + "-daily"
		if rec.Period != nil {
			key = fmt.Sprintf("%s-%d", rec.Date.Format("2006-01-02"), *rec.Period)
		}

		if existing, ok := seen[key]; ok {
			duplicates = append(duplicates, [2]*models.AttendanceRecord{existing, rec})
			p.issues = append(p.issues, models.NewIssue(
				models.IssueReasonDuplicateAttendance, studentID,
				fmt.Sprintf("duplicate attendance record on %s", rec.Date.Format("2006-01-02")),
			).WithDetail("date", rec.Date.Format("2006-01-02")))
		} else {
			seen[key] = rec
		}
	}

	return duplicates
}

// BuildDailySummary derives a student's daily status for one date from the
// period records on that date.
func (p *Processor) BuildDailySummary(ctx context.Context, studentID string, date time.Time) *models.DailyAttendanceSummary {
	_, span := tracing.StartSpan(ctx, "attendance.Processor.BuildDailySummary")
	defer span.End()

	date = dates.DateOnly(date)

	var dayRecords []models.AttendanceRecord
	for _, rec := range p.records[studentID] {
		if rec.Date.Equal(date) {
			dayRecords = append(dayRecords, *rec)
		}
	}

	summary := &models.DailyAttendanceSummary{
		StudentID:     studentID,
		Date:          date,
		DailyStatus:   models.AttendancePresent,
		PeriodRecords: dayRecords,
	}
	summary.CalculateStatus()

	if _, ok := p.dailySummaries[studentID]; !ok {
		p.dailySummaries[studentID] = make(map[time.Time]*models.DailyAttendanceSummary)
	}
	p.dailySummaries[studentID][date] = summary

	return summary
}

// CalculateAggregate rolls a student's records in [start, end] up into day
// counts and an attendance rate. Half days count as absent days.
func (p *Processor) CalculateAggregate(ctx context.Context, studentID string, start, end time.Time) *models.AttendanceAggregate {
	ctx, span := tracing.StartSpan(ctx, "attendance.Processor.CalculateAggregate")
	defer span.End()

	start = dates.DateOnly(start)
	end = dates.DateOnly(end)

	// Distinct dates with records in range, in first-seen order
	var dayOrder []time.Time
	seen := make(map[time.Time]bool)
	for _, rec := range p.records[studentID] {
		if rec.Date.Before(start) || rec.Date.After(end) {
			continue
		}
		if !seen[rec.Date] {
			seen[rec.Date] = true
			dayOrder = append(dayOrder, rec.Date)
		}
	}

	aggregate := &models.AttendanceAggregate{
		StudentID: studentID,
		StartDate: start,
		EndDate:   end,
		TotalDays: len(dayOrder),
	}

	for _, day := range dayOrder {
		summary := p.BuildDailySummary(ctx, studentID, day)
		switch summary.DailyStatus {
		case models.AttendancePresent:
			aggregate.DaysPresent++
		case models.AttendanceTardy:
			aggregate.DaysTardy++
		case models.AttendanceExcused:
			aggregate.DaysExcused++
		case models.AttendanceUnexcused:
			aggregate.DaysUnexcused++
		case models.AttendanceAbsent, models.AttendanceHalfDay:
			aggregate.DaysAbsent++
		}
	}

	aggregate.CalculateRate()
	p.aggregates[studentID] = aggregate

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"student_id":      studentID,
		"total_days":      aggregate.TotalDays,
		"attendance_rate": aggregate.AttendanceRate,
	}).Debug("attendance aggregate calculated")

	return aggregate
}

// VerifyTotals compares a student's computed aggregate against the source
// system's expected present/absent day counts. Mismatches record an issue.
// Returns an error only when no aggregate has been calculated yet.
func (p *Processor) VerifyTotals(ctx context.Context, studentID string, expectedPresent, expectedAbsent int) (*VerificationResult, error) {
	_, span := tracing.StartSpan(ctx, "attendance.Processor.VerifyTotals")
	defer span.End()

	aggregate, ok := p.aggregates[studentID]
	if !ok {
		return nil, fmt.Errorf("no aggregate data found for student %s", studentID)
	}

	actualPresent := aggregate.DaysPresent + aggregate.DaysTardy
	actualAbsent := aggregate.DaysAbsent + aggregate.DaysExcused + aggregate.DaysUnexcused

	result := &VerificationResult{
		ExpectedPresent: expectedPresent,
		ActualPresent:   actualPresent,
		PresentMatch:    actualPresent == expectedPresent,
		ExpectedAbsent:  expectedAbsent,
		ActualAbsent:    actualAbsent,
		AbsentMatch:     actualAbsent == expectedAbsent,
	}
	result.Verified = result.PresentMatch && result.AbsentMatch

	if !result.Verified {
		p.issues = append(p.issues, models.NewIssue(
			models.IssueReasonTotalMismatch, studentID,
			fmt.Sprintf("attendance totals mismatch: present %d/%d, absent %d/%d",
				actualPresent, expectedPresent, actualAbsent, expectedAbsent),
		).WithDetail("expected_present", fmt.Sprint(expectedPresent)).
			WithDetail("actual_present", fmt.Sprint(actualPresent)))
	}

	return result, nil
}

// Records returns a student's attendance records in insertion order.
func (p *Processor) Records(studentID string) []*models.AttendanceRecord {
	return p.records[studentID]
}

// Aggregate returns a previously calculated aggregate.
func (p *Processor) Aggregate(studentID string) (*models.AttendanceAggregate, bool) {
	a, ok := p.aggregates[studentID]
	return a, ok
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
	for _, r := range p.records {
		total += len(r)
	}
	summaries := 0
	for _, s := range p.dailySummaries {
		summaries += len(s)
	}

	return Stats{
		TotalStudents:        len(p.records),
		TotalRecords:         total,
		DailySummaries:       summaries,
		AggregatesCalculated: len(p.aggregates),
		IssuesFound:          len(p.issues),
		UnmappedCodes:        p.mapper.UnmappedCodes(),
	}
}

// Reset clears all state between migrations, including custom code mappings.
func (p *Processor) Reset() {
	p.mapper = NewCodeMapper()
	p.records = make(map[string][]*models.AttendanceRecord)
	p.studentOrder = nil
	p.dailySummaries = make(map[string]map[time.Time]*models.DailyAttendanceSummary)
	p.aggregates = make(map[string]*models.AttendanceAggregate)
	p.issues = nil
}
