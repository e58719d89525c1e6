// Package pipeline orchestrates the full unification run: identity
// resolution, domain normalization, and reconciliation
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/pkg/attendance"
	"github.com/Ramsey-B/clover/pkg/enrollment"
	"github.com/Ramsey-B/clover/pkg/grades"
	"github.com/Ramsey-B/clover/pkg/identity"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/reconcile"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SourceBatch is the raw record collections exported from one source system.
type SourceBatch struct {
	Name        string
	Students    []map[string]any
	Guardians   []map[string]any
	Enrollments []map[string]any
	Grades      []map[string]any
	Attendance  []map[string]any
}

// Output is the unified dataset a run produces.
type Output struct {
	GoldenRecords []*models.GoldenRecord
	GoldenIDs     map[string]string // "source:student_id" -> golden id
	Enrollments   map[string][]*models.EnrollmentSpan
	Transcripts   map[string]*models.StudentTranscript
	Aggregates    map[string]*models.AttendanceAggregate
	Issues        []models.Issue
	IdentityStats models.IdentityStats
	Report        *models.Report
}

// Pipeline wires the processors together and runs them end to end.
type Pipeline struct {
	logger ectologger.Logger
	cfg    *config.Config

	resolver          *identity.Resolver
	enrollments       *enrollment.Processor
	gradeProcessor    *grades.Processor
	transcriptBuilder *grades.TranscriptBuilder
	attendance        *attendance.Processor
	reconciler        *reconcile.Engine
}

// New creates a pipeline from configuration
func New(logger ectologger.Logger, cfg *config.Config) *Pipeline {
	tracing.Init(cfg.AppName)

	gradeProcessor := grades.NewProcessor(logger)

	return &Pipeline{
		logger: logger,
		cfg:    cfg,
		resolver: identity.NewResolver(logger, identity.Config{
			HighThreshold:   cfg.HighConfidenceThreshold,
			MediumThreshold: cfg.MediumConfidenceThreshold,
			LowThreshold:    cfg.LowConfidenceThreshold,
		}),
		enrollments: enrollment.NewProcessor(logger, enrollment.Config{
			GapThresholdDays: cfg.GapThresholdDays,
		}),
		gradeProcessor:    gradeProcessor,
		transcriptBuilder: grades.NewTranscriptBuilder(gradeProcessor),
		attendance:        attendance.NewProcessor(logger),
		reconciler: reconcile.NewEngine(logger, reconcile.Config{
			StudentSampleSize: cfg.StudentSampleSize,
			GradeSampleSize:   cfg.GradeSampleSize,
			SamplingSeed:      cfg.SamplingSeed,
		}),
	}
}

// Resolver exposes the identity resolver for direct queries.
func (p *Pipeline) Resolver() *identity.Resolver { return p.resolver }

// Attendance exposes the attendance processor for custom code mappings.
func (p *Pipeline) Attendance() *attendance.Processor { return p.attendance }

// Run processes every source batch and reconciles the result. Data-quality
// problems accumulate in Output.Issues; Run only errors on empty input.
func (p *Pipeline) Run(ctx context.Context, sources []SourceBatch) (*Output, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	if len(sources) == 0 {
		return nil, fmt.Errorf("no source batches to process")
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"source_count": len(sources),
	})
	log.Info("starting unification run")

	output := &Output{
		GoldenIDs:   make(map[string]string),
		Enrollments: make(map[string][]*models.EnrollmentSpan),
		Transcripts: make(map[string]*models.StudentTranscript),
		Aggregates:  make(map[string]*models.AttendanceAggregate),
	}

	var allStudents, allGuardians, allEnrollments, allGrades, allAttendance []map[string]any

	for _, batch := range sources {
		p.processBatch(ctx, batch, output)

		allStudents = append(allStudents, batch.Students...)
		allGuardians = append(allGuardians, batch.Guardians...)
		allEnrollments = append(allEnrollments, batch.Enrollments...)
		allGrades = append(allGrades, batch.Grades...)
		allAttendance = append(allAttendance, batch.Attendance...)
	}

	p.buildDerived(ctx, output)

	output.GoldenRecords = p.resolver.GoldenRecords()
	output.IdentityStats = p.resolver.Stats()
	output.Issues = p.collectIssues()

	output.Report = p.reconcileRun(ctx, allStudents, allGuardians, allEnrollments, allGrades, allAttendance, output)

	log.WithFields(map[string]any{
		"golden_records": len(output.GoldenRecords),
		"issues":         len(output.Issues),
		"overall_status": output.Report.Summary.OverallStatus,
	}).Info("unification run complete")

	return output, nil
}

func (p *Pipeline) processBatch(ctx context.Context, batch SourceBatch, output *Output) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.processBatch")
	defer span.End()

	p.resolver.FindDuplicates(ctx, batch.Students, batch.Name)

	for _, student := range batch.Students {
		goldenID, _ := p.resolver.ResolveIdentity(ctx, student, batch.Name)
		sourceID := identity.SourceID(student)
		output.GoldenIDs[fmt.Sprintf("%s:%s", batch.Name, sourceID)] = goldenID
	}

	p.resolver.BuildHouseholdGraph(ctx, batch.Guardians)

	for _, record := range batch.Enrollments {
		p.enrollments.AddEnrollment(ctx, record, batch.Name)
	}
	for _, record := range batch.Grades {
		p.gradeProcessor.ProcessGrade(ctx, record, batch.Name)
	}
	for _, record := range batch.Attendance {
		p.attendance.ProcessRecord(ctx, record, batch.Name)
	}
}

// buildDerived normalizes spans, builds transcripts, and aggregates
// attendance for every student seen.
func (p *Pipeline) buildDerived(ctx context.Context, output *Output) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.buildDerived")
	defer span.End()

	for _, studentID := range p.enrollments.StudentIDs() {
		p.enrollments.FindOverlaps(ctx, studentID)
		output.Enrollments[studentID] = p.enrollments.Normalize(ctx, studentID)
		p.enrollments.FindGaps(ctx, studentID)
	}

	for _, studentID := range p.gradeProcessor.StudentIDs() {
		p.gradeProcessor.FindDuplicates(ctx, studentID)
		output.Transcripts[studentID] = p.transcriptBuilder.BuildTranscript(ctx, studentID)
	}

	for _, studentID := range p.attendance.StudentIDs() {
		p.attendance.FindDuplicates(ctx, studentID)
		if start, end, ok := recordDateRange(p.attendance.Records(studentID)); ok {
			output.Aggregates[studentID] = p.attendance.CalculateAggregate(ctx, studentID, start, end)
		}
	}
}

// reconcileRun compares the combined raw input against the canonical output.
func (p *Pipeline) reconcileRun(ctx context.Context, students, guardians, enrollments, gradeRecords, attendanceRecords []map[string]any, output *Output) *models.Report {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Pipeline.reconcileRun")
	defer span.End()

	p.reconciler.SetSourceData("students", students)
	p.reconciler.SetSourceData("guardians", guardians)
	p.reconciler.SetSourceData("enrollments", enrollments)
	p.reconciler.SetSourceData("grades", gradeRecords)
	p.reconciler.SetSourceData("attendance", attendanceRecords)

	p.reconciler.SetTargetData("students", p.targetStudents(output))
	p.reconciler.SetTargetData("guardians", guardians)
	p.reconciler.SetTargetData("relationships", p.targetRelationships())
	p.reconciler.SetTargetData("enrollments", p.targetEnrollments(output))
	p.reconciler.SetTargetData("grades", p.targetGrades())
	p.reconciler.SetTargetData("attendance", p.targetAttendance())

	return p.reconciler.RunAllChecks(ctx)
}

// targetStudents renders golden records as the canonical student collection.
// Source ids are emitted alongside the golden id so referential checks can
// resolve child records keyed by source student id.
func (p *Pipeline) targetStudents(output *Output) []map[string]any {
	var out []map[string]any
	for _, golden := range output.GoldenRecords {
		for _, sourceID := range golden.SourceIDs {
			record := map[string]any{
				"id":         golden.GoldenID,
				"student_id": sourceID,
				"first_name": golden.FirstName,
				"last_name":  golden.LastName,
				"email":      golden.Email,
				"state_id":   golden.StateID,
			}
			if len(p.resolver.Household().GuardiansForStudent(sourceID)) > 0 {
				record["guardian_id"] = p.resolver.Household().GuardiansForStudent(sourceID)[0].GuardianID
			}
			if spans := output.Enrollments[sourceID]; len(spans) > 0 {
				record["enrollment_id"] = spans[0].ID
			}
			out = append(out, record)
		}
	}
	return out
}

func (p *Pipeline) targetRelationships() []map[string]any {
	var out []map[string]any
	for _, rel := range p.resolver.Household().Relationships() {
		out = append(out, map[string]any{
			"guardian_id": rel.GuardianID,
			"student_id":  rel.StudentID,
		})
	}
	return out
}

func (p *Pipeline) targetEnrollments(output *Output) []map[string]any {
	var out []map[string]any
	for _, studentID := range p.enrollments.StudentIDs() {
		for _, span := range output.Enrollments[studentID] {
			out = append(out, map[string]any{
				"id":         span.ID,
				"student_id": span.StudentID,
				"school_id":  span.SchoolID,
			})
		}
	}
	return out
}

func (p *Pipeline) targetGrades() []map[string]any {
	var out []map[string]any
	for _, studentID := range p.gradeProcessor.StudentIDs() {
		for _, grade := range p.gradeProcessor.Grades(studentID) {
			out = append(out, map[string]any{
				"id":          grade.ID,
				"student_id":  grade.StudentID,
				"course_code": grade.CourseCode,
				"grade":       grade.LetterGrade,
			})
		}
	}
	return out
}

func (p *Pipeline) targetAttendance() []map[string]any {
	var out []map[string]any
	for _, studentID := range p.attendance.StudentIDs() {
		for _, rec := range p.attendance.Records(studentID) {
			out = append(out, map[string]any{
				"id":         rec.ID,
				"student_id": rec.StudentID,
				"status":     string(rec.Status),
			})
		}
	}
	return out
}

func (p *Pipeline) collectIssues() []models.Issue {
	var issues []models.Issue
	issues = append(issues, p.enrollments.Issues()...)
	issues = append(issues, p.gradeProcessor.Issues()...)
	issues = append(issues, p.attendance.Issues()...)
	return issues
}

// Reset clears all processor state between migrations.
func (p *Pipeline) Reset() {
	p.resolver.Reset()
	p.enrollments.Reset()
	p.gradeProcessor.Reset()
	p.attendance.Reset()
}

func recordDateRange(records []*models.AttendanceRecord) (time.Time, time.Time, bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	start, end := records[0].Date, records[0].Date
	for _, rec := range records[1:] {
		if rec.Date.Before(start) {
			start = rec.Date
		}
		if rec.Date.After(end) {
			end = rec.Date
		}
	}
	return start, end, true
}
