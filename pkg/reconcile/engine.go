package reconcile

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config contains configuration for the reconciliation engine
type Config struct {
	StudentSampleSize int   // records sampled by the student spot check
	GradeSampleSize   int   // records sampled by the grade spot check
	SamplingSeed      int64 // 0 seeds from the clock
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		StudentSampleSize: 10,
		GradeSampleSize:   20,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Engine runs reconciliation checks comparing source collections against
// the migrated target collections. The engine never errors on missing data;
// a check with nothing to verify yields Skipped.
type Engine struct {
	logger ectologger.Logger
	config Config
	rng    *rand.Rand

	checks     []Check
	sourceData map[string][]map[string]any
	targetData map[string][]map[string]any
}

// NewEngine creates a reconciliation engine with the default check registry
func NewEngine(logger ectologger.Logger, config Config) *Engine {
	seed := config.SamplingSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		logger:     logger,
		config:     config,
		rng:        rand.New(rand.NewSource(seed)),
		checks:     DefaultChecks(config.StudentSampleSize, config.GradeSampleSize),
		sourceData: make(map[string][]map[string]any),
		targetData: make(map[string][]map[string]any),
	}
}

// RegisterCheck adds a custom check to the registry after validating it.
func (e *Engine) RegisterCheck(check Check) error {
	if err := validate.Struct(check); err != nil {
		return fmt.Errorf("invalid check %q: %w", check.ID, err)
	}
	e.checks = append(e.checks, check)
	return nil
}

// Checks returns the registered checks.
func (e *Engine) Checks() []Check {
	return e.checks
}

// SetSourceData sets the source collection for an entity type.
func (e *Engine) SetSourceData(entityType string, data []map[string]any) {
	e.sourceData[entityType] = data
}

// SetTargetData sets the migrated collection for an entity type.
func (e *Engine) SetTargetData(entityType string, data []map[string]any) {
	e.targetData[entityType] = data
}

// RunAllChecks evaluates every registered check and returns the report.
func (e *Engine) RunAllChecks(ctx context.Context) *models.Report {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Engine.RunAllChecks")
	defer span.End()

	report := &models.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	for _, check := range e.checks {
		report.Results = append(report.Results, e.runCheck(check))
	}

	summary := report.Summarize()

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"report_id":      report.ID,
		"total_checks":   summary.Total,
		"passed":         summary.Passed,
		"failed":         summary.Failed,
		"overall_status": summary.OverallStatus,
	}).Info("reconciliation run complete")

	return report
}

func (e *Engine) runCheck(check Check) models.CheckResult {
	switch spec := check.Spec.(type) {
	case CountSpec:
		return e.runCountCheck(check, spec)
	case ReferentialSpec:
		return e.runReferentialCheck(check, spec)
	case CompletenessSpec:
		return e.runCompletenessCheck(check, spec)
	case SamplingSpec:
		return e.runSamplingCheck(check, spec)
	case HashSpec:
		return e.runHashCheck(check, spec)
	default:
		return e.result(check, models.CheckStatusSkipped, "no runner for check spec")
	}
}

func (e *Engine) result(check Check, status models.CheckStatus, message string) models.CheckResult {
	return models.CheckResult{
		CheckID:   check.ID,
		CheckName: check.Name,
		Category:  check.Category(),
		Status:    status,
		Threshold: check.Threshold,
		Blocking:  check.Blocking,
		Message:   message,
	}
}

func (e *Engine) runCountCheck(check Check, spec CountSpec) models.CheckResult {
	sourceCount := len(e.sourceData[spec.EntityType])
	targetCount := len(e.targetData[spec.EntityType])

	if sourceCount == 0 {
		result := e.result(check, models.CheckStatusSkipped, fmt.Sprintf("no source data for %s", spec.EntityType))
		result.SourceValue = 0
		result.TargetValue = 0
		return result
	}

	matchRate := float64(targetCount) / float64(sourceCount)
	status := models.CheckStatusFailed
	if matchRate >= check.Threshold {
		status = models.CheckStatusPassed
	}

	result := e.result(check, status,
		fmt.Sprintf("%s: %d/%d records (%.1f%%)", spec.EntityType, targetCount, sourceCount, matchRate*100))
	result.SourceValue = sourceCount
	result.TargetValue = targetCount
	result.Ratio = matchRate
	return result
}

func (e *Engine) runReferentialCheck(check Check, spec ReferentialSpec) models.CheckResult {
	children := e.targetData[spec.ChildType]
	parents := e.targetData[spec.ParentType]

	if len(children) == 0 {
		return e.result(check, models.CheckStatusSkipped, fmt.Sprintf("no %s data to check", spec.ChildType))
	}

	parentIDs := make(map[string]bool)
	for _, parent := range parents {
		id := firstPresent(parent, "student_id", "id", "guardian_id")
		if id != "" {
			parentIDs[id] = true
		}
	}

	validCount := 0
	invalidRefs := 0
	var sampleInvalid []string
	for _, child := range children {
		fk := stringValue(child[spec.ForeignKey])
		if fk != "" && parentIDs[fk] {
			validCount++
			continue
		}
		invalidRefs++
		if len(sampleInvalid) < 5 {
			sampleInvalid = append(sampleInvalid, fmt.Sprintf("%s -> %s", stringValue(child["id"]), fk))
		}
	}

	matchRate := float64(validCount) / float64(len(children))
	status := models.CheckStatusFailed
	if matchRate >= check.Threshold {
		status = models.CheckStatusPassed
	}

	result := e.result(check, status,
		fmt.Sprintf("%d/%d valid references (%.1f%%)", validCount, len(children), matchRate*100))
	result.SourceValue = len(children)
	result.TargetValue = validCount
	result.Ratio = matchRate
	result.Details = sampleInvalid
	return result
}

func (e *Engine) runCompletenessCheck(check Check, spec CompletenessSpec) models.CheckResult {
	entities := e.targetData[spec.EntityType]

	if len(entities) == 0 {
		return e.result(check, models.CheckStatusSkipped, fmt.Sprintf("no %s data to check", spec.EntityType))
	}

	completeCount := 0
	var sampleIncomplete []string
	for _, entity := range entities {
		if fieldPopulated(entity[spec.RequiredField]) {
			completeCount++
			continue
		}
		if len(sampleIncomplete) < 10 {
			sampleIncomplete = append(sampleIncomplete, firstPresent(entity, "id", "student_id"))
		}
	}

	completenessRate := float64(completeCount) / float64(len(entities))
	// Incompleteness degrades the run, it does not block it
	status := models.CheckStatusWarning
	if completenessRate >= check.Threshold {
		status = models.CheckStatusPassed
	}

	result := e.result(check, status,
		fmt.Sprintf("%d/%d have %s (%.1f%%)", completeCount, len(entities), spec.RequiredField, completenessRate*100))
	result.SourceValue = len(entities)
	result.TargetValue = completeCount
	result.Ratio = completenessRate
	result.Details = sampleIncomplete
	return result
}

func (e *Engine) runSamplingCheck(check Check, spec SamplingSpec) models.CheckResult {
	source := e.sourceData[spec.EntityType]
	target := e.targetData[spec.EntityType]

	if len(source) == 0 || len(target) == 0 {
		return e.result(check, models.CheckStatusSkipped, "insufficient data for sampling")
	}

	targetLookup := make(map[string]map[string]any)
	for _, record := range target {
		if key := firstPresent(record, "student_id", "id"); key != "" {
			targetLookup[key] = record
		}
	}

	sample := e.sampleRecords(source, spec.SampleSize)
	matches := 0
	var mismatches []string

	for _, sourceRecord := range sample {
		key := firstPresent(sourceRecord, "student_id", "id")
		targetRecord, ok := targetLookup[key]
		if ok && recordsMatch(sourceRecord, targetRecord) {
			matches++
		} else {
			if len(mismatches) < 5 {
				mismatches = append(mismatches, key)
			}
		}
	}

	matchRate := float64(matches) / float64(len(sample))
	status := models.CheckStatusFailed
	if matchRate >= check.Threshold {
		status = models.CheckStatusPassed
	}

	result := e.result(check, status,
		fmt.Sprintf("sample: %d/%d verified (%.1f%%)", matches, len(sample), matchRate*100))
	result.SourceValue = len(sample)
	result.TargetValue = matches
	result.Ratio = matchRate
	result.Details = mismatches
	return result
}

func (e *Engine) runHashCheck(check Check, spec HashSpec) models.CheckResult {
	source := e.sourceData[spec.EntityType]
	target := e.targetData[spec.EntityType]

	if len(source) == 0 || len(target) == 0 {
		return e.result(check, models.CheckStatusSkipped, "insufficient data for hash verification")
	}

	sourceHash := fingerprint.CollectionHash(source)
	targetHash := fingerprint.CollectionHash(target)

	// Transformations legitimately alter hashes, so a mismatch degrades
	// rather than fails
	status := models.CheckStatusWarning
	message := "hash mismatch (may be due to transformations)"
	if sourceHash == targetHash {
		status = models.CheckStatusPassed
		message = "data integrity verified"
	}

	result := e.result(check, status, message)
	result.SourceValue = sourceHash[:16]
	result.TargetValue = targetHash[:16]
	if status == models.CheckStatusPassed {
		result.Ratio = 1.0
	}
	return result
}

// sampleRecords draws up to n records without replacement.
func (e *Engine) sampleRecords(records []map[string]any, n int) []map[string]any {
	if n >= len(records) {
		out := make([]map[string]any, len(records))
		copy(out, records)
		return out
	}

	indexes := e.rng.Perm(len(records))[:n]
	out := make([]map[string]any, 0, n)
	for _, i := range indexes {
		out = append(out, records[i])
	}
	return out
}

// recordsMatch compares two records on the commonly present identity fields.
// A field only disqualifies the pair when both sides carry a value and the
// trimmed, lower-cased values differ.
func recordsMatch(source, target map[string]any) bool {
	for _, field := range []string{"first_name", "last_name", "email", "grade", "status"} {
		sv, sok := source[field]
		tv, tok := target[field]
		if !sok || !tok {
			continue
		}
		s := strings.ToLower(strings.TrimSpace(stringValue(sv)))
		t := strings.ToLower(strings.TrimSpace(stringValue(tv)))
		if s != "" && t != "" && s != t {
			return false
		}
	}
	return true
}

// fieldPopulated reports whether a value counts as present. NULL and N/A
// markers count as empty.
func fieldPopulated(v any) bool {
	s := strings.TrimSpace(stringValue(v))
	if s == "" {
		return false
	}
	switch strings.ToUpper(s) {
	case "NULL", "N/A":
		return false
	}
	return true
}

func firstPresent(record map[string]any, fields ...string) string {
	for _, f := range fields {
		if s := stringValue(record[f]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
