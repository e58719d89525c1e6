package models

import "time"

// CheckStatus is the outcome of a single reconciliation check.
type CheckStatus string

const (
	CheckStatusPassed  CheckStatus = "passed"
	CheckStatusFailed  CheckStatus = "failed"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusSkipped CheckStatus = "skipped"
)

// CheckCategory classifies what a reconciliation check verifies.
type CheckCategory string

const (
	CheckCategoryCount        CheckCategory = "count"
	CheckCategoryReferential  CheckCategory = "referential"
	CheckCategoryCompleteness CheckCategory = "completeness"
	CheckCategorySampling     CheckCategory = "sampling"
	CheckCategoryIntegrity    CheckCategory = "integrity"
)

// OverallStatus is the rolled-up verdict of a reconciliation run.
type OverallStatus string

const (
	OverallStatusPassed  OverallStatus = "PASSED"
	OverallStatusWarning OverallStatus = "WARNING"
	OverallStatusFailed  OverallStatus = "FAILED"
)

// CheckResult is the evaluated outcome of one check against a dataset pair.
type CheckResult struct {
	CheckID     string        `json:"check_id"`
	CheckName   string        `json:"check_name"`
	Category    CheckCategory `json:"category"`
	Status      CheckStatus   `json:"status"`
	SourceValue any           `json:"source_value,omitempty"`
	TargetValue any           `json:"target_value,omitempty"`
	Ratio       float64       `json:"ratio"`
	Threshold   float64       `json:"threshold"`
	Blocking    bool          `json:"blocking"`
	Message     string        `json:"message,omitempty"`
	Details     []string      `json:"details,omitempty"`
}

// ReportSummary is the rollup over all check results in a run.
type ReportSummary struct {
	Total            int           `json:"total"`
	Passed           int           `json:"passed"`
	Failed           int           `json:"failed"`
	Warnings         int           `json:"warnings"`
	Skipped          int           `json:"skipped"`
	BlockingFailures int           `json:"blocking_failures"`
	OverallStatus    OverallStatus `json:"overall_status"`
	PassRate         float64       `json:"pass_rate"`
}

// Report is the full output of one reconciliation run.
type Report struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Summary   ReportSummary `json:"summary"`
	Results   []CheckResult `json:"results"`
}

// Summarize recomputes the summary from the results. A run FAILED if any
// blocking check failed; a run with non-blocking failures or warnings is
// WARNING; otherwise PASSED. Skipped checks count toward the total but not
// the pass rate numerator.
func (r *Report) Summarize() ReportSummary {
	s := ReportSummary{Total: len(r.Results)}

	for i := range r.Results {
		res := &r.Results[i]
		switch res.Status {
		case CheckStatusPassed:
			s.Passed++
		case CheckStatusFailed:
			s.Failed++
			if res.Blocking {
				s.BlockingFailures++
			}
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusSkipped:
			s.Skipped++
		}
	}

	switch {
	case s.BlockingFailures > 0:
		s.OverallStatus = OverallStatusFailed
	case s.Failed > 0 || s.Warnings > 0:
		s.OverallStatus = OverallStatusWarning
	default:
		s.OverallStatus = OverallStatusPassed
	}

	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}

	r.Summary = s
	return s
}
