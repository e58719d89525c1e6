// Package identity implements cross-source identity resolution
package identity

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/dates"
	"github.com/Ramsey-B/clover/pkg/extractor"
	"github.com/Ramsey-B/clover/pkg/fingerprint"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Field weights for the additive match score. The score is a raw sum and may
// exceed 1.0 when every field matches; confidence tiers are the contract,
// not the unit interval.
const (
	weightStateID   = 0.40
	weightEmail     = 0.25
	weightFirstName = 0.15
	weightLastName  = 0.15
	weightDOB       = 0.15
	weightPhone     = 0.10
)

// Config contains configuration for the identity resolver
type Config struct {
	HighThreshold   float64 // score at or above which a match is high confidence
	MediumThreshold float64 // score at or above which a match needs review
	LowThreshold    float64 // score at or above which a match is reported at all
}

// DefaultConfig returns default resolver configuration
func DefaultConfig() Config {
	return Config{
		HighThreshold:   0.8,
		MediumThreshold: 0.5,
		LowThreshold:    0.3,
	}
}

// Resolver maps raw person records from any number of source systems onto
// golden records. Golden records are kept in insertion order so resolution
// is deterministic: the first existing record that matches at Exact or High
// confidence wins.
type Resolver struct {
	logger    ectologger.Logger
	config    Config
	extractor *extractor.Extractor

	goldenOrder    []string
	goldenRecords  map[string]*models.GoldenRecord
	sourceToGolden map[string]map[string]string // source -> source id -> golden id
	sourceOrder    []string
	duplicates     []models.MatchResult
	household      *HouseholdGraph
}

// NewResolver creates a new identity resolver
func NewResolver(logger ectologger.Logger, config Config) *Resolver {
	return &Resolver{
		logger:         logger,
		config:         config,
		extractor:      extractor.New(extractor.StudentAliases),
		goldenRecords:  make(map[string]*models.GoldenRecord),
		sourceToGolden: make(map[string]map[string]string),
		household:      NewHouseholdGraph(),
	}
}

// MatchRecords compares two person records and scores how likely they are to
// be the same person. Matching is deterministic: each field contributes its
// weight when both sides carry a value and the normalized values agree.
// A state-id agreement yields Exact confidence outright.
func (r *Resolver) MatchRecords(record1, record2 map[string]any, source1, source2 string) models.MatchResult {
	var matched, mismatched []string
	score := 0.0

	// State id, the only field that can produce an Exact match
	stateID1 := normalizers.NormalizeStateID(r.extractor.String(record1, "state_id"))
	stateID2 := normalizers.NormalizeStateID(r.extractor.String(record2, "state_id"))
	if stateID1 != "" && stateID2 != "" {
		if stateID1 == stateID2 {
			matched = append(matched, "state_id")
			score += weightStateID
		} else {
			mismatched = append(mismatched, "state_id")
		}
	}

	email1 := normalizers.NormalizeEmail(r.extractor.String(record1, "email"))
	email2 := normalizers.NormalizeEmail(r.extractor.String(record2, "email"))
	if email1 != "" && email2 != "" {
		if email1 == email2 {
			matched = append(matched, "email")
			score += weightEmail
		} else {
			mismatched = append(mismatched, "email")
		}
	}

	fn1 := normalizers.NormalizeName(r.extractor.String(record1, "first_name"))
	fn2 := normalizers.NormalizeName(r.extractor.String(record2, "first_name"))
	if fn1 != "" && fn1 == fn2 {
		matched = append(matched, "first_name")
		score += weightFirstName
	} else if fn1 != "" && fn2 != "" {
		mismatched = append(mismatched, "first_name")
	}

	ln1 := normalizers.NormalizeName(r.extractor.String(record1, "last_name"))
	ln2 := normalizers.NormalizeName(r.extractor.String(record2, "last_name"))
	if ln1 != "" && ln1 == ln2 {
		matched = append(matched, "last_name")
		score += weightLastName
	} else if ln1 != "" && ln2 != "" {
		mismatched = append(mismatched, "last_name")
	}

	dob1 := r.normalizedDOB(record1)
	dob2 := r.normalizedDOB(record2)
	if dob1 != "" && dob2 != "" {
		if dob1 == dob2 {
			matched = append(matched, "date_of_birth")
			score += weightDOB
		} else {
			mismatched = append(mismatched, "date_of_birth")
		}
	}

	// Phones compare on the last 10 digits; shorter values are ignored
	phone1 := normalizers.PhoneLast10(r.extractor.String(record1, "phone"))
	phone2 := normalizers.PhoneLast10(r.extractor.String(record2, "phone"))
	if phone1 != "" && phone1 == phone2 {
		matched = append(matched, "phone")
		score += weightPhone
	}

	confidence := r.confidenceFor(score, matched)

	return models.MatchResult{
		SourceID:         fmt.Sprintf("%s:%s", source1, r.recordID(record1)),
		TargetID:         fmt.Sprintf("%s:%s", source2, r.recordID(record2)),
		Confidence:       confidence,
		MatchScore:       score,
		MatchedFields:    matched,
		MismatchedFields: mismatched,
	}
}

func (r *Resolver) confidenceFor(score float64, matched []string) models.MatchConfidence {
	for _, f := range matched {
		if f == "state_id" {
			return models.MatchConfidenceExact
		}
	}
	switch {
	case score >= r.config.HighThreshold:
		return models.MatchConfidenceHigh
	case score >= r.config.MediumThreshold:
		return models.MatchConfidenceMedium
	case score >= r.config.LowThreshold:
		return models.MatchConfidenceLow
	default:
		return models.MatchConfidenceNoMatch
	}
}

func (r *Resolver) normalizedDOB(record map[string]any) string {
	raw := r.extractor.String(record, "date_of_birth")
	if raw == "" {
		return ""
	}
	if d, ok := dates.Parse(raw); ok {
		return d.Format("2006-01-02")
	}
	return raw
}

func (r *Resolver) recordID(record map[string]any) string {
	if id := r.extractor.String(record, "student_id"); id != "" {
		return id
	}
	return "unknown"
}

// SourceID extracts the source student id from a raw person record.
func SourceID(record map[string]any) string {
	return extractor.New(extractor.StudentAliases).String(record, "student_id")
}

// FindDuplicates compares every pair of records within one source and
// returns the pairs at Medium confidence or better. Results accumulate on
// the resolver for stats reporting.
func (r *Resolver) FindDuplicates(ctx context.Context, records []map[string]any, source string) []models.MatchResult {
	ctx, span := tracing.StartSpan(ctx, "identity.Resolver.FindDuplicates")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"source":       source,
		"record_count": len(records),
	})

	var duplicates []models.MatchResult
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			result := r.MatchRecords(records[i], records[j], source, source)
			switch result.Confidence {
			case models.MatchConfidenceExact, models.MatchConfidenceHigh, models.MatchConfidenceMedium:
				duplicates = append(duplicates, result)
			}
		}
	}

	r.duplicates = append(r.duplicates, duplicates...)
	log.WithField("duplicates_found", len(duplicates)).Debug("duplicate scan complete")

	return duplicates
}

// ResolveIdentity maps a source record to a golden record, creating one when
// no existing record matches at Exact or High confidence. Returns the golden
// id and whether a new golden record was created.
func (r *Resolver) ResolveIdentity(ctx context.Context, record map[string]any, source string) (string, bool) {
	ctx, span := tracing.StartSpan(ctx, "identity.Resolver.ResolveIdentity")
	defer span.End()

	sourceID := r.extractor.String(record, "student_id")

	// Already resolved for this source id
	if mapping, ok := r.sourceToGolden[source]; ok {
		if goldenID, ok := mapping[sourceID]; ok {
			return goldenID, false
		}
	}

	// Scan existing golden records in insertion order; first strong match wins
	for _, goldenID := range r.goldenOrder {
		golden := r.goldenRecords[goldenID]
		goldenView := map[string]any{
			"first_name": golden.FirstName,
			"last_name":  golden.LastName,
			"email":      golden.Email,
			"state_id":   golden.StateID,
		}
		if golden.DateOfBirth != nil {
			goldenView["date_of_birth"] = golden.DateOfBirth.Format("2006-01-02")
		}

		result := r.MatchRecords(record, goldenView, source, "golden")
		if result.Confidence == models.MatchConfidenceExact || result.Confidence == models.MatchConfidenceHigh {
			golden.AddSourceID(source, sourceID)
			r.mapSource(source, sourceID, goldenID)
			return goldenID, false
		}
	}

	golden := r.newGoldenRecord(record, source, sourceID)
	r.goldenRecords[golden.GoldenID] = golden
	r.goldenOrder = append(r.goldenOrder, golden.GoldenID)
	r.mapSource(source, sourceID, golden.GoldenID)

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"golden_id": golden.GoldenID,
		"source":    source,
	}).Debug("created golden record")

	return golden.GoldenID, true
}

func (r *Resolver) newGoldenRecord(record map[string]any, source, sourceID string) *models.GoldenRecord {
	golden := &models.GoldenRecord{
		PrimarySource: source,
		FirstName:     normalizers.TitleCase(r.extractor.String(record, "first_name")),
		LastName:      normalizers.TitleCase(r.extractor.String(record, "last_name")),
		Email:         r.extractor.String(record, "email"),
		StateID:       r.extractor.String(record, "state_id"),
	}
	if dob, ok := dates.Parse(r.extractor.String(record, "date_of_birth")); ok {
		golden.DateOfBirth = &dob
	}
	golden.AddSourceID(source, sourceID)
	golden.GoldenID = fingerprint.GoldenID(golden.FirstName, golden.LastName, golden.DateOfBirth, golden.StateID)
	return golden
}

func (r *Resolver) mapSource(source, sourceID, goldenID string) {
	if _, ok := r.sourceToGolden[source]; !ok {
		r.sourceToGolden[source] = make(map[string]string)
		r.sourceOrder = append(r.sourceOrder, source)
	}
	r.sourceToGolden[source][sourceID] = goldenID
}

// GoldenRecord returns a golden record by id.
func (r *Resolver) GoldenRecord(goldenID string) (*models.GoldenRecord, bool) {
	g, ok := r.goldenRecords[goldenID]
	return g, ok
}

// GoldenRecords returns all golden records in creation order.
func (r *Resolver) GoldenRecords() []*models.GoldenRecord {
	out := make([]*models.GoldenRecord, 0, len(r.goldenOrder))
	for _, id := range r.goldenOrder {
		out = append(out, r.goldenRecords[id])
	}
	return out
}

// Duplicates returns every duplicate pair found so far.
func (r *Resolver) Duplicates() []models.MatchResult {
	return r.duplicates
}

// Household returns the household graph built so far.
func (r *Resolver) Household() *HouseholdGraph {
	return r.household
}

// Stats summarizes the resolution session.
func (r *Resolver) Stats() models.IdentityStats {
	mappings := 0
	for _, m := range r.sourceToGolden {
		mappings += len(m)
	}

	highConfidence := 0
	for _, d := range r.duplicates {
		if d.Confidence == models.MatchConfidenceExact || d.Confidence == models.MatchConfidenceHigh {
			highConfidence++
		}
	}

	sources := make([]string, len(r.sourceOrder))
	copy(sources, r.sourceOrder)

	return models.IdentityStats{
		TotalGoldenRecords:    len(r.goldenOrder),
		TotalSourceMappings:   mappings,
		SourcesProcessed:      sources,
		DuplicatesFound:       len(r.duplicates),
		HighConfidenceMatches: highConfidence,
		Relationships:         len(r.household.Relationships()),
	}
}

// Reset clears all resolution state between migrations.
func (r *Resolver) Reset() {
	r.goldenOrder = nil
	r.goldenRecords = make(map[string]*models.GoldenRecord)
	r.sourceToGolden = make(map[string]map[string]string)
	r.sourceOrder = nil
	r.duplicates = nil
	r.household = NewHouseholdGraph()
}
