package models

import "time"

// MatchConfidence is the confidence tier assigned to an identity match.
type MatchConfidence string

const (
	MatchConfidenceExact   MatchConfidence = "exact"    // matched on a unique identifier
	MatchConfidenceHigh    MatchConfidence = "high"     // score >= 0.8
	MatchConfidenceMedium  MatchConfidence = "medium"   // score >= 0.5, needs review
	MatchConfidenceLow     MatchConfidence = "low"      // score >= 0.3, manual review only
	MatchConfidenceNoMatch MatchConfidence = "no_match" // below every threshold
)

// MatchResult is the outcome of comparing two person records.
// It is produced per comparison and not persisted beyond the resolution session.
type MatchResult struct {
	SourceID         string          `json:"source_id"` // "source:id" form
	TargetID         string          `json:"target_id"`
	Confidence       MatchConfidence `json:"confidence"`
	MatchScore       float64         `json:"match_score"`
	MatchedFields    []string        `json:"matched_fields"`
	MismatchedFields []string        `json:"mismatched_fields,omitempty"`
}

// GoldenRecord is the unified identity a set of cross-source person records
// resolve to. The GoldenID is derived deterministically from normalized
// identity attributes and never changes once issued, no matter how many
// additional sources later merge into the record.
type GoldenRecord struct {
	GoldenID      string            `json:"golden_id"`
	PrimarySource string            `json:"primary_source"`
	SourceIDs     map[string]string `json:"source_ids"` // source system -> source record id
	FirstName     string            `json:"first_name"`
	LastName      string            `json:"last_name"`
	DateOfBirth   *time.Time        `json:"date_of_birth,omitempty"`
	Email         string            `json:"email,omitempty"`
	StateID       string            `json:"state_id,omitempty"`
	MergedFrom    []string          `json:"merged_from"` // contributing sources, in merge order
}

// AddSourceID records a source system id on this golden record.
func (g *GoldenRecord) AddSourceID(source, sourceID string) {
	if g.SourceIDs == nil {
		g.SourceIDs = make(map[string]string)
	}
	g.SourceIDs[source] = sourceID
	for _, s := range g.MergedFrom {
		if s == source {
			return
		}
	}
	g.MergedFrom = append(g.MergedFrom, source)
}

// Relationship is one guardian->student edge in the household graph.
// EmergencyPriority is a positive integer used to order emergency contacts;
// no uniqueness is enforced.
type Relationship struct {
	GuardianID        string `json:"guardian_id"`
	StudentID         string `json:"student_id"`
	RelationshipType  string `json:"relationship_type"`
	CustodyType       string `json:"custody_type"`
	EmergencyPriority int    `json:"emergency_priority"`
	ReceivesMail      bool   `json:"receives_mail"`
	CanPickup         bool   `json:"can_pickup"`
	GradeVisibility   bool   `json:"grade_visibility"`
}

// IdentityStats summarizes a resolution session.
type IdentityStats struct {
	TotalGoldenRecords    int      `json:"total_golden_records"`
	TotalSourceMappings   int      `json:"total_source_mappings"`
	SourcesProcessed      []string `json:"sources_processed"`
	DuplicatesFound       int      `json:"duplicates_found"`
	HighConfidenceMatches int      `json:"high_confidence_matches"`
	Relationships         int      `json:"relationships"`
}
