package identity

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func newTestResolver() *Resolver {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewResolver(logger, DefaultConfig())
}

func TestMatchRecordsExactOnStateID(t *testing.T) {
	r := newTestResolver()

	result := r.MatchRecords(
		map[string]any{"student_id": "S1", "first_name": "John", "last_name": "Smith", "state_id": "WA-123"},
		map[string]any{"student_id": "X9", "first_name": "Jonathan", "last_name": "Smith", "state_id": "wa123"},
		"sis", "lms",
	)

	assert.Equal(t, models.MatchConfidenceExact, result.Confidence)
	assert.Contains(t, result.MatchedFields, "state_id")
	assert.Contains(t, result.MismatchedFields, "first_name")
	assert.Equal(t, "sis:S1", result.SourceID)
	assert.Equal(t, "lms:X9", result.TargetID)
}

func TestMatchRecordsHighConfidence(t *testing.T) {
	r := newTestResolver()

	// first + last + dob + email = 0.15+0.15+0.15+0.25 = 0.70 -> Medium
	// adding phone pushes it to 0.80 -> High
	result := r.MatchRecords(
		map[string]any{
			"student_id": "S1", "first_name": "Jane", "last_name": "Doe",
			"date_of_birth": "2010-03-15", "email": "jane@school.org", "phone": "(555) 123-4567",
		},
		map[string]any{
			"student_id": "L7", "first_name": "JANE", "last_name": "doe",
			"date_of_birth": "03/15/2010", "email": "Jane@School.org", "phone": "555-123-4567",
		},
		"sis", "lms",
	)

	assert.Equal(t, models.MatchConfidenceHigh, result.Confidence)
	assert.InDelta(t, 0.80, result.MatchScore, 0.0001)
	assert.ElementsMatch(t,
		[]string{"email", "first_name", "last_name", "date_of_birth", "phone"},
		result.MatchedFields)
}

func TestMatchRecordsPhoneMismatchNotRecorded(t *testing.T) {
	r := newTestResolver()

	result := r.MatchRecords(
		map[string]any{"student_id": "S1", "first_name": "Jane", "phone": "5551234567"},
		map[string]any{"student_id": "S2", "first_name": "Jane", "phone": "5559999999"},
		"sis", "sis",
	)

	assert.NotContains(t, result.MismatchedFields, "phone")
	assert.NotContains(t, result.MatchedFields, "phone")
}

func TestMatchRecordsNoOverlap(t *testing.T) {
	r := newTestResolver()

	result := r.MatchRecords(
		map[string]any{"student_id": "S1", "first_name": "Jane", "last_name": "Doe"},
		map[string]any{"student_id": "S2", "first_name": "Mike", "last_name": "Jones"},
		"sis", "sis",
	)

	assert.Equal(t, models.MatchConfidenceNoMatch, result.Confidence)
	assert.Equal(t, 0.0, result.MatchScore)
}

func TestFindDuplicates(t *testing.T) {
	r := newTestResolver()

	records := []map[string]any{
		{"student_id": "S1", "first_name": "John", "last_name": "Smith", "date_of_birth": "2010-03-15", "email": "john@school.org"},
		{"student_id": "S2", "first_name": "John", "last_name": "Smith", "date_of_birth": "2010-03-15", "email": "john@school.org"},
		{"student_id": "S3", "first_name": "Alice", "last_name": "Wong", "date_of_birth": "2011-07-04"},
	}

	duplicates := r.FindDuplicates(context.Background(), records, "sis")
	require.Len(t, duplicates, 1)
	assert.Equal(t, "sis:S1", duplicates[0].SourceID)
	assert.Equal(t, "sis:S2", duplicates[0].TargetID)

	// results accumulate on the resolver
	assert.Len(t, r.Duplicates(), 1)
}

func TestResolveIdentityCreatesThenMerges(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	sisRecord := map[string]any{
		"student_id": "S1", "first_name": "john", "last_name": "smith",
		"date_of_birth": "2010-03-15", "state_id": "WA-123",
	}
	goldenID, created := r.ResolveIdentity(ctx, sisRecord, "sis")
	require.True(t, created)
	assert.Contains(t, goldenID, "GR-")

	// Same person from another source merges via state id
	lmsRecord := map[string]any{
		"StudentID": "L42", "FirstName": "Jonathan", "LastName": "Smith", "StateID": "wa123",
	}
	mergedID, created := r.ResolveIdentity(ctx, lmsRecord, "lms")
	assert.False(t, created)
	assert.Equal(t, goldenID, mergedID)

	golden, ok := r.GoldenRecord(goldenID)
	require.True(t, ok)
	assert.Equal(t, "John", golden.FirstName)
	assert.Equal(t, "Smith", golden.LastName)
	assert.Equal(t, "S1", golden.SourceIDs["sis"])
	assert.Equal(t, "L42", golden.SourceIDs["lms"])

	// Resolving the same source record again is a cache hit
	againID, created := r.ResolveIdentity(ctx, sisRecord, "sis")
	assert.False(t, created)
	assert.Equal(t, goldenID, againID)
}

func TestResolveIdentityDistinctPeople(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	id1, _ := r.ResolveIdentity(ctx, map[string]any{
		"student_id": "S1", "first_name": "John", "last_name": "Smith", "date_of_birth": "2010-03-15",
	}, "sis")
	id2, created := r.ResolveIdentity(ctx, map[string]any{
		"student_id": "S2", "first_name": "Alice", "last_name": "Wong", "date_of_birth": "2011-07-04",
	}, "sis")

	assert.True(t, created)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, r.GoldenRecords(), 2)
}

func TestGoldenIDStableAcrossResolvers(t *testing.T) {
	record := map[string]any{
		"student_id": "S1", "first_name": "John", "last_name": "Smith",
		"date_of_birth": "2010-03-15", "state_id": "WA123",
	}

	id1, _ := newTestResolver().ResolveIdentity(context.Background(), record, "sis")
	id2, _ := newTestResolver().ResolveIdentity(context.Background(), record, "sis")
	assert.Equal(t, id1, id2)
}

func TestBuildHouseholdGraph(t *testing.T) {
	r := newTestResolver()

	guardians := []map[string]any{
		{
			"guardian_id": "G1", "student_ids": "S1, S2",
			"relationship": "Mother", "custody_type": "Full",
			"emergency_priority": float64(1),
			"receives_mail":      "yes", "can_pickup": "true", "grade_visibility": "1",
		},
		{
			"guardian_id": "G2", "student_ids": "S1",
			"can_pickup": "no",
		},
		{
			"guardian_id": "G3", "student_ids": " , ",
		},
	}

	graph := r.BuildHouseholdGraph(context.Background(), guardians)
	assert.Len(t, graph.Relationships(), 3)

	forS1 := graph.GuardiansForStudent("S1")
	require.Len(t, forS1, 2)
	assert.Equal(t, "G1", forS1[0].GuardianID)
	assert.Equal(t, "Mother", forS1[0].RelationshipType)
	assert.True(t, forS1[0].ReceivesMail)
	assert.True(t, forS1[0].CanPickup)

	// defaults for sparse guardian rows
	assert.Equal(t, "Guardian", forS1[1].RelationshipType)
	assert.Equal(t, "Full", forS1[1].CustodyType)
	assert.False(t, forS1[1].CanPickup)

	assert.Len(t, graph.StudentsForGuardian("G1"), 2)
	assert.Empty(t, graph.StudentsForGuardian("G3"))
}

func TestStatsAndReset(t *testing.T) {
	r := newTestResolver()
	ctx := context.Background()

	records := []map[string]any{
		{"student_id": "S1", "first_name": "John", "last_name": "Smith", "state_id": "WA1"},
		{"student_id": "S2", "first_name": "Alice", "last_name": "Wong", "state_id": "WA2"},
	}
	r.FindDuplicates(ctx, records, "sis")
	for _, rec := range records {
		r.ResolveIdentity(ctx, rec, "sis")
	}
	r.BuildHouseholdGraph(ctx, []map[string]any{{"guardian_id": "G1", "student_ids": "S1"}})

	stats := r.Stats()
	assert.Equal(t, 2, stats.TotalGoldenRecords)
	assert.Equal(t, 2, stats.TotalSourceMappings)
	assert.Equal(t, []string{"sis"}, stats.SourcesProcessed)
	assert.Equal(t, 1, stats.Relationships)

	r.Reset()
	stats = r.Stats()
	assert.Equal(t, 0, stats.TotalGoldenRecords)
	assert.Empty(t, r.GoldenRecords())
}
