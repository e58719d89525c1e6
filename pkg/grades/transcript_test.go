package grades

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTranscript(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)
	ctx := context.Background()

	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "MATH101", "course_name": "Algebra",
		"grade": "A", "credits": "1", "term": "Fall", "year": "2023-2024",
	}, "sis")
	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "ENG101", "course_name": "English",
		"grade": "B", "credits": "1", "term": "Fall", "year": "2023-2024",
	}, "sis")

	transcript := b.BuildTranscript(ctx, "S1")
	require.Len(t, transcript.Entries, 2)
	assert.Equal(t, 2.0, transcript.TotalCreditsEarned)
	assert.Equal(t, 3.5, transcript.CumulativeGPA)

	stored, ok := b.Transcript("S1")
	require.True(t, ok)
	assert.Equal(t, transcript, stored)
}

func TestBuildTranscriptDeduplicatesKeepingHigher(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)
	ctx := context.Background()

	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "MATH101", "grade": "B", "credits": "1",
		"term": "Fall", "year": "2023-2024",
	}, "sis")
	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "MATH101", "grade": "A", "credits": "1",
		"term": "Fall", "year": "2023-2024",
	}, "lms")

	transcript := b.BuildTranscript(ctx, "S1")
	require.Len(t, transcript.Entries, 1)
	assert.Equal(t, "A", transcript.Entries[0].LetterGrade)
	assert.Equal(t, 4.0, transcript.CumulativeGPA)
}

func TestBuildTranscriptSkipsInvalidGrades(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)
	ctx := context.Background()

	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "MATH101", "grade": "A", "credits": "1",
	}, "sis")
	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "SCI200", "grade": "??", "credits": "1",
	}, "sis")

	transcript := b.BuildTranscript(ctx, "S1")
	assert.Len(t, transcript.Entries, 1)
}

func TestBuildTranscriptWeightedGPA(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)
	ctx := context.Background()

	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "HIS400", "course_name": "AP US History",
		"grade": "A", "credits": "1", "term": "Fall", "year": "2023-2024",
	}, "sis")

	transcript := b.BuildTranscript(ctx, "S1")
	assert.Equal(t, 4.0, transcript.CumulativeGPA)
	assert.Equal(t, 4.5, transcript.WeightedGPA)
}

func TestGPASummaryBuildsOnDemand(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)
	ctx := context.Background()

	p.ProcessGrade(ctx, map[string]any{
		"student_id": "S1", "course_code": "MATH101", "grade": "A", "credits": "1",
	}, "sis")

	summary := b.GPASummary(ctx, "S1")
	assert.Equal(t, 4.0, summary.CumulativeGPA)

	// second call returns the cached transcript
	assert.Same(t, summary, b.GPASummary(ctx, "S1"))
}

func TestBuildTranscriptEmptyStudent(t *testing.T) {
	p := newTestProcessor()
	b := NewTranscriptBuilder(p)

	transcript := b.BuildTranscript(context.Background(), "ghost")
	assert.Empty(t, transcript.Entries)
	assert.Equal(t, 0.0, transcript.CumulativeGPA)
}
