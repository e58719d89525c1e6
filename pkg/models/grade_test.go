package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateGPA(t *testing.T) {
	transcript := &StudentTranscript{
		StudentID: "S1",
		Entries: []TranscriptEntry{
			{CourseCode: "MATH101", LetterGrade: "A", GradePoints: 4.0, CreditsAttempted: 1.0},
			{CourseCode: "ENG101", LetterGrade: "B", GradePoints: 3.0, CreditsAttempted: 1.0},
		},
	}

	cumulative, weighted := transcript.CalculateGPA()
	assert.Equal(t, 3.5, cumulative)
	assert.Equal(t, 3.5, weighted) // nothing weighted
	assert.Equal(t, 2.0, transcript.TotalCreditsAttempted)
}

func TestCalculateGPAWeightedBonus(t *testing.T) {
	transcript := &StudentTranscript{
		StudentID: "S1",
		Entries: []TranscriptEntry{
			{CourseCode: "APUSH", LetterGrade: "A", GradePoints: 4.0, CreditsAttempted: 1.0, IsWeighted: true},
		},
	}

	cumulative, weighted := transcript.CalculateGPA()
	// The +0.5 bonus applies only to the weighted figure
	assert.Equal(t, 4.0, cumulative)
	assert.Equal(t, 4.5, weighted)
}

func TestCalculateGPACreditWeighting(t *testing.T) {
	transcript := &StudentTranscript{
		StudentID: "S1",
		Entries: []TranscriptEntry{
			{LetterGrade: "A", GradePoints: 4.0, CreditsAttempted: 2.0},
			{LetterGrade: "F", GradePoints: 0.0, CreditsAttempted: 1.0},
		},
	}

	cumulative, _ := transcript.CalculateGPA()
	assert.Equal(t, 2.667, cumulative) // 8.0 / 3.0 rounded to 3 decimals
}

func TestCalculateGPAEdgeCases(t *testing.T) {
	t.Run("empty transcript", func(t *testing.T) {
		transcript := &StudentTranscript{StudentID: "S1"}
		cumulative, weighted := transcript.CalculateGPA()
		assert.Equal(t, 0.0, cumulative)
		assert.Equal(t, 0.0, weighted)
	})

	t.Run("zero credit entries excluded", func(t *testing.T) {
		transcript := &StudentTranscript{
			StudentID: "S1",
			Entries: []TranscriptEntry{
				{LetterGrade: "A", GradePoints: 4.0, CreditsAttempted: 1.0},
				{LetterGrade: "P", GradePoints: 0.0, CreditsAttempted: 0.0},
			},
		}
		cumulative, _ := transcript.CalculateGPA()
		assert.Equal(t, 4.0, cumulative)
		assert.Equal(t, 1.0, transcript.TotalCreditsAttempted)
	})

	t.Run("all zero credit yields zero", func(t *testing.T) {
		transcript := &StudentTranscript{
			StudentID: "S1",
			Entries: []TranscriptEntry{
				{LetterGrade: "P", GradePoints: 0.0, CreditsAttempted: 0.0},
			},
		}
		cumulative, weighted := transcript.CalculateGPA()
		assert.Equal(t, 0.0, cumulative)
		assert.Equal(t, 0.0, weighted)
	})
}

func TestQualityPoints(t *testing.T) {
	entry := &TranscriptEntry{GradePoints: 3.7, CreditsAttempted: 0.5}
	assert.Equal(t, 1.85, entry.QualityPoints())
}
