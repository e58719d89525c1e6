package enrollment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestNormalizeTermName(t *testing.T) {
	c := NewCalendar()

	tests := []struct {
		input        string
		expectedName string
		expectedType models.TermType
	}{
		{"fall", "Fall", models.TermTypeSemester},
		{"FALL SEMESTER", "Fall", models.TermTypeSemester},
		{"autumn", "Fall", models.TermTypeSemester},
		{"  Spring  ", "Spring", models.TermTypeSemester},
		{"q1", "Quarter 1", models.TermTypeQuarter},
		{"Quarter 3", "Quarter 3", models.TermTypeQuarter},
		{"tri2", "Trimester 2", models.TermTypeTrimester},
		{"annual", "Full Year", models.TermTypeYear},
		{"summer school", "Summer", models.TermTypeSummer},
		// unknown names default to a title-cased semester
		{"winter intensive", "Winter Intensive", models.TermTypeSemester},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, termType := c.NormalizeTermName(tt.input)
			assert.Equal(t, tt.expectedName, name)
			assert.Equal(t, tt.expectedType, termType)
		})
	}
}

func TestParseSchoolYear(t *testing.T) {
	c := NewCalendar()

	tests := []struct {
		input    string
		expected string
	}{
		{"2023-2024", "2023-2024"},
		{"2023", "2023-2024"},
		{"23-24", "2023-2024"},
		{"98-99", "1998-1999"},
		{" 2023-2024 ", "2023-2024"},
		{"SY23", "SY23"}, // unrecognized passes through
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.ParseSchoolYear(tt.input))
		})
	}
}

func TestStandardCalendarSemesters(t *testing.T) {
	c := NewCalendar()

	terms := c.StandardCalendar("2023-2024", models.TermTypeSemester)
	require.Len(t, terms, 2)

	fall := terms[0]
	assert.Equal(t, "2023-2024-FALL", fall.ID)
	assert.Equal(t, time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC), fall.StartDate)
	assert.Equal(t, time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC), fall.EndDate)
	assert.True(t, fall.IsPrimary)

	spring := terms[1]
	assert.Equal(t, "2023-2024-SPRING", spring.ID)
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), spring.StartDate)
	assert.Equal(t, time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC), spring.EndDate)

	stored, ok := c.Term("2023-2024-FALL")
	require.True(t, ok)
	assert.Equal(t, "Fall", stored.Name)
}

func TestStandardCalendarQuarters(t *testing.T) {
	c := NewCalendar()

	terms := c.StandardCalendar("23-24", models.TermTypeQuarter)
	require.Len(t, terms, 4)

	assert.Equal(t, "2023-2024-Q1", terms[0].ID)
	assert.Equal(t, time.Date(2023, time.October, 15, 0, 0, 0, 0, time.UTC), terms[0].EndDate)

	// Q3 and Q4 fall in the end year
	assert.Equal(t, time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC), terms[2].StartDate)
	assert.Equal(t, time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC), terms[3].EndDate)
}

func TestStandardCalendarBadYear(t *testing.T) {
	c := NewCalendar()
	assert.Nil(t, c.StandardCalendar("not a year", models.TermTypeSemester))
}

func TestCrosswalkTerm(t *testing.T) {
	c := NewCalendar()
	calendar := c.StandardCalendar("2023-2024", models.TermTypeSemester)

	t.Run("canonical match", func(t *testing.T) {
		term := c.CrosswalkTerm("autumn", calendar)
		require.NotNil(t, term)
		assert.Equal(t, "Fall", term.Name)
	})

	t.Run("substring fallback", func(t *testing.T) {
		term := c.CrosswalkTerm("Late Fall", calendar)
		require.NotNil(t, term)
		assert.Equal(t, "Fall", term.Name)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, c.CrosswalkTerm("Intersession", calendar))
	})
}
