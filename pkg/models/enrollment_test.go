package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEnrollmentSpanIsActive(t *testing.T) {
	span := EnrollmentSpan{
		StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   datePtr(2024, time.June, 10),
	}

	assert.True(t, span.IsActive(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, span.IsActive(span.StartDate))
	assert.True(t, span.IsActive(*span.EndDate))
	assert.False(t, span.IsActive(time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, span.IsActive(time.Date(2023, time.August, 14, 0, 0, 0, 0, time.UTC)))

	open := EnrollmentSpan{StartDate: span.StartDate}
	assert.True(t, open.IsActive(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestEnrollmentSpanOverlapsWith(t *testing.T) {
	t.Run("closed spans overlapping", func(t *testing.T) {
		a := EnrollmentSpan{
			StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.January, 31),
		}
		b := EnrollmentSpan{
			StartDate: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.June, 10),
		}

		overlaps, days := a.OverlapsWith(&b)
		assert.True(t, overlaps)
		assert.Equal(t, 12, days) // Jan 20 through Jan 31 inclusive
	})

	t.Run("disjoint spans", func(t *testing.T) {
		a := EnrollmentSpan{
			StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.January, 15),
		}
		b := EnrollmentSpan{
			StartDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.June, 10),
		}

		overlaps, days := a.OverlapsWith(&b)
		assert.False(t, overlaps)
		assert.Equal(t, 0, days)
	})

	t.Run("both open same school", func(t *testing.T) {
		a := EnrollmentSpan{SchoolID: "SCH1", StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC)}
		b := EnrollmentSpan{SchoolID: "SCH1", StartDate: time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)}

		overlaps, _ := a.OverlapsWith(&b)
		assert.True(t, overlaps)
	})

	t.Run("both open different schools", func(t *testing.T) {
		a := EnrollmentSpan{SchoolID: "SCH1", StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC)}
		b := EnrollmentSpan{SchoolID: "SCH2", StartDate: time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)}

		overlaps, _ := a.OverlapsWith(&b)
		assert.False(t, overlaps)
	})
}

func TestEnrollmentSpanGapWith(t *testing.T) {
	t.Run("gap between closed spans", func(t *testing.T) {
		a := EnrollmentSpan{
			StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.January, 15),
		}
		b := EnrollmentSpan{
			StartDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.June, 10),
		}

		hasGap, days := a.GapWith(&b)
		assert.True(t, hasGap)
		assert.Equal(t, 16, days) // Jan 16 through Jan 31

		// symmetric
		hasGap, days = b.GapWith(&a)
		assert.True(t, hasGap)
		assert.Equal(t, 16, days)
	})

	t.Run("adjacent spans have no gap", func(t *testing.T) {
		a := EnrollmentSpan{
			StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.January, 15),
		}
		b := EnrollmentSpan{
			StartDate: time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.June, 10),
		}

		hasGap, days := a.GapWith(&b)
		assert.False(t, hasGap)
		assert.Equal(t, 0, days)
	})

	t.Run("open span has no computable gap", func(t *testing.T) {
		a := EnrollmentSpan{
			StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
		}
		b := EnrollmentSpan{
			StartDate: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   datePtr(2024, time.June, 10),
		}

		hasGap, _ := a.GapWith(&b)
		assert.False(t, hasGap)
	})
}

func TestAcademicTerm(t *testing.T) {
	fall := AcademicTerm{
		Name:      "Fall Semester",
		TermType:  TermTypeSemester,
		StartDate: time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC),
	}
	spring := AcademicTerm{
		Name:      "Spring Semester",
		TermType:  TermTypeSemester,
		StartDate: time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, 128, fall.DurationDays())
	assert.True(t, fall.ContainsDate(time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fall.ContainsDate(fall.StartDate))
	assert.True(t, fall.ContainsDate(fall.EndDate))
	assert.False(t, fall.ContainsDate(spring.StartDate))
	assert.False(t, fall.OverlapsWith(&spring))

	q2 := AcademicTerm{
		TermType:  TermTypeQuarter,
		StartDate: time.Date(2023, time.October, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, fall.OverlapsWith(&q2))
}
