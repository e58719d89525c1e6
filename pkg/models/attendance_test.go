package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func periodRecord(status AttendanceStatus) AttendanceRecord {
	return AttendanceRecord{Status: status, AttendanceType: AttendanceTypePeriod}
}

func TestCalculateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []AttendanceStatus
		expected AttendanceStatus
	}{
		{"all absent", []AttendanceStatus{AttendanceAbsent, AttendanceAbsent, AttendanceAbsent}, AttendanceAbsent},
		{"majority absent", []AttendanceStatus{AttendanceAbsent, AttendanceAbsent, AttendancePresent}, AttendanceHalfDay},
		{"tardy no absences", []AttendanceStatus{AttendanceTardy, AttendancePresent, AttendancePresent}, AttendanceTardy},
		{"tardy with absence", []AttendanceStatus{AttendanceTardy, AttendanceAbsent, AttendancePresent, AttendancePresent}, AttendancePresent},
		{"all present", []AttendanceStatus{AttendancePresent, AttendancePresent}, AttendancePresent},
		{"excused counts as absent", []AttendanceStatus{AttendanceExcused, AttendanceExcused}, AttendanceAbsent},
		{"exactly half absent", []AttendanceStatus{AttendanceAbsent, AttendancePresent}, AttendancePresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &DailyAttendanceSummary{
				StudentID: "S1",
				Date:      time.Date(2024, time.September, 3, 0, 0, 0, 0, time.UTC),
			}
			for _, s := range tt.statuses {
				summary.PeriodRecords = append(summary.PeriodRecords, periodRecord(s))
			}

			assert.Equal(t, tt.expected, summary.CalculateStatus())
		})
	}
}

func TestCalculateStatusNoRecords(t *testing.T) {
	summary := &DailyAttendanceSummary{DailyStatus: AttendancePresent}
	assert.Equal(t, AttendancePresent, summary.CalculateStatus())
	assert.Equal(t, 0, summary.TotalPeriods)
}

func TestCalculateRate(t *testing.T) {
	agg := &AttendanceAggregate{
		DaysPresent: 170,
		DaysTardy:   5,
		DaysAbsent:  5,
		TotalDays:   180,
	}

	assert.Equal(t, 97.22, agg.CalculateRate())
}

func TestCalculateRateBounds(t *testing.T) {
	t.Run("all present is 100", func(t *testing.T) {
		agg := &AttendanceAggregate{DaysPresent: 10, TotalDays: 10}
		assert.Equal(t, 100.0, agg.CalculateRate())
	})

	t.Run("all absent is 0", func(t *testing.T) {
		agg := &AttendanceAggregate{DaysAbsent: 10, TotalDays: 10}
		assert.Equal(t, 0.0, agg.CalculateRate())
	})

	t.Run("no days is 0 not NaN", func(t *testing.T) {
		agg := &AttendanceAggregate{}
		assert.Equal(t, 0.0, agg.CalculateRate())
	})
}

func TestIsPresentIsAbsent(t *testing.T) {
	present := AttendanceRecord{Status: AttendanceRemote}
	assert.True(t, present.IsPresent())
	assert.False(t, present.IsAbsent())

	absent := AttendanceRecord{Status: AttendanceUnexcused}
	assert.False(t, absent.IsPresent())
	assert.True(t, absent.IsAbsent())

	early := AttendanceRecord{Status: AttendanceEarlyDeparture}
	assert.False(t, early.IsPresent())
	assert.False(t, early.IsAbsent())
}
