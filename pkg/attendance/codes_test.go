package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func TestMapCode(t *testing.T) {
	tests := []struct {
		code     string
		expected models.AttendanceStatus
	}{
		{"P", models.AttendancePresent},
		{"present", models.AttendancePresent},
		{"1", models.AttendancePresent},
		{"yes", models.AttendancePresent},
		{"in", models.AttendancePresent},
		{"A", models.AttendanceAbsent},
		{"abs", models.AttendanceAbsent},
		{"0", models.AttendanceAbsent},
		{"out", models.AttendanceAbsent},
		{"T", models.AttendanceTardy},
		{"LATE", models.AttendanceTardy},
		{"lt", models.AttendanceTardy},
		{"E", models.AttendanceExcused},
		{"excused absence", models.AttendanceExcused},
		{"U", models.AttendanceUnexcused},
		{"ua", models.AttendanceUnexcused},
		{"virtual", models.AttendanceRemote},
		{"online", models.AttendanceRemote},
		{"ED", models.AttendanceEarlyDeparture},
		{"left early", models.AttendanceEarlyDeparture},
		{"  tardy  ", models.AttendanceTardy},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			m := NewCodeMapper()
			status, ok := m.MapCode(tt.code)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, status)
			assert.Empty(t, m.UnmappedCodes())
		})
	}
}

func TestMapCodeUnmapped(t *testing.T) {
	m := NewCodeMapper()

	status, ok := m.MapCode("X7")
	assert.False(t, ok)
	assert.Equal(t, models.AttendanceAbsent, status)

	// tracked once, in first-seen order
	m.MapCode("X7")
	m.MapCode("Z9")
	assert.Equal(t, []string{"X7", "Z9"}, m.UnmappedCodes())
}

func TestMapCodeEmpty(t *testing.T) {
	m := NewCodeMapper()

	status, ok := m.MapCode("")
	assert.False(t, ok)
	assert.Equal(t, models.AttendanceAbsent, status)
	assert.Empty(t, m.UnmappedCodes())
}

func TestAddCustomMapping(t *testing.T) {
	m := NewCodeMapper()

	m.AddCustomMapping("FT", models.AttendanceRemote)
	status, ok := m.MapCode("ft")
	assert.True(t, ok)
	assert.Equal(t, models.AttendanceRemote, status)

	// custom codes shadow the built-in table
	m.AddCustomMapping("T", models.AttendanceExcused)
	status, _ = m.MapCode("T")
	assert.Equal(t, models.AttendanceExcused, status)
}
