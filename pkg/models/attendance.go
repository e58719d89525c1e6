package models

import (
	"math"
	"time"
)

// AttendanceStatus is the canonical attendance taxonomy every source-specific
// code is mapped onto.
type AttendanceStatus string

const (
	AttendancePresent        AttendanceStatus = "Present"
	AttendanceAbsent         AttendanceStatus = "Absent"
	AttendanceTardy          AttendanceStatus = "Tardy"
	AttendanceExcused        AttendanceStatus = "Excused"
	AttendanceUnexcused      AttendanceStatus = "Unexcused"
	AttendanceRemote         AttendanceStatus = "Remote"
	AttendanceEarlyDeparture AttendanceStatus = "Early Departure"
	AttendanceHalfDay        AttendanceStatus = "Half Day"
)

// AttendanceType distinguishes daily from period-level observations.
type AttendanceType string

const (
	AttendanceTypeDaily  AttendanceType = "daily"
	AttendanceTypePeriod AttendanceType = "period"
	AttendanceTypeCourse AttendanceType = "course"
)

// AttendanceRecord is one period-or-daily attendance observation.
type AttendanceRecord struct {
	ID             string           `json:"id"`
	StudentID      string           `json:"student_id"`
	Date           time.Time        `json:"date"`
	Status         AttendanceStatus `json:"status"`
	AttendanceType AttendanceType   `json:"attendance_type"`
	Period         *int             `json:"period,omitempty"`
	SectionID      string           `json:"section_id,omitempty"`
	TeacherName    string           `json:"teacher_name,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	SourceCode     string           `json:"source_code,omitempty"` // original code from the source system
	SourceSystem   string           `json:"source_system,omitempty"`
}

// IsPresent reports whether the status counts as presence.
func (r *AttendanceRecord) IsPresent() bool {
	switch r.Status {
	case AttendancePresent, AttendanceTardy, AttendanceRemote, AttendanceHalfDay:
		return true
	}
	return false
}

// IsAbsent reports whether the status counts as absence.
func (r *AttendanceRecord) IsAbsent() bool {
	switch r.Status {
	case AttendanceAbsent, AttendanceExcused, AttendanceUnexcused:
		return true
	}
	return false
}

// DailyAttendanceSummary derives one daily status per (student, date) from
// all period records on that date. The daily status is a pure function of the
// period records and is recomputed whenever they change.
type DailyAttendanceSummary struct {
	StudentID      string             `json:"student_id"`
	Date           time.Time          `json:"date"`
	PeriodsPresent int                `json:"periods_present"`
	PeriodsAbsent  int                `json:"periods_absent"`
	PeriodsTardy   int                `json:"periods_tardy"`
	TotalPeriods   int                `json:"total_periods"`
	DailyStatus    AttendanceStatus   `json:"daily_status"`
	PeriodRecords  []AttendanceRecord `json:"-"`
}

// CalculateStatus derives the daily status from the period records.
// The rules apply in strict priority order, not as a weighted vote:
// all periods absent -> Absent; more than half absent -> HalfDay;
// any tardy with no absences -> Tardy; otherwise Present.
func (s *DailyAttendanceSummary) CalculateStatus() AttendanceStatus {
	if len(s.PeriodRecords) == 0 {
		return s.DailyStatus
	}

	s.TotalPeriods = len(s.PeriodRecords)
	s.PeriodsPresent = 0
	s.PeriodsAbsent = 0
	s.PeriodsTardy = 0
	for i := range s.PeriodRecords {
		r := &s.PeriodRecords[i]
		if r.IsPresent() {
			s.PeriodsPresent++
		}
		if r.IsAbsent() {
			s.PeriodsAbsent++
		}
		if r.Status == AttendanceTardy {
			s.PeriodsTardy++
		}
	}

	switch {
	case s.PeriodsAbsent == s.TotalPeriods:
		s.DailyStatus = AttendanceAbsent
	case float64(s.PeriodsAbsent) > float64(s.TotalPeriods)/2:
		s.DailyStatus = AttendanceHalfDay
	case s.PeriodsTardy > 0 && s.PeriodsAbsent == 0:
		s.DailyStatus = AttendanceTardy
	default:
		s.DailyStatus = AttendancePresent
	}

	return s.DailyStatus
}

// AttendanceAggregate rolls a date range into day-level counts and a rate.
type AttendanceAggregate struct {
	StudentID      string    `json:"student_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	DaysPresent    int       `json:"days_present"`
	DaysAbsent     int       `json:"days_absent"`
	DaysTardy      int       `json:"days_tardy"`
	DaysExcused    int       `json:"days_excused"`
	DaysUnexcused  int       `json:"days_unexcused"`
	TotalDays      int       `json:"total_days"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// CalculateRate computes the attendance rate as a percentage:
// (present + tardy) / total days * 100, rounded to 2 decimals.
func (a *AttendanceAggregate) CalculateRate() float64 {
	if a.TotalDays > 0 {
		a.AttendanceRate = roundTo(float64(a.DaysPresent+a.DaysTardy)/float64(a.TotalDays)*100, 2)
	}
	return a.AttendanceRate
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
