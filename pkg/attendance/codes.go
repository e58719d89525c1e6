// Package attendance maps source attendance codes onto the canonical
// taxonomy and rolls events up to daily and range-level aggregates
package attendance

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// codeMappings maps lower-cased source codes onto canonical statuses. The
// table covers the code vocabularies observed across student information
// systems.
var codeMappings = map[string]models.AttendanceStatus{
	// Present variations
	"p":       models.AttendancePresent,
	"present": models.AttendancePresent,
	"pres":    models.AttendancePresent,
	"pr":      models.AttendancePresent,
	"1":       models.AttendancePresent,
	"y":       models.AttendancePresent,
	"yes":     models.AttendancePresent,
	"in":      models.AttendancePresent,
	// Absent variations
	"a":      models.AttendanceAbsent,
	"absent": models.AttendanceAbsent,
	"abs":    models.AttendanceAbsent,
	"ab":     models.AttendanceAbsent,
	"0":      models.AttendanceAbsent,
	"n":      models.AttendanceAbsent,
	"no":     models.AttendanceAbsent,
	"out":    models.AttendanceAbsent,
	// Tardy variations
	"t":     models.AttendanceTardy,
	"tardy": models.AttendanceTardy,
	"late":  models.AttendanceTardy,
	"l":     models.AttendanceTardy,
	"lt":    models.AttendanceTardy,
	// Excused variations
	"e":               models.AttendanceExcused,
	"excused":         models.AttendanceExcused,
	"exc":             models.AttendanceExcused,
	"ex":              models.AttendanceExcused,
	"ea":              models.AttendanceExcused,
	"excused absence": models.AttendanceExcused,
	// Unexcused variations
	"u":                 models.AttendanceUnexcused,
	"unexcused":         models.AttendanceUnexcused,
	"unex":              models.AttendanceUnexcused,
	"ua":                models.AttendanceUnexcused,
	"unexcused absence": models.AttendanceUnexcused,
	// Remote variations
	"r":       models.AttendanceRemote,
	"remote":  models.AttendanceRemote,
	"virtual": models.AttendanceRemote,
	"v":       models.AttendanceRemote,
	"online":  models.AttendanceRemote,
	// Early departure
	"ed":              models.AttendanceEarlyDeparture,
	"early":           models.AttendanceEarlyDeparture,
	"early departure": models.AttendanceEarlyDeparture,
	"left early":      models.AttendanceEarlyDeparture,
}

// CodeMapper translates source attendance codes to canonical statuses.
// Custom mappings shadow the built-in table; codes neither table knows
// default to Absent and are tracked for reporting.
type CodeMapper struct {
	customMappings map[string]models.AttendanceStatus
	unmappedCodes  map[string]bool
	unmappedOrder  []string
}

// NewCodeMapper creates a code mapper with the standard taxonomy
func NewCodeMapper() *CodeMapper {
	return &CodeMapper{
		customMappings: make(map[string]models.AttendanceStatus),
		unmappedCodes:  make(map[string]bool),
	}
}

// AddCustomMapping registers a district-specific code. Custom codes are
// checked before the built-in table, so they can override it.
func (m *CodeMapper) AddCustomMapping(code string, status models.AttendanceStatus) {
	m.customMappings[strings.ToLower(strings.TrimSpace(code))] = status
}

// MapCode maps an attendance code to a canonical status. The second return
// reports whether the code was recognized; unrecognized codes map to Absent.
func (m *CodeMapper) MapCode(code string) (models.AttendanceStatus, bool) {
	if code == "" {
		return models.AttendanceAbsent, false
	}

	normalized := strings.ToLower(strings.TrimSpace(code))

	if status, ok := m.customMappings[normalized]; ok {
		return status, true
	}
	if status, ok := codeMappings[normalized]; ok {
		return status, true
	}

	if !m.unmappedCodes[code] {
		m.unmappedCodes[code] = true
		m.unmappedOrder = append(m.unmappedOrder, code)
	}
	return models.AttendanceAbsent, false
}

// UnmappedCodes returns the distinct codes that could not be mapped, in
// first-seen order.
func (m *CodeMapper) UnmappedCodes() []string {
	out := make([]string, len(m.unmappedOrder))
	copy(out, m.unmappedOrder)
	return out
}
