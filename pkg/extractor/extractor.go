// Package extractor resolves heterogeneous source field names into the fixed
// internal schema at the ingest boundary
package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Extractor reads canonical fields out of raw source records using a
// per-domain alias table. Lookup tries each alias in declared order and
// returns the first field present in the record, so alias order encodes
// source precedence.
type Extractor struct {
	aliases map[string][]string // canonical field -> accepted source names
}

// New creates an Extractor over the given alias table.
func New(aliases map[string][]string) *Extractor {
	return &Extractor{aliases: aliases}
}

// candidates returns the source names to probe for a canonical field.
// A field with no alias entry is looked up by its own name.
func (e *Extractor) candidates(field string) []string {
	if names, ok := e.aliases[field]; ok {
		return names
	}
	return []string{field}
}

// Raw returns the first present value for a canonical field.
func (e *Extractor) Raw(record map[string]any, field string) (any, bool) {
	for _, name := range e.candidates(field) {
		if v, ok := record[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the field as a trimmed string, or "" when absent.
func (e *Extractor) String(record map[string]any, field string) string {
	v, ok := e.Raw(record, field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(toString(v))
}

// StringOr returns the field as a string, or fallback when absent or blank.
func (e *Extractor) StringOr(record map[string]any, field, fallback string) string {
	if s := e.String(record, field); s != "" {
		return s
	}
	return fallback
}

// Int returns the field as an int. Absent or unparseable values yield
// (0, false); floats truncate.
func (e *Extractor) Int(record map[string]any, field string) (int, bool) {
	v, ok := e.Raw(record, field)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// IntOr returns the field as an int, or fallback when absent or unparseable.
func (e *Extractor) IntOr(record map[string]any, field string, fallback int) int {
	if i, ok := e.Int(record, field); ok {
		return i
	}
	return fallback
}

// Float returns the field as a float64. Absent or unparseable values yield
// (0, false).
func (e *Extractor) Float(record map[string]any, field string) (float64, bool) {
	v, ok := e.Raw(record, field)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Bool parses the field leniently: yes/true/1/y (any case) are true,
// everything else, including absence, is false.
func (e *Extractor) Bool(record map[string]any, field string) bool {
	s := strings.ToLower(e.String(record, field))
	switch s {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

// toString converts any raw field value to a string
func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// Whole-number floats print without a decimal point; JSON decodes
		// all numbers as float64
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Per-domain alias tables. Each maps a canonical field name to the source
// field names observed across student information systems, in precedence
// order.

// StudentAliases resolves person-record fields for identity matching.
var StudentAliases = map[string][]string{
	"student_id":    {"student_id", "StudentID", "id", "ID"},
	"first_name":    {"first_name", "FirstName", "fname"},
	"last_name":     {"last_name", "LastName", "lname"},
	"email":         {"email", "Email", "email_address"},
	"state_id":      {"state_id", "StateID", "state_student_id"},
	"date_of_birth": {"date_of_birth", "dob", "DOB", "birth_date"},
	"phone":         {"phone", "Phone", "phone_number"},
	"grade":         {"grade", "grade_level", "Grade"},
	"status":        {"status", "Status", "enrollment_status"},
}

// GuardianAliases resolves guardian/household fields.
var GuardianAliases = map[string][]string{
	"guardian_id":        {"guardian_id", "GuardianID", "id"},
	"first_name":         {"first_name", "FirstName"},
	"last_name":          {"last_name", "LastName"},
	"email":              {"email", "Email"},
	"phone":              {"phone", "Phone"},
	"student_ids":        {"student_ids", "StudentIDs", "students"},
	"relationship":       {"relationship", "relationship_type", "Relationship"},
	"custody_type":       {"custody_type", "CustodyType", "custody"},
	"emergency_priority": {"emergency_priority", "EmergencyPriority"},
	"receives_mail":      {"receives_mail", "ReceivesMail"},
	"can_pickup":         {"can_pickup", "CanPickup"},
	"grade_visibility":   {"grade_visibility", "GradeVisibility"},
}

// EnrollmentAliases resolves enrollment-span fields.
var EnrollmentAliases = map[string][]string{
	"enrollment_id": {"enrollment_id", "EnrollmentID", "id"},
	"student_id":    {"student_id", "StudentID"},
	"school_id":     {"school_id", "SchoolID"},
	"school_name":   {"school_name", "SchoolName", "school"},
	"grade_level":   {"grade_level", "GradeLevel", "grade"},
	"start_date":    {"start_date", "StartDate", "entry_date"},
	"end_date":      {"end_date", "EndDate", "exit_date"},
	"status":        {"status", "Status"},
	"entry_reason":  {"entry_reason", "EntryReason"},
	"exit_reason":   {"exit_reason", "ExitReason"},
}

// GradeAliases resolves gradebook fields; legacy systems export upper-cased
// column names.
var GradeAliases = map[string][]string{
	"student_id":  {"STUDENT_ID", "student_id", "StudentID"},
	"grade":       {"GRADE", "grade", "Grade"},
	"credits":     {"CREDITS", "credits", "Credits"},
	"course_code": {"COURSE_CODE", "course_code", "CourseCode"},
	"course_name": {"COURSE_NAME", "course_name", "CourseName"},
	"term":        {"SEMESTER", "term", "Term", "semester"},
	"year":        {"YEAR", "year", "school_year"},
	"instructor":  {"INSTRUCTOR", "instructor", "teacher"},
	"status":      {"STATUS", "status"},
}

// AttendanceAliases resolves attendance-event fields.
var AttendanceAliases = map[string][]string{
	"id":         {"ID", "id"},
	"student_id": {"StudentID", "student_id"},
	"date":       {"Date", "date"},
	"status":     {"Status", "status", "code", "attendance_code"},
	"period":     {"Period", "period"},
	"section_id": {"SectionID", "section_id"},
	"teacher":    {"Teacher", "teacher", "teacher_name"},
	"notes":      {"Notes", "notes"},
}

// FromJSON parses raw JSON into the map form the extractor consumes.
func FromJSON(data json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return m, nil
}
