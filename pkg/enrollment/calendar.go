// Package enrollment normalizes enrollment spans and academic calendars
package enrollment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// termMappings maps lower-cased source term names onto canonical names.
var termMappings = map[string]struct {
	name     string
	termType models.TermType
}{
	// Semesters
	"fall":            {"Fall", models.TermTypeSemester},
	"fall semester":   {"Fall", models.TermTypeSemester},
	"fall sem":        {"Fall", models.TermTypeSemester},
	"autumn":          {"Fall", models.TermTypeSemester},
	"spring":          {"Spring", models.TermTypeSemester},
	"spring semester": {"Spring", models.TermTypeSemester},
	"spring sem":      {"Spring", models.TermTypeSemester},
	// Quarters
	"q1":        {"Quarter 1", models.TermTypeQuarter},
	"q2":        {"Quarter 2", models.TermTypeQuarter},
	"q3":        {"Quarter 3", models.TermTypeQuarter},
	"q4":        {"Quarter 4", models.TermTypeQuarter},
	"quarter 1": {"Quarter 1", models.TermTypeQuarter},
	"quarter 2": {"Quarter 2", models.TermTypeQuarter},
	"quarter 3": {"Quarter 3", models.TermTypeQuarter},
	"quarter 4": {"Quarter 4", models.TermTypeQuarter},
	// Trimesters
	"t1":   {"Trimester 1", models.TermTypeTrimester},
	"t2":   {"Trimester 2", models.TermTypeTrimester},
	"t3":   {"Trimester 3", models.TermTypeTrimester},
	"tri1": {"Trimester 1", models.TermTypeTrimester},
	"tri2": {"Trimester 2", models.TermTypeTrimester},
	"tri3": {"Trimester 3", models.TermTypeTrimester},
	// Full year
	"year":      {"Full Year", models.TermTypeYear},
	"full year": {"Full Year", models.TermTypeYear},
	"annual":    {"Full Year", models.TermTypeYear},
	// Summer
	"summer":         {"Summer", models.TermTypeSummer},
	"summer session": {"Summer", models.TermTypeSummer},
	"summer school":  {"Summer", models.TermTypeSummer},
}

var (
	fullYearPattern  = regexp.MustCompile(`^\d{4}-\d{4}$`)
	startYearPattern = regexp.MustCompile(`^\d{4}$`)
	shortYearPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
)

// Calendar canonicalizes term names and builds standard academic calendars.
type Calendar struct {
	terms map[string]*models.AcademicTerm
}

// NewCalendar creates an empty calendar normalizer
func NewCalendar() *Calendar {
	return &Calendar{terms: make(map[string]*models.AcademicTerm)}
}

// NormalizeTermName maps a source term name to its canonical name and type.
// Unknown names default to a title-cased semester.
func (c *Calendar) NormalizeTermName(term string) (string, models.TermType) {
	if m, ok := termMappings[strings.ToLower(strings.TrimSpace(term))]; ok {
		return m.name, m.termType
	}
	return normalizers.TitleCase(term), models.TermTypeSemester
}

// ParseSchoolYear canonicalizes school year strings to YYYY-YYYY. A bare
// start year gets the following year appended; two-digit ranges infer the
// century (values below 50 are 20xx). Unrecognized formats pass through.
func (c *Calendar) ParseSchoolYear(year string) string {
	year = strings.TrimSpace(year)

	if fullYearPattern.MatchString(year) {
		return year
	}

	if startYearPattern.MatchString(year) {
		start, _ := strconv.Atoi(year)
		return fmt.Sprintf("%d-%d", start, start+1)
	}

	if m := shortYearPattern.FindStringSubmatch(year); m != nil {
		start, _ := strconv.Atoi(m[1])
		century := "20"
		if start >= 50 {
			century = "19"
		}
		return fmt.Sprintf("%s%s-%s%s", century, m[1], century, m[2])
	}

	return year
}

// StandardCalendar builds the standard term windows for a school year.
// Semester calendars get Fall (Aug 15 - Dec 20) and Spring (Jan 5 - May 25);
// quarter calendars split the same windows in four.
func (c *Calendar) StandardCalendar(schoolYear string, termType models.TermType) []models.AcademicTerm {
	schoolYear = c.ParseSchoolYear(schoolYear)

	parts := strings.Split(schoolYear, "-")
	startYear, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}
	endYear := startYear + 1
	if len(parts) > 1 {
		if y, err := strconv.Atoi(parts[1]); err == nil {
			endYear = y
		}
	}

	var terms []models.AcademicTerm

	switch termType {
	case models.TermTypeSemester:
		terms = []models.AcademicTerm{
			{
				ID:         fmt.Sprintf("%s-FALL", schoolYear),
				Name:       "Fall",
				TermType:   models.TermTypeSemester,
				StartDate:  time.Date(startYear, time.August, 15, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(startYear, time.December, 20, 0, 0, 0, 0, time.UTC),
				SchoolYear: schoolYear,
				IsPrimary:  true,
			},
			{
				ID:         fmt.Sprintf("%s-SPRING", schoolYear),
				Name:       "Spring",
				TermType:   models.TermTypeSemester,
				StartDate:  time.Date(endYear, time.January, 5, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(endYear, time.May, 25, 0, 0, 0, 0, time.UTC),
				SchoolYear: schoolYear,
				IsPrimary:  true,
			},
		}

	case models.TermTypeQuarter:
		windows := []struct {
			name             string
			startM, startD   int
			endM, endD       int
		}{
			{"Quarter 1", 8, 15, 10, 15},
			{"Quarter 2", 10, 16, 12, 20},
			{"Quarter 3", 1, 5, 3, 15},
			{"Quarter 4", 3, 16, 5, 25},
		}
		for i, w := range windows {
			year := startYear
			if i >= 2 {
				year = endYear
			}
			terms = append(terms, models.AcademicTerm{
				ID:         fmt.Sprintf("%s-Q%d", schoolYear, i+1),
				Name:       w.name,
				TermType:   models.TermTypeQuarter,
				StartDate:  time.Date(year, time.Month(w.startM), w.startD, 0, 0, 0, 0, time.UTC),
				EndDate:    time.Date(year, time.Month(w.endM), w.endD, 0, 0, 0, 0, time.UTC),
				SchoolYear: schoolYear,
				IsPrimary:  true,
			})
		}
	}

	for i := range terms {
		term := terms[i]
		c.terms[term.ID] = &term
	}

	return terms
}

// CrosswalkTerm maps a source system term name onto a term of the target
// calendar: exact canonical-name match first, substring match as fallback.
// Returns nil when no term matches.
func (c *Calendar) CrosswalkTerm(sourceTerm string, targetCalendar []models.AcademicTerm) *models.AcademicTerm {
	canonical, _ := c.NormalizeTermName(sourceTerm)

	for i := range targetCalendar {
		if strings.EqualFold(targetCalendar[i].Name, canonical) {
			return &targetCalendar[i]
		}
	}

	sourceLower := strings.ToLower(sourceTerm)
	for i := range targetCalendar {
		nameLower := strings.ToLower(targetCalendar[i].Name)
		if strings.Contains(nameLower, sourceLower) || strings.Contains(sourceLower, nameLower) {
			return &targetCalendar[i]
		}
	}

	return nil
}

// Term returns a previously built term by id.
func (c *Calendar) Term(id string) (*models.AcademicTerm, bool) {
	t, ok := c.terms[id]
	return t, ok
}
