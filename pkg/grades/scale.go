// Package grades translates raw grades across scales and builds transcripts
package grades

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

var letterPattern = regexp.MustCompile(`^[A-F][+-]?$`)

// letterToPoints maps normalized letter grades onto 4.0-scale grade points.
// Pass/fail and administrative grades carry no grade points; they are
// present with a nil value so lookup can distinguish "no GPA impact" from
// "unknown grade".
var letterToPoints = map[string]*float64{
	"A+": ptr(4.0), "A": ptr(4.0), "A-": ptr(3.7),
	"B+": ptr(3.3), "B": ptr(3.0), "B-": ptr(2.7),
	"C+": ptr(2.3), "C": ptr(2.0), "C-": ptr(1.7),
	"D+": ptr(1.3), "D": ptr(1.0), "D-": ptr(0.7),
	"F":  ptr(0.0),
	"P":  nil, // pass, no GPA impact
	"NP": nil, // no pass
	"I":  nil, // incomplete
	"W":  nil, // withdrawn
}

func ptr(f float64) *float64 { return &f }

type scaleStep struct {
	threshold float64
	letter    string
}

var percentageToLetter = []scaleStep{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {63, "D"}, {60, "D-"},
	{0, "F"},
}

var numericToLetter = []scaleStep{
	{4.0, "A"}, {3.7, "A-"},
	{3.3, "B+"}, {3.0, "B"}, {2.7, "B-"},
	{2.3, "C+"}, {2.0, "C"}, {1.7, "C-"},
	{1.3, "D+"}, {1.0, "D"}, {0.7, "D-"},
	{0.0, "F"},
}

// letterVariations maps verbose source spellings to standard letters.
var letterVariations = map[string]string{
	"A PLUS": "A+", "A MINUS": "A-",
	"B PLUS": "B+", "B MINUS": "B-",
	"C PLUS": "C+", "C MINUS": "C-",
	"D PLUS": "D+", "D MINUS": "D-",
	"PASS": "P", "FAIL": "F",
	"SATISFACTORY": "P", "UNSATISFACTORY": "F",
	"S": "P", "U": "F",
	"NO PASS": "NP",
}

var passFailSet = map[string]bool{
	"P": true, "NP": true, "PASS": true, "FAIL": true, "S": true, "U": true,
}

// DetectType classifies a raw grade value. Letter grades and pass/fail
// markers are recognized by shape; numeric values in [0,100] read as
// percentages, so a bare GPA-looking value like "3.3" classifies as a
// percentage too. Everything else, including blank and NULL values,
// defaults to Letter.
func DetectType(raw string) models.GradeType {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == "NULL" || s == "N/A" {
		return models.GradeTypeLetter
	}

	if letterPattern.MatchString(s) {
		return models.GradeTypeLetter
	}

	if passFailSet[s] {
		return models.GradeTypePassFail
	}

	if v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64); err == nil {
		if v >= 0 && v <= 100 {
			return models.GradeTypePercentage
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v >= 0 && v <= 5 {
			return models.GradeTypeNumeric
		}
	}

	return models.GradeTypeLetter
}

// NormalizeLetterGrade maps a raw letter grade, including verbose variants
// like "A PLUS" and "SATISFACTORY", to its standard form. Returns "" when
// the value is not a recognizable letter grade.
func NormalizeLetterGrade(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == "NULL" || s == "N/A" {
		return ""
	}

	if v, ok := letterVariations[s]; ok {
		return v
	}

	if letterPattern.MatchString(s) {
		return s
	}

	// Pass/fail and administrative markers are valid letters with no points
	switch s {
	case "P", "NP", "I", "W":
		return s
	}

	return ""
}

// PercentageToLetter converts a percentage to a letter grade.
func PercentageToLetter(percentage float64) string {
	for _, step := range percentageToLetter {
		if percentage >= step.threshold {
			return step.letter
		}
	}
	return "F"
}

// NumericToLetter converts a 4.0-scale numeric grade to a letter grade.
func NumericToLetter(numeric float64) string {
	for _, step := range numericToLetter {
		if numeric >= step.threshold {
			return step.letter
		}
	}
	return "F"
}

// LetterToPoints converts a letter grade to grade points. The second return
// is false when the grade carries no GPA value (pass/fail, incomplete,
// withdrawn, or unrecognized).
func LetterToPoints(letter string) (float64, bool) {
	normalized := NormalizeLetterGrade(letter)
	if normalized == "" {
		return 0, false
	}
	points, ok := letterToPoints[normalized]
	if !ok || points == nil {
		return 0, false
	}
	return *points, true
}
