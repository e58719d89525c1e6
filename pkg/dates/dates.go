// Package dates parses the date formats observed across student information
// system exports
package dates

import (
	"regexp"
	"strings"
	"time"
)

// layouts is ordered: unambiguous ISO forms first, then US month-first
// forms, then day-first, then long forms. The first layout that parses wins.
var layouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"01-02-2006",
	"01/02/2006",
	"02-01-2006",
	"January 2 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// Parse attempts to parse a date string in any supported layout. Ordinal
// suffixes ("June 1st 2024") are stripped first. Empty, "NULL", and "N/A"
// values return (zero, false) without being an error; genuinely unparseable
// strings also return false and the caller decides whether that is an issue.
func Parse(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	switch strings.ToUpper(s) {
	case "NULL", "N/A":
		return time.Time{}, false
	}

	s = ordinalSuffix.ReplaceAllString(s, "$1")

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// DaysBetween returns the whole-day difference between two dates (b - a).
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DateOnly truncates a time to midnight UTC for day-level comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
