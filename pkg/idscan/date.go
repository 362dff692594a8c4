package idscan

import (
	"regexp"
	"strings"
	"time"
)

// ConfidenceBirth is reported when a keyword-gated date candidate parses.
const ConfidenceBirth = 0.90

// Birth date output conventions.
const (
	FormatMonthFirst = "MM/DD/YYYY"
	FormatDayFirst   = "DD/MM/YYYY"
)

// Separators are '/', '-', '.' or any white space. OCR output carries NBSP and
// vertical tabs, which \s alone does not match.
const dateSep = `[/\-.\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`

// 1-4 digits, separator, 2-9 alphanumerics (numeric month or month name),
// separator, 2-4 digits.
var dateCandidateRE = regexp.MustCompile(`\d{1,4}` + dateSep + `[A-Z0-9]{2,9}` + dateSep + `\d{2,4}`)

// Literal labels that must appear somewhere in the text before any date is
// taken. "3 " and "POS" are kept verbatim; they track field labels seen on
// real cards and MRZ artifacts.
var dateKeywords = []string{"DOB", "BIRTH", "BORN", "DATE", "3 ", "POS"}

// FindDateCandidates returns every non-overlapping date-shaped token in text,
// left to right.
func FindDateCandidates(text string) []string {
	matches := dateCandidateRE.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// HasDateContext reports whether text carries any date keyword.
func HasDateContext(text string) bool {
	for _, kw := range dateKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// BirthFormat returns the output convention for nation.
func BirthFormat(nation string) string {
	if nation == USA {
		return FormatMonthFirst
	}
	return FormatDayFirst
}

func birthLayout(nation string) string {
	if nation == USA {
		return "01/02/2006"
	}
	return "02/01/2006"
}

// DetectBirth returns the first candidate that parses, formatted for nation.
// Nothing is returned when text has no date keyword. Later candidates are not
// consulted once one parses, even if it is implausible as a birth date.
func DetectBirth(text, nation string, candidates []string, now time.Time) (string, float64) {
	if !HasDateContext(text) {
		return "", 0
	}
	dayFirst := nation != USA
	for _, c := range candidates {
		t, err := ParseDate(strings.ReplaceAll(c, ":", " "), dayFirst, now)
		if err != nil {
			continue
		}
		return t.Format(birthLayout(nation)), ConfidenceBirth
	}
	return "", 0
}
