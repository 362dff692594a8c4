package idscan

import (
	"strings"
	"time"

	"github.com/notAvailable404/openID/pkg/ocr"
)

// SampleLength bounds the debug OCR sample, counted before redaction.
const SampleLength = 150

// UnreadableMessage is the error reported for images that cannot be decoded.
const UnreadableMessage = "File not found or unreadable."

// ScanResult holds the fields extracted from one document. It is built once
// per scan and never modified afterwards.
type ScanResult struct {
	Nation           *string `json:"nation"`
	NationConfidence float64 `json:"nation_confidence"`
	Birth            *string `json:"birth"`
	BirthFormat      string  `json:"birth_format"`
	BirthConfidence  float64 `json:"birth_confidence"`
	NeedsHumanReview bool    `json:"needs_human_review"`

	*Debug
}

// Debug carries diagnostics. RawMatches is unredacted, so debug output must
// be treated as sensitive.
type Debug struct {
	RawMatches             []string `json:"raw_matches"`
	OCRTextSampleSanitized string   `json:"ocr_text_sample_sanitized"`
}

// Report is what a scan hands back: either a result or an error list.
type Report struct {
	*ScanResult
	Errors []string `json:"errors,omitempty"`
}

// Failed reports whether r carries errors instead of a result.
func (r Report) Failed() bool { return len(r.Errors) > 0 }

// ErrorReport builds an error-only report.
func ErrorReport(msgs ...string) Report {
	return Report{Errors: msgs}
}

// Assemble combines detector outputs. needs_human_review is derived: it is
// set exactly when either field is missing.
func Assemble(nation string, nationConf float64, birth string, birthConf float64) ScanResult {
	res := ScanResult{
		NationConfidence: nationConf,
		BirthFormat:      BirthFormat(nation),
		BirthConfidence:  birthConf,
		NeedsHumanReview: nation == "" || birth == "",
	}
	if nation != "" {
		res.Nation = &nation
	}
	if birth != "" {
		res.Birth = &birth
	}
	return res
}

// SanitizeSample returns the first SampleLength characters of text with
// newlines turned into spaces and every digit replaced by 'X'.
func SanitizeSample(text string) string {
	r := []rune(text)
	if len(r) > SampleLength {
		r = r[:SampleLength]
	}
	return ocr.Redact(strings.ReplaceAll(string(r), "\n", " "))
}

// Extract runs nation and date detection over upper-cased OCR text.
func Extract(text string, debug bool) ScanResult {
	return extractAt(text, debug, time.Now())
}

func extractAt(text string, debug bool, now time.Time) ScanResult {
	nation, nationConf := DetectNation(text)
	matches := FindDateCandidates(text)
	birth, birthConf := DetectBirth(text, nation, matches, now)

	res := Assemble(nation, nationConf, birth, birthConf)
	if debug {
		res.Debug = &Debug{
			RawMatches:             matches,
			OCRTextSampleSanitized: SanitizeSample(text),
		}
	}
	return res
}
