package idscan

import (
	"log"
	"strings"
)

// Nation confidence levels.
const (
	ConfidenceUSA     = 0.95
	ConfidenceCountry = 0.85
)

// USA is the only nation with month-first date conventions here.
const USA = "USA"

// DetectNation looks for a nation token in upper-cased OCR text. An explicit
// USA mention wins outright; otherwise the first country in reference order
// whose alpha-3 code or upper-cased name occurs anywhere in the text is taken.
// Substring matching is crude on purpose: OCR text has no reliable structure
// and false positives are caught by human review, not here.
func DetectNation(text string) (string, float64) {
	if strings.Contains(text, "USA") || strings.Contains(text, "UNITED STATES") {
		return USA, ConfidenceUSA
	}
	list, err := Countries()
	if err != nil {
		log.Printf("nation detection disabled: %v", err)
		return "", 0
	}
	for _, c := range list {
		if strings.Contains(text, c.Alpha3) || strings.Contains(text, c.upperName) {
			return c.Alpha3, ConfidenceCountry
		}
	}
	return "", 0
}
