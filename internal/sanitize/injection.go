// Package sanitize contains the pure text transformations of the verdict
// pipeline: prompt-injection screening, citation allow-listing, and the
// consistency repair that keeps a verdict's numbers and prose in agreement.
// Nothing in this package performs I/O.
package sanitize

import (
	"regexp"
	"strings"
)

// injectionMarkers is the fixed set of prompt-leak and role-override markers.
// Matching any of them classifies the text as hostile. The structured
// key=value form catches attempts to smuggle control blocks into the prompt.
var injectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(system|assistant|role|instruction)\s*=\s*\S`),
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior)\s+instructions?`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+`),
	regexp.MustCompile(`(?i)^\s*###\s*(system|instruction)`),
	regexp.MustCompile(`이전\s*지시(사항)?\s*(를|은|는)?\s*무시`),
	regexp.MustCompile(`위\s*(의)?\s*(지시|명령|프롬프트)\s*(를|은|는)?\s*무시`),
	regexp.MustCompile(`당신은\s*이제`),
	regexp.MustCompile(`시스템\s*프롬프트`),
	regexp.MustCompile(`프롬프트\s*(를|을)?\s*(공개|출력|유출)`),
}

// DetectInjection reports whether text contains any known prompt-override
// marker. It is used both to reject hostile submissions before the pipeline
// runs and to screen the model's own output.
func DetectInjection(text string) bool {
	for _, marker := range injectionMarkers {
		if marker.MatchString(text) {
			return true
		}
	}
	return false
}

// StripControlMarkers removes any line of text that carries an injection
// marker. It is the scrubbing counterpart of DetectInjection, applied to
// model output where rejecting the whole response would be wasteful.
func StripControlMarkers(text string) string {
	if !DetectInjection(text) {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if DetectInjection(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
