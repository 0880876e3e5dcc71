package sanitize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RedactedCitation replaces any citation the retrieved precedent set does
// not vouch for. It deliberately contains no digits so a second sanitization
// pass leaves it untouched.
const RedactedCitation = "[판례 번호 삭제]"

var (
	// citationToken matches citation-shaped tokens such as "2015도1234" or
	// "88 다 1238" anywhere in prose.
	citationToken = regexp.MustCompile(`(\d{2,4})\s*(도|다|가|나)\s*(\d+)`)

	// wholeCitation matches a string that is exactly one citation token.
	wholeCitation = regexp.MustCompile(`^(\d{2,4})\s*(도|다|가|나)\s*(\d+)$`)

	// BareCitation matches a bare 4-digit-year case number, used to drop
	// citation numbers masquerading as case names in keyword output.
	BareCitation = regexp.MustCompile(`^\d{4}(도|다|가|나)\d+$`)
)

// NormalizeCaseNumber expands a two-digit-year citation to its four-digit
// form: years up to 30 map into the 2000s, the rest into the 1900s.
// "88도1238" becomes "1988도1238"; four-digit inputs pass through unchanged,
// and anything that is not citation-shaped is returned as-is.
func NormalizeCaseNumber(raw string) string {
	m := wholeCitation.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return raw
	}
	return normalizeParts(m[1], m[2], m[3])
}

func normalizeParts(year, court, seq string) string {
	if len(year) == 2 {
		y, _ := strconv.Atoi(year)
		if y <= 30 {
			y += 2000
		} else {
			y += 1900
		}
		return fmt.Sprintf("%d%s%s", y, court, seq)
	}
	return year + court + seq
}

// CitationSet is the allow-list of case numbers parsed from a precedent
// block, held in normalized form.
type CitationSet map[string]struct{}

// Contains reports membership, with normalization applied to the probe so
// "88도1238" and "1988도1238" hit the same entry.
func (s CitationSet) Contains(token string) bool {
	if _, ok := s[token]; ok {
		return true
	}
	_, ok := s[NormalizeCaseNumber(token)]
	return ok
}

// ExtractCitations scans a text block for all citation-shaped tokens and
// returns them as a normalized set. The result is the allow-list for
// SanitizeCitations.
func ExtractCitations(block string) CitationSet {
	set := CitationSet{}
	for _, m := range citationToken.FindAllStringSubmatch(block, -1) {
		set[normalizeParts(m[1], m[2], m[3])] = struct{}{}
	}
	return set
}

// SanitizeCitations replaces every citation-shaped token in text with
// RedactedCitation unless the allow-list vouches for it. When hasSource is
// false no precedent block was supplied, there is nothing to compare
// against, and the text is returned unchanged. When hasSource is true an
// empty allow-list still redacts: a source with no extractable citations
// permits none. The operation is idempotent.
func SanitizeCitations(text string, allowed CitationSet, hasSource bool) string {
	if !hasSource {
		return text
	}
	return citationToken.ReplaceAllStringFunc(text, func(token string) string {
		compact := strings.Join(strings.Fields(token), "")
		if allowed.Contains(compact) {
			return token
		}
		return RedactedCitation
	})
}
