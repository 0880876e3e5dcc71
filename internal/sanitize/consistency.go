package sanitize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/keyublog/gaepan-core/internal/domain"
)

var (
	// notGuiltyPhrases detect an acquittal or dismissal disposition.
	notGuiltyPhrases = []string{"무죄", "무혐의", "혐의 없음", "혐의없음", "기각"}

	// guiltyPhrases detect a conviction-style disposition: a sentence,
	// fine, probation, or damages award.
	guiltyPhrases = []string{"유죄", "징역", "벌금", "집행유예", "배상", "지급하라"}
)

// acquittalLead is the canonical leading sentence substituted when prose
// and numbers disagree in the defendant's favor.
const acquittalLead = "피고는 무죄. 원고의 청구를 받아들이지 아니한다."

// conclusionLead marks a synthesized conclusion so a second pass does not
// append another one.
const conclusionLead = "쌍방의 사정을 종합하여"

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// EnforceConsistency repairs a verdict whose natural-language disposition
// contradicts its numeric fault ratio. Acquittal wording beats conviction
// wording when both appear, since acquittal statements are explicit. A
// not-guilty text with a guilty ratio forces the ratio to 0/100 and rewrites
// the leading sentence to the canonical acquittal; a guilty text with an
// innocent ratio nudges the ratio into the guilty band without touching the
// prose. A verdict with no detectable disposition gets one appended that
// matches its ratio. This is a repair, never a rejection, and is idempotent.
func EnforceConsistency(v *domain.Verdict) {
	switch {
	case containsAny(v.VerdictText, notGuiltyPhrases):
		if v.Ratio.GuiltImplied() {
			v.Ratio.Plaintiff = 0
			v.Ratio.Defendant = 100
			v.VerdictText = acquittalLead + trailAfterLead(v.VerdictText)
		}
	case containsAny(v.VerdictText, guiltyPhrases):
		if !v.Ratio.GuiltImplied() {
			v.Ratio.Plaintiff = 55
			v.Ratio.Defendant = 45
		}
	default:
		if v.Ratio.GuiltImplied() {
			v.VerdictText = strings.TrimSpace(v.VerdictText) + fmt.Sprintf(
				" 피고의 책임을 %d%%로 보아 그에 상응하는 배상을 명한다.", v.Ratio.Plaintiff)
		} else {
			v.VerdictText = strings.TrimSpace(v.VerdictText) + " 원고의 청구를 기각한다."
		}
	}
}

// trailAfterLead returns everything after the first sentence, keeping its
// leading space so concatenation stays readable.
func trailAfterLead(text string) string {
	if idx := firstSentenceEnd(text); idx >= 0 && idx+1 < len(text) {
		tail := strings.TrimLeft(text[idx+1:], " \t")
		if tail != "" {
			return " " + tail
		}
	}
	return ""
}

func firstSentenceEnd(text string) int {
	return strings.IndexAny(text, ".。．!?\n")
}

// EnsureConclusion guarantees the verdict text carries a substantive clause
// after its lead-in sentence. A truncated disposition (empty or
// punctuation-only tail) gets a synthesized fault-ratio summary appended so
// the caller never receives a verdict that trails off.
func EnsureConclusion(v *domain.Verdict) {
	if strings.Contains(v.VerdictText, conclusionLead) {
		return
	}
	idx := firstSentenceEnd(v.VerdictText)
	tail := ""
	if idx >= 0 && idx+1 < len(v.VerdictText) {
		tail = v.VerdictText[idx+1:]
	}
	if !trivialTail(tail) {
		return
	}
	v.VerdictText = strings.TrimSpace(v.VerdictText) + fmt.Sprintf(
		" 쌍방의 사정을 종합하여 피고의 책임 비율을 %d%%로 정한다.", v.Ratio.Plaintiff)
}

func trivialTail(tail string) bool {
	for _, r := range tail {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		return false
	}
	return true
}
