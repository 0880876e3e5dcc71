package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyublog/gaepan-core/internal/domain"
)

func verdictWith(plaintiff int, text string) *domain.Verdict {
	return &domain.Verdict{
		Title:       "판결",
		Ratio:       domain.FaultRatio{Plaintiff: plaintiff, Defendant: 100 - plaintiff, Rationale: "근거"},
		VerdictText: text,
	}
}

func TestEnforceConsistency_AcquittalTextBeatsGuiltyRatio(t *testing.T) {
	v := verdictWith(80, "피고는 무죄. 원고의 주장은 이유 없다.")

	EnforceConsistency(v)

	assert.Equal(t, 0, v.Ratio.Plaintiff, "acquittal wording forces the ratio to zero")
	assert.Equal(t, 100, v.Ratio.Defendant)
	assert.Contains(t, v.VerdictText, "무죄")
	assert.Contains(t, v.VerdictText, "원고의 주장은 이유 없다",
		"everything after the rewritten lead survives")
}

func TestEnforceConsistency_GuiltyTextNudgesInnocentRatio(t *testing.T) {
	v := verdictWith(30, "피고는 원고에게 위자료를 지급하라.")

	EnforceConsistency(v)

	assert.True(t, v.Ratio.GuiltImplied(), "guilty wording pulls the ratio into the guilty band")
	assert.Equal(t, 100, v.Ratio.Plaintiff+v.Ratio.Defendant)
	assert.Contains(t, v.VerdictText, "지급하라", "guilty prose is kept, not rewritten")
}

func TestEnforceConsistency_ConsistentVerdictsUntouched(t *testing.T) {
	tests := []struct {
		name      string
		plaintiff int
		text      string
	}{
		{"guilty agrees", 70, "피고의 책임을 인정하고 배상을 명한다."},
		{"dismissal agrees", 30, "원고의 청구를 기각한다."},
		{"acquittal agrees", 0, "피고는 무죄."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := verdictWith(tt.plaintiff, tt.text)
			before := *v
			EnforceConsistency(v)
			assert.Equal(t, before.Ratio, v.Ratio)
			assert.Equal(t, before.VerdictText, v.VerdictText)
		})
	}
}

func TestEnforceConsistency_AppendsMissingDisposition(t *testing.T) {
	guilty := verdictWith(70, "쌍방의 다툼이 있었던 사실이 인정된다.")
	EnforceConsistency(guilty)
	assert.Contains(t, guilty.VerdictText, "배상", "a guilty ratio gets a guilty disposition sentence")

	innocent := verdictWith(30, "쌍방의 다툼이 있었던 사실이 인정된다.")
	EnforceConsistency(innocent)
	assert.Contains(t, innocent.VerdictText, "기각", "an innocent ratio gets a dismissal sentence")
}

func TestEnforceConsistency_IsIdempotent(t *testing.T) {
	verdicts := []*domain.Verdict{
		verdictWith(80, "피고는 무죄. 원고의 주장은 이유 없다."),
		verdictWith(30, "피고는 원고에게 위자료를 지급하라."),
		verdictWith(70, "쌍방의 다툼이 있었던 사실이 인정된다."),
		verdictWith(30, "원고의 청구를 기각한다."),
	}
	for _, v := range verdicts {
		EnforceConsistency(v)
		once := *v
		EnforceConsistency(v)
		require.Equal(t, once.Ratio, v.Ratio, "text: %s", once.VerdictText)
		require.Equal(t, once.VerdictText, v.VerdictText)
	}
}

func TestEnsureConclusion_AppendsSummaryToTruncatedText(t *testing.T) {
	v := verdictWith(60, "피고는 원고에게 배상하라.")

	EnsureConclusion(v)

	assert.Contains(t, v.VerdictText, "60%", "the synthesized summary carries the ratio")
	assert.Contains(t, v.VerdictText, "쌍방의 사정을 종합하여")
}

func TestEnsureConclusion_LeavesSubstantiveTailAlone(t *testing.T) {
	text := "피고는 원고에게 배상하라. 피고의 행위는 신의칙에 어긋난다."
	v := verdictWith(60, text)

	EnsureConclusion(v)

	assert.Equal(t, text, v.VerdictText)
}

func TestEnsureConclusion_IsIdempotent(t *testing.T) {
	verdicts := []*domain.Verdict{
		verdictWith(60, "피고는 원고에게 배상하라."),
		verdictWith(60, "마침표 없는 판결문"),
	}
	for _, v := range verdicts {
		EnsureConclusion(v)
		once := v.VerdictText
		EnsureConclusion(v)
		assert.Equal(t, once, v.VerdictText, "a second pass must append nothing")
	}
}
