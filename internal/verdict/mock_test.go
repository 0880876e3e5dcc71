package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/sanitize"
)

func TestMockGenerator_IsDeterministic(t *testing.T) {
	g := NewMockGenerator()
	sub := moneySubmission()

	a := g.Generate(sub)
	b := g.Generate(sub)

	assert.Equal(t, a.Ratio, b.Ratio, "identical submissions must yield identical ratios")
	assert.Equal(t, a.VerdictText, b.VerdictText, "identical submissions must yield identical text")
}

func TestMockGenerator_RatioInvariants(t *testing.T) {
	g := NewMockGenerator()
	subs := []*domain.DisputeSubmission{
		moneySubmission(),
		{
			Title:     "친구가 때렸어요",
			Details:   "술자리에서 친구가 저를 때렸고 욕설과 협박까지 했습니다. 사과도 받지 못했습니다.",
			Category:  domain.CategoryFriend,
			TrialType: domain.TrialAccusation,
		},
		{
			Title:     "제가 먼저 잘못한 건 맞지만",
			Details:   "제가 먼저 잘못한 부분이 있어 사과했고 합의까지 했는데 상대가 계속 문제 삼습니다.",
			Category:  domain.CategoryRomance,
			TrialType: domain.TrialAccusation,
		},
	}

	for _, sub := range subs {
		v := g.Generate(sub)
		assert.Equal(t, 100, v.Ratio.Plaintiff+v.Ratio.Defendant, "shares must sum to 100")
		assert.GreaterOrEqual(t, v.Ratio.Plaintiff, 0)
		assert.LessOrEqual(t, v.Ratio.Plaintiff, 100)
		assert.Zero(t, v.Ratio.Plaintiff%5, "shares land on multiples of five")
		assert.NotEmpty(t, v.Ratio.Rationale, "rationale is always filled")
		assert.NotEmpty(t, v.VerdictText)
	}
}

func TestMockGenerator_AcquittalClaimWithoutFaultKeywords(t *testing.T) {
	g := NewMockGenerator()
	sub := &domain.DisputeSubmission{
		Title:     "저는 억울합니다",
		Details:   "상대방의 주장과 달리 저는 약속을 전부 지켰고 잘못한 것이 없습니다. 결백을 밝혀주세요.",
		Category:  domain.CategoryEtc,
		TrialType: domain.TrialDefense,
	}

	v := g.Generate(sub)

	assert.Equal(t, 0, v.Ratio.Plaintiff, "nothing incriminating means a full acquittal")
	assert.Equal(t, 100, v.Ratio.Defendant)
	assert.Contains(t, v.VerdictText, "무죄", "acquittal template must say so")
}

func TestMockGenerator_AccusationNeverFullyAcquits(t *testing.T) {
	g := NewMockGenerator()
	v := g.Generate(moneySubmission())

	assert.GreaterOrEqual(t, v.Ratio.Plaintiff, 10,
		"accusation verdicts stay inside the 10-90 band")
	assert.LessOrEqual(t, v.Ratio.Plaintiff, 90)
}

func TestMockGenerator_OutputSurvivesConsistencyPass(t *testing.T) {
	// The fallback templates must already agree with their ratios, so the
	// closing repair pass leaves them untouched.
	g := NewMockGenerator()
	subs := []*domain.DisputeSubmission{
		moneySubmission(),
		{
			Title:     "친구가 때렸어요",
			Details:   "술자리에서 친구가 저를 때렸고 욕설과 협박, 사기에 거짓말까지 했습니다.",
			Category:  domain.CategoryFriend,
			TrialType: domain.TrialAccusation,
		},
		{
			Title:     "저는 결백합니다",
			Details:   "상대방의 주장과 달리 저는 약속을 전부 지켰고 잘못한 것이 없습니다.",
			Category:  domain.CategoryEtc,
			TrialType: domain.TrialDefense,
		},
	}

	for _, sub := range subs {
		v := g.Generate(sub)
		before := *v
		sanitize.EnforceConsistency(v)
		require.Equal(t, before.Ratio, v.Ratio, "consistency pass must not move the ratio")
		require.Equal(t, before.VerdictText, v.VerdictText, "consistency pass must not rewrite the text")
	}
}
