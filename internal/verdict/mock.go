package verdict

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/keyublog/gaepan-core/internal/domain"
)

// Keyword lists biasing the deterministic fault split. defendantFaultWords
// mark behavior that supports the accusation; claimantWeakWords mark
// circumstances that undercut it.
var (
	defendantFaultWords = []string{
		"때렸", "폭행", "욕설", "협박", "사기", "갚지 않", "잠수", "바람",
		"거짓말", "훔쳐", "모욕", "유포", "무시하", "배신",
	}
	claimantWeakWords = []string{
		"먼저 잘못", "제가 먼저", "오해", "실수로", "장난으로", "합의",
		"사과했", "화해",
	}
)

// MockGenerator is the deterministic fallback used when the verdict model
// is unavailable or out of retries. It has no external dependency and the
// same submission always yields the same verdict.
type MockGenerator struct{}

// NewMockGenerator returns the deterministic fallback generator.
func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

// Generate derives a verdict from the submission text alone: a keyword-
// biased base ratio, perturbed by a 32-bit FNV-1a hash of the text, clamped
// and rounded, then rendered through fixed templates.
func (g *MockGenerator) Generate(sub *domain.DisputeSubmission) *domain.Verdict {
	text := sub.Title + sub.Details
	hash := submissionHash(sub)

	fault := 50
	faultMatches := 0
	for _, w := range defendantFaultWords {
		if strings.Contains(text, w) {
			fault += 8
			faultMatches++
		}
	}
	for _, w := range claimantWeakWords {
		if strings.Contains(text, w) {
			fault -= 8
		}
	}

	// An acquittal claim with nothing incriminating in it is a full
	// acquittal, independent of the hash perturbation.
	if sub.TrialType == domain.TrialDefense && faultMatches == 0 {
		return acquittalVerdict(sub)
	}

	fault += int(hash%25) - 12

	lo := 10
	if sub.TrialType == domain.TrialDefense {
		// An acquittal claim may resolve to a full acquittal.
		lo = 0
	}
	fault = roundToFive(clampInt(fault, lo, 90))

	if sub.TrialType == domain.TrialDefense && fault <= 10 {
		return acquittalVerdict(sub)
	}

	ratio := domain.FaultRatio{Plaintiff: fault, Defendant: 100 - fault}
	ratio.Rationale = fmt.Sprintf(
		"제출된 사연의 정황을 기준으로 피고 측 책임을 %d%%, 참작할 사정을 %d%%로 평가하였다.",
		ratio.Plaintiff, ratio.Defendant)

	return &domain.Verdict{
		ID:          uuid.NewString(),
		Title:       verdictTitle(sub),
		Ratio:       ratio,
		VerdictText: templateText(ratio),
	}
}

func acquittalVerdict(sub *domain.DisputeSubmission) *domain.Verdict {
	return &domain.Verdict{
		ID:    uuid.NewString(),
		Title: verdictTitle(sub),
		Ratio: domain.FaultRatio{
			Plaintiff: 0,
			Defendant: 100,
			Rationale: "제출된 사연에서 피고의 책임을 인정할 만한 사정이 확인되지 않는다.",
		},
		VerdictText: "피고는 무죄. 원고의 청구를 받아들이지 아니한다. 제출된 사정만으로는 어떠한 혐의도 인정하기 어렵다.",
	}
}

func verdictTitle(sub *domain.DisputeSubmission) string {
	return fmt.Sprintf("'%s' 사건에 대한 판결", sub.Title)
}

// templateText renders a disposition sentence matched to the ratio and a
// severity-colored explanation. Guilty and dismissal templates carry the
// disposition phrasing the consistency pass looks for, so the result is
// already internally consistent.
func templateText(ratio domain.FaultRatio) string {
	severity := domain.SeverityOf(ratio)
	if ratio.GuiltImplied() {
		tone := map[domain.Severity]string{
			domain.SeverityMinor:    "가볍다고 보기 어렵다",
			domain.SeverityModerate: "상당하다",
			domain.SeveritySevere:   "중대하다",
		}[severity]
		return fmt.Sprintf(
			"피고의 책임을 %d%%로 인정한다. 사연에 나타난 피고의 행위는 그 비난 가능성이 %s. 피고는 원고에게 책임 비율에 상응하는 배상을 하라.",
			ratio.Plaintiff, tone)
	}
	return fmt.Sprintf(
		"원고의 청구를 기각한다. 사연에 나타난 사정만으로는 피고의 책임이 절반을 넘는다고 보기 어렵고, 인정되는 책임은 %d%%에 그친다.",
		ratio.Plaintiff)
}

// submissionHash seeds the ratio perturbation with a 32-bit FNV-1a hash of
// the submission text, so identical submissions always land on the same
// verdict.
func submissionHash(sub *domain.DisputeSubmission) uint32 {
	h := fnv.New32a()
	h.Write([]byte(sub.Title))
	h.Write([]byte(sub.Category))
	h.Write([]byte(sub.Details))
	return h.Sum32()
}
