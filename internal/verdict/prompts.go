// Package verdict implements the verdict-generation pipeline: keyword
// extraction, prompt construction, the model call with its retry budget,
// output repair, and the deterministic fallback generator.
package verdict

import (
	"fmt"
	"strings"

	"github.com/keyublog/gaepan-core/internal/domain"
)

// verdictSystemPrompt is the fixed instruction set for the verdict-authoring
// model: disposition rules, citation safety, consistency rules, and tone.
const verdictSystemPrompt = `당신은 일상 분쟁을 판결하는 가상 법정의 재판장이다. 제출된 사연을 읽고 판결문을 작성하라.

판결 규칙:
1. 원고의 주장이 인정되는 정도를 0~100의 정수 비율로 정한다. plaintiff는 인정된 비율, defendant는 배척된 비율이며 두 값의 합은 반드시 100이다.
2. plaintiff가 50을 넘으면 유죄 취지, 50 이하이면 기각 또는 무죄 취지의 판결문을 작성한다. 숫자와 문장의 결론이 서로 모순되어서는 안 된다.
3. 재판 유형이 DEFENSE(결백 주장)인 경우 제출자가 피고 입장임을 감안하여 판단한다.

판례 인용 규칙:
4. 아래에 참고 판례가 제공된 경우에만 판례를 인용하고, 제공된 판례 중 최소 한 건을 언급한다.
5. 제공되지 않은 사건번호를 지어내서는 절대 안 된다. 참고 판례가 없으면 사건번호를 일절 쓰지 않는다.

문체 규칙:
6. 판결문은 법정 어투의 간결한 한국어 평서문으로 쓴다. 첫 문장에서 결론을 선언하고, 이어서 이유를 설명한다.
7. 출력은 아래 JSON 형식만 허용한다. JSON 외의 설명을 덧붙이지 마라.

{"title": "판결 제목", "ratio": {"plaintiff": 0, "defendant": 100, "rationale": "비율의 근거"}, "verdict": "판결문 전문"}`

// keywordSystemPrompt asks the extraction model for exactly one line: a skip
// token for frivolous input, or comma-separated case-name search phrases.
const keywordSystemPrompt = `당신은 법률 검색 보조원이다. 제출된 사연을 읽고 정확히 한 줄만 출력하라.

- 사연이 장난, 테스트, 또는 법적 쟁점이 전혀 없는 내용이면 "skip" 한 단어만 출력한다.
- 그 외에는 관련 판례를 찾기 위한 정확한 사건명 검색어 3~5개를 쉼표로 구분하여 출력한다.
- 사건번호(예: 2015도1234)는 출력하지 않는다. 설명을 덧붙이지 않는다.`

// buildVerdictPrompt interpolates the submission and, when available, the
// retrieved precedent block into the user message.
func buildVerdictPrompt(sub *domain.DisputeSubmission, precedentBlock string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[사건 제목]\n%s\n\n", sub.Title)
	fmt.Fprintf(&b, "[분류] %s\n", sub.Category)
	fmt.Fprintf(&b, "[재판 유형] %s\n\n", sub.TrialType)
	fmt.Fprintf(&b, "[사연]\n%s\n", sub.Details)

	if precedentBlock != "" {
		b.WriteString("\n[참고 판례]\n")
		b.WriteString(precedentBlock)
		b.WriteString("\n\n위 참고 판례 중 이 사건과 관련 있는 판례를 최소 한 건 인용하라. 위에 없는 사건번호는 절대 쓰지 마라.\n")
	}

	return b.String()
}

// buildKeywordPrompt renders the extraction user message.
func buildKeywordPrompt(sub *domain.DisputeSubmission) string {
	return fmt.Sprintf("[분류] %s\n[제목] %s\n[사연]\n%s", sub.Category, sub.Title, sub.Details)
}
