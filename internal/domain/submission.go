// Package domain contains pure, dependency-light domain models for the
// verdict-generation pipeline.
package domain

// TrialType declares how the submitter frames their dispute: seeking a
// conviction of the other party or seeking their own exoneration.
type TrialType string

const (
	// TrialAccusation means the submitter wants the other party found at fault.
	TrialAccusation TrialType = "ACCUSATION"

	// TrialDefense means the submitter wants to be cleared of an accusation.
	TrialDefense TrialType = "DEFENSE"
)

// Category labels the dispute with one of the site's fixed subject areas.
type Category string

// Dispute categories as shown on the submission form.
const (
	CategoryRomance   Category = "연애"
	CategoryFriend    Category = "친구"
	CategoryFamily    Category = "가족"
	CategoryWorkplace Category = "직장"
	CategoryMoney     Category = "돈"
	CategoryOnline    Category = "온라인"
	CategoryEtc       Category = "기타"
)

// DisputeSubmission is a user's dispute as handed to the pipeline.
// It is immutable once accepted; the pipeline never modifies it.
type DisputeSubmission struct {
	// Title is the short headline of the dispute.
	Title string `json:"title" validate:"required,max=40"`

	// Details is the free-text account of what happened.
	Details string `json:"details" validate:"required,min=30,max=5000"`

	// Category is one of the fixed subject-area labels.
	Category Category `json:"category" validate:"required,oneof=연애 친구 가족 직장 돈 온라인 기타"`

	// TrialType is the caller-declared framing of the submission.
	TrialType TrialType `json:"trial_type" validate:"required,oneof=ACCUSATION DEFENSE"`
}

// KeywordExtraction is the result of the seriousness/keyword classification
// call. It is produced once per submission and consumed immediately.
type KeywordExtraction struct {
	// Skip is true when the submission is too frivolous to warrant a
	// precedent lookup; the pipeline then bypasses search entirely.
	Skip bool

	// Queries holds up to five candidate case-name search phrases,
	// in the order the model produced them.
	Queries []string
}

// PrimaryQuery returns the first candidate query, or "" when none exist.
func (k KeywordExtraction) PrimaryQuery() string {
	if len(k.Queries) == 0 {
		return ""
	}
	return k.Queries[0]
}
