package domain

import "time"

// FaultRatio apportions the outcome of a dispute between the two parties.
// Plaintiff holds the share of the accusation that was upheld (the degree to
// which the defendant is found at fault); Defendant holds the exonerated
// remainder. The two always sum to exactly 100. A full acquittal is therefore
// Plaintiff=0, Defendant=100, and any Plaintiff value above 50 implies a
// guilty disposition.
type FaultRatio struct {
	// Plaintiff is the upheld share of the claim, 0-100.
	Plaintiff int `json:"plaintiff" validate:"min=0,max=100"`

	// Defendant is the rejected share of the claim, 0-100.
	Defendant int `json:"defendant" validate:"min=0,max=100"`

	// Rationale explains how the split was reached.
	// It is never empty after sanitization.
	Rationale string `json:"rationale"`
}

// GuiltImplied reports whether the numeric split amounts to a guilty
// disposition.
func (r FaultRatio) GuiltImplied() bool { return r.Plaintiff > 50 }

// Severity buckets a verdict by how lopsided its ratio is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// SeverityOf derives the severity bucket from the larger of the two
// percentages.
func SeverityOf(r FaultRatio) Severity {
	max := r.Plaintiff
	if r.Defendant > max {
		max = r.Defendant
	}
	switch {
	case max >= 80:
		return SeveritySevere
	case max >= 65:
		return SeverityModerate
	default:
		return SeverityMinor
	}
}

// Verdict is the final product of the pipeline. It is constructed per
// request and handed to the caller; the pipeline does not store it.
type Verdict struct {
	// ID uniquely identifies this verdict (a UUID).
	ID string `json:"id"`

	// Title is the verdict's headline, usually echoing the case.
	Title string `json:"title"`

	// Ratio is the fault split between the parties.
	Ratio FaultRatio `json:"ratio"`

	// VerdictText is the full natural-language disposition.
	VerdictText string `json:"verdict"`

	// Timestamp records when the verdict was produced.
	Timestamp time.Time `json:"timestamp"`
}

// Precedent is a single prior case returned by the external search
// collaborator.
type Precedent struct {
	// CaseName is the descriptive name of the case.
	CaseName string `json:"case_name"`

	// CaseNumber is the citation token, e.g. "2015도1234".
	CaseNumber string `json:"case_number"`

	// Court is the deciding court, when known.
	Court string `json:"court,omitempty"`

	// Summary is a bounded excerpt of the holding.
	Summary string `json:"summary"`
}

// GenerationOutcome names the terminal state of the synthesizer's attempt
// state machine: either the model produced the verdict, or the deterministic
// fallback did. Exhausting the retry budget never surfaces as an error.
type GenerationOutcome string

const (
	// OutcomeModel means the verdict-authoring model produced the verdict.
	OutcomeModel GenerationOutcome = "model"

	// OutcomeFallback means the deterministic mock generator produced it.
	OutcomeFallback GenerationOutcome = "fallback"
)

// GenerationResult bundles a verdict with how it was produced.
type GenerationResult struct {
	Verdict *Verdict `json:"verdict"`

	// Outcome records whether the model or the fallback authored the verdict.
	Outcome GenerationOutcome `json:"-"`

	// Mock is true when the deterministic fallback authored the verdict.
	Mock bool `json:"mock"`

	// PrecedentUsed is true when a precedent block grounded the prompt.
	PrecedentUsed bool `json:"precedent_used"`

	// Attempts counts how many model calls were made before settling.
	Attempts int `json:"-"`
}
