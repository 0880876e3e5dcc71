package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/ports"
)

// modelVerdict is the structured output contract with the verdict model.
// Ratio fields arrive as floats because models routinely emit "55.0".
type modelVerdict struct {
	Title string `json:"title" validate:"required"`
	Ratio struct {
		Plaintiff float64 `json:"plaintiff"`
		Defendant float64 `json:"defendant"`
		Rationale string  `json:"rationale"`
	} `json:"ratio"`
	Verdict string `json:"verdict" validate:"required"`
}

// Synthesizer builds the verdict prompt, invokes the model, and repairs its
// structured output into a domain verdict. Retry policy lives in the
// pipeline; each Generate call is a single attempt.
type Synthesizer struct {
	client   ports.LLMClient
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSynthesizer builds a synthesizer around the verdict model client.
func NewSynthesizer(client ports.LLMClient, validate *validator.Validate, logger *zap.Logger) *Synthesizer {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{client: client, validate: validate, logger: logger}
}

// Generate makes one model call and parses the result. Any failure —
// transport error, malformed JSON, missing required field — is returned for
// the pipeline's retry loop to handle.
func (s *Synthesizer) Generate(ctx context.Context, sub *domain.DisputeSubmission, precedentBlock string) (*domain.Verdict, error) {
	response, err := s.client.Complete(ctx, buildVerdictPrompt(sub, precedentBlock), map[string]any{
		"system":      verdictSystemPrompt,
		"temperature": 0.7,
		"max_tokens":  1500,
		"json":        true,
	})
	if err != nil {
		return nil, fmt.Errorf("verdict model call: %w", err)
	}

	return s.parseResponse(response)
}

func (s *Synthesizer) parseResponse(response string) (*domain.Verdict, error) {
	var parsed modelVerdict
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("malformed verdict JSON: %w", err)
	}
	if err := s.validate.Struct(&parsed); err != nil {
		return nil, fmt.Errorf("incomplete verdict: %w", err)
	}

	plaintiff, defendant := repairRatio(parsed.Ratio.Plaintiff, parsed.Ratio.Defendant)

	return &domain.Verdict{
		ID:    uuid.NewString(),
		Title: strings.TrimSpace(parsed.Title),
		Ratio: domain.FaultRatio{
			Plaintiff: plaintiff,
			Defendant: defendant,
			Rationale: strings.TrimSpace(parsed.Ratio.Rationale),
		},
		VerdictText: strings.TrimSpace(parsed.Verdict),
	}, nil
}

// repairRatio forces the two shares into integers in [0,100] summing to
// exactly 100. When the model's numbers disagree, the plaintiff share wins:
// it is rounded to the nearest multiple of 5 and the defendant share is
// recomputed as the complement.
func repairRatio(plaintiff, defendant float64) (int, int) {
	p := clampInt(int(math.Round(plaintiff)), 0, 100)
	d := clampInt(int(math.Round(defendant)), 0, 100)
	if p+d != 100 {
		p = clampInt(roundToFive(p), 0, 100)
		d = 100 - p
	}
	return p, d
}

func roundToFive(n int) int {
	return int(math.Round(float64(n)/5) * 5)
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// extractJSON pulls the JSON object out of a response that may wrap it in
// markdown fences or surrounding prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```json"); idx != -1 {
		rest := response[idx+7:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(response, "```"); idx != -1 {
		rest := response[idx+3:]
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			candidate := strings.TrimSpace(rest[:end])
			if strings.HasPrefix(candidate, "{") {
				return candidate
			}
		}
	}

	// Fall back to the outermost brace pair.
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		return response[start : end+1]
	}
	return response
}
