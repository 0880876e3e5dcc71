package verdict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/precedent"
	"github.com/keyublog/gaepan-core/internal/sanitize"
)

const (
	// maxAttempts is the total model-call budget per verdict.
	maxAttempts = 3

	// attemptDelay is the fixed pause between attempts, to avoid hammering
	// an overloaded model.
	attemptDelay = 1500 * time.Millisecond
)

// attemptState is a terminal state of the retry loop. Exhaustion transitions
// to stateFallback, never to an error.
type attemptState int

const (
	stateAttempting attemptState = iota
	stateSuccess
	stateFallback
)

// Pipeline sequences the full verdict generation: input defense, keyword
// extraction, precedent resolution through the cache, the model retry loop,
// the deterministic fallback, and the final sanitization pass.
type Pipeline struct {
	extractor   *Extractor
	cache       *precedent.Cache
	resolver    *precedent.Resolver
	synthesizer *Synthesizer
	mock        *MockGenerator
	validate    *validator.Validate
	logger      *zap.Logger

	attemptDelay time.Duration
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	extractor *Extractor,
	cache *precedent.Cache,
	resolver *precedent.Resolver,
	synthesizer *Synthesizer,
	validate *validator.Validate,
	logger *zap.Logger,
) *Pipeline {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor:    extractor,
		cache:        cache,
		resolver:     resolver,
		synthesizer:  synthesizer,
		mock:         NewMockGenerator(),
		validate:     validate,
		logger:       logger,
		attemptDelay: attemptDelay,
	}
}

// Generate runs the pipeline for one submission. The only hard failures are
// input rejections: a malformed submission or one carrying injection
// markers. Everything downstream degrades: extraction failure skips the
// precedent lookup, an empty search proceeds without grounding, and model
// exhaustion falls back to the deterministic generator.
func (p *Pipeline) Generate(ctx context.Context, sub *domain.DisputeSubmission) (*domain.GenerationResult, error) {
	if err := p.reject(sub); err != nil {
		return nil, err
	}

	block, precedentUsed := p.resolvePrecedent(ctx, sub)

	verdict, outcome, attempts := p.generateWithRetry(ctx, sub, block)
	verdictAttempts.Observe(float64(attempts))
	verdictsTotal.WithLabelValues(string(outcome)).Inc()

	p.finalize(verdict, block)

	return &domain.GenerationResult{
		Verdict:       verdict,
		Outcome:       outcome,
		Mock:          outcome == domain.OutcomeFallback,
		PrecedentUsed: precedentUsed,
		Attempts:      attempts,
	}, nil
}

// reject validates the submission and screens it for injection markers
// before any external call is made.
func (p *Pipeline) reject(sub *domain.DisputeSubmission) error {
	if err := p.validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &domain.SubmissionError{
				Field:  fieldErrs[0].Field(),
				Reason: "failed " + fieldErrs[0].Tag() + " constraint",
			}
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err)
	}
	if sanitize.DetectInjection(sub.Title) || sanitize.DetectInjection(sub.Details) {
		injectionRejections.Inc()
		return domain.ErrInjectionDetected
	}
	return nil
}

// resolvePrecedent runs extraction and the cache-or-search lookup. It
// returns the reference block ("" when none) and whether one was found.
func (p *Pipeline) resolvePrecedent(ctx context.Context, sub *domain.DisputeSubmission) (string, bool) {
	extraction := p.extractor.Extract(ctx, sub)
	if extraction.Skip {
		keywordExtractionSkips.Inc()
		return "", false
	}

	key := precedent.BuildKey(extraction.Queries, string(sub.Category), sub.Title, sub.Details)

	preferred, err := p.cache.PreferredKeywords(ctx)
	if err != nil {
		p.logger.Warn("preferred keyword list unavailable", zap.Error(err))
	}

	block, hit, err := p.cache.Resolve(ctx, key, func(ctx context.Context) (string, error) {
		return p.resolver.Resolve(ctx, sub, extraction.Queries, preferred)
	})
	if err != nil {
		// A broken cache or search only costs grounding context.
		p.logger.Warn("precedent resolution failed", zap.Error(err))
		return "", false
	}
	if hit {
		precedentCacheLookups.WithLabelValues("hit").Inc()
	} else {
		precedentCacheLookups.WithLabelValues("miss").Inc()
	}

	return block, block != ""
}

// generateWithRetry drives the attempt state machine: up to maxAttempts
// model calls with a fixed delay between them, then the deterministic
// fallback. It never returns an error.
func (p *Pipeline) generateWithRetry(ctx context.Context, sub *domain.DisputeSubmission, block string) (*domain.Verdict, domain.GenerationOutcome, int) {
	state := stateAttempting
	attempts := 0

	var verdict *domain.Verdict
	for state == stateAttempting {
		attempts++
		v, err := p.synthesizer.Generate(ctx, sub, block)
		if err == nil {
			verdict = v
			state = stateSuccess
			break
		}

		p.logger.Warn("verdict model attempt failed",
			zap.Int("attempt", attempts), zap.Error(err))

		if attempts >= maxAttempts {
			state = stateFallback
			break
		}
		select {
		case <-ctx.Done():
			state = stateFallback
		case <-time.After(p.attemptDelay):
		}
	}

	if state == stateFallback {
		return p.mock.Generate(sub), domain.OutcomeFallback, attempts
	}
	return verdict, domain.OutcomeModel, attempts
}

// finalize is the closing sanitization pass: strip any control markers the
// model echoed, redact citations the precedent set does not vouch for,
// reconcile prose with numbers, and guarantee a non-trivial conclusion and
// rationale.
func (p *Pipeline) finalize(v *domain.Verdict, block string) {
	v.VerdictText = sanitize.StripControlMarkers(v.VerdictText)
	v.Ratio.Rationale = sanitize.StripControlMarkers(v.Ratio.Rationale)

	hasSource := block != ""
	allowed := sanitize.ExtractCitations(block)
	v.VerdictText = sanitize.SanitizeCitations(v.VerdictText, allowed, hasSource)
	v.Ratio.Rationale = sanitize.SanitizeCitations(v.Ratio.Rationale, allowed, hasSource)

	sanitize.EnforceConsistency(v)
	sanitize.EnsureConclusion(v)

	if v.Ratio.Rationale == "" {
		v.Ratio.Rationale = v.VerdictText
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
}
