package verdict

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/ports"
	"github.com/keyublog/gaepan-core/internal/sanitize"
)

const (
	// keywordTimeout hard-caps the extraction call.
	keywordTimeout = 10 * time.Second

	// maxQueries caps how many search phrases one extraction may yield.
	maxQueries = 5

	// maxQueryLength caps each phrase.
	maxQueryLength = 100
)

// skipTokens are the accepted spellings of "this submission does not
// warrant a precedent lookup".
var skipTokens = map[string]bool{
	"skip":   true,
	"none":   true,
	"없음":     true,
	"해당없음":   true,
	"해당 없음":  true,
	"생략":     true,
}

// Extractor runs the single bounded keyword-extraction call. Every failure
// mode degrades to an empty extraction; it never blocks the pipeline.
type Extractor struct {
	client  ports.LLMClient
	timeout time.Duration
	logger  *zap.Logger
}

// NewExtractor builds an extractor around the keyword model client.
func NewExtractor(client ports.LLMClient, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, timeout: keywordTimeout, logger: logger}
}

// Extract classifies the submission and returns up to five case-name search
// phrases, or Skip when the model deems the case frivolous. On timeout,
// call failure, or unparseable output it returns an empty extraction and
// logs the cause; the caller proceeds without the precedent optimization.
func (e *Extractor) Extract(ctx context.Context, sub *domain.DisputeSubmission) domain.KeywordExtraction {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	response, err := e.client.Complete(ctx, buildKeywordPrompt(sub), map[string]any{
		"system":      keywordSystemPrompt,
		"temperature": 0.2,
		"max_tokens":  200,
	})
	if err != nil {
		e.logger.Warn("keyword extraction failed", zap.Error(err))
		return domain.KeywordExtraction{}
	}

	return parseKeywordLine(response)
}

// parseKeywordLine interprets the model's first non-empty line.
func parseKeywordLine(response string) domain.KeywordExtraction {
	var line string
	for _, l := range strings.Split(response, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if line == "" {
		return domain.KeywordExtraction{}
	}

	if skipTokens[strings.ToLower(strings.Trim(line, `"'.`))] {
		return domain.KeywordExtraction{Skip: true}
	}

	var queries []string
	for _, part := range strings.Split(line, ",") {
		q := strings.TrimSpace(part)
		if q == "" {
			continue
		}
		// Bare case numbers are citations, not case names.
		if sanitize.BareCitation.MatchString(q) {
			continue
		}
		if runes := []rune(q); len(runes) > maxQueryLength {
			q = string(runes[:maxQueryLength])
		}
		queries = append(queries, q)
		if len(queries) == maxQueries {
			break
		}
	}
	return domain.KeywordExtraction{Queries: queries}
}
