// Package ports defines the interfaces between the pipeline and its
// infrastructure collaborators. These interfaces enable dependency inversion
// and make every pipeline stage testable in isolation.
package ports

import (
	"context"

	"github.com/keyublog/gaepan-core/internal/domain"
)

// LLMClient is the contract for both the verdict-authoring model and the
// keyword-extraction model. Implementations handle provider specifics,
// retries, and timeouts behind this surface.
type LLMClient interface {
	// Complete sends a prompt and returns the generated text.
	// Common options: "system" (string), "temperature" (float64),
	// "max_tokens" (int), "json" (bool, request structured output).
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// GetModel returns the model identifier, for logging.
	GetModel() string
}

// CacheStore is the external key-value row store behind the precedent cache.
// Writes are idempotent: the same key always maps to the same or an
// equivalent value, and entries never expire.
type CacheStore interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under the key. Write-once semantics are assumed by
	// callers but not enforced; overwrites with equivalent values are fine.
	Set(ctx context.Context, key, value string) error
}

// KeywordStore is the append-only list of single-word search terms that
// previously produced a precedent match. It tolerates duplicate and racy
// appends.
type KeywordStore interface {
	// List returns all learned keywords.
	List(ctx context.Context) ([]string, error)

	// Append records one learned keyword.
	Append(ctx context.Context, word string) error
}

// PrecedentSearcher is the external case-law search collaborator.
type PrecedentSearcher interface {
	// Search looks up prior cases matching the query, returning at most
	// limit results. A nil slice with a nil error means nothing was found,
	// which is not an error.
	Search(ctx context.Context, query string, limit int) ([]domain.Precedent, error)
}
