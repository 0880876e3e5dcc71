package precedent

import (
	"context"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/ports"
)

const (
	// maxBlockItems caps how many cases the reference block may contain.
	maxBlockItems = 8

	// perQueryLimit bounds each individual search call.
	perQueryLimit = 3

	// fallbackQueryWords caps the synthesized query when no keywords were
	// extracted.
	fallbackQueryWords = 5

	// dedupDistance treats two queries within this edit distance as the
	// same search.
	dedupDistance = 2
)

// Resolver turns extracted keywords into a bounded precedent reference
// block by querying the case-law search service. Single-word queries that
// produce results are reported back through learn, reinforcing terms that
// work.
type Resolver struct {
	searcher ports.PrecedentSearcher
	learn    func(ctx context.Context, word string) error
	logger   *zap.Logger
}

// NewResolver builds a resolver. learn may be nil when keyword
// reinforcement is not wanted.
func NewResolver(searcher ports.PrecedentSearcher, learn func(ctx context.Context, word string) error, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{searcher: searcher, learn: learn, logger: logger}
}

// Resolve searches for precedents matching the extracted queries and
// assembles them into one reference block. When queries is empty a single
// query is synthesized from the submission itself. Preferred keywords bias
// the search order. An empty return with nil error means no precedent was
// found, which the caller treats as "proceed without grounding context".
func (r *Resolver) Resolve(ctx context.Context, sub *domain.DisputeSubmission, queries, preferred []string) (string, error) {
	if len(queries) == 0 {
		queries = []string{synthesizeQuery(sub)}
	}
	queries = orderByPreference(dedupQueries(queries), preferred)

	var (
		items []string
		seen  = make(map[string]bool)
	)
	for _, query := range queries {
		if len(items) >= maxBlockItems {
			break
		}

		results, err := r.searcher.Search(ctx, query, perQueryLimit)
		if err != nil {
			// A failed lookup only costs grounding context.
			r.logger.Warn("precedent search failed",
				zap.String("query", query), zap.Error(err))
			continue
		}
		if len(results) == 0 {
			continue
		}

		if r.learn != nil && isSingleWord(query) {
			if err := r.learn(ctx, query); err != nil {
				r.logger.Warn("keyword learn failed",
					zap.String("word", query), zap.Error(err))
			}
		}

		for _, p := range results {
			if len(items) >= maxBlockItems {
				break
			}
			id := p.CaseNumber
			if id == "" {
				id = p.CaseName
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			items = append(items, formatPrecedent(p))
		}
	}

	if len(items) == 0 {
		return "", nil
	}
	return strings.Join(items, "\n\n"), nil
}

// formatPrecedent renders one case as a block entry.
func formatPrecedent(p domain.Precedent) string {
	header := p.CaseName
	switch {
	case p.CaseNumber != "" && p.Court != "":
		header = fmt.Sprintf("%s (%s %s)", p.CaseName, p.Court, p.CaseNumber)
	case p.CaseNumber != "":
		header = fmt.Sprintf("%s (%s)", p.CaseName, p.CaseNumber)
	}
	if p.Summary == "" {
		return "【" + header + "】"
	}
	return "【" + header + "】\n" + p.Summary
}

// synthesizeQuery builds a single search query from the submission when
// keyword extraction produced nothing.
func synthesizeQuery(sub *domain.DisputeSubmission) string {
	words := strings.Fields(sub.Title)
	if len(words) > fallbackQueryWords {
		words = words[:fallbackQueryWords]
	}
	if len(words) == 0 {
		words = strings.Fields(sub.Details)
		if len(words) > fallbackQueryWords {
			words = words[:fallbackQueryWords]
		}
	}
	return strings.Join(words, " ")
}

// dedupQueries drops near-duplicate queries, keeping first occurrences.
func dedupQueries(queries []string) []string {
	var kept []string
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		folded := keyFolder.String(q)
		duplicate := false
		for _, k := range kept {
			if levenshtein.ComputeDistance(folded, keyFolder.String(k)) <= dedupDistance {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, q)
		}
	}
	return kept
}

// orderByPreference moves queries containing a learned keyword to the
// front, preserving relative order otherwise.
func orderByPreference(queries, preferred []string) []string {
	if len(preferred) == 0 {
		return queries
	}
	var favored, rest []string
	for _, q := range queries {
		folded := keyFolder.String(q)
		matched := false
		for _, p := range preferred {
			if strings.Contains(folded, keyFolder.String(p)) {
				matched = true
				break
			}
		}
		if matched {
			favored = append(favored, q)
		} else {
			rest = append(rest, q)
		}
	}
	return append(favored, rest...)
}

func isSingleWord(query string) bool {
	return len(strings.Fields(query)) == 1
}
