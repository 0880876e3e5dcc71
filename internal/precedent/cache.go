// Package precedent resolves prior-case reference text for a dispute: a
// write-once cache over an external store, and a resolver that queries the
// case-law search service on cache misses.
package precedent

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/keyublog/gaepan-core/internal/ports"
)

// noPrecedentMarker is stored when a search found nothing, so known-empty
// queries do not trigger repeated external lookups.
const noPrecedentMarker = "__NO_PRECEDENT__"

// detailsKeyLength caps how much of the dispute body participates in the
// cache key.
const detailsKeyLength = 300

// Cache mediates all reads and writes of precedent reference blocks. A
// negative result ("searched, found nothing") is stored explicitly and is
// distinguishable from a miss.
type Cache struct {
	store    ports.CacheStore
	keywords ports.KeywordStore
	group    singleflight.Group
}

// NewCache builds a cache over the given stores.
func NewCache(store ports.CacheStore, keywords ports.KeywordStore) *Cache {
	return &Cache{store: store, keywords: keywords}
}

var keyFolder = cases.Fold()

// BuildKey derives the cache key for a submission: the extracted queries,
// the category hint, the title, and the first portion of the details,
// case-folded and whitespace-collapsed.
func BuildKey(queries []string, category, title, details string) string {
	runes := []rune(details)
	if len(runes) > detailsKeyLength {
		runes = runes[:detailsKeyLength]
	}

	parts := []string{
		strings.Join(queries, ","),
		category,
		title,
		string(runes),
	}
	for i, p := range parts {
		parts[i] = keyFolder.String(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}

// Lookup returns the cached block for key. found reports whether any entry
// existed; a found entry with an empty block means a previous search came
// up empty.
func (c *Cache) Lookup(ctx context.Context, key string) (block string, found bool, err error) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	if value == noPrecedentMarker {
		return "", true, nil
	}
	return value, true, nil
}

// StoreBlock writes block under key. An empty block records an explicit
// negative entry.
func (c *Cache) StoreBlock(ctx context.Context, key, block string) error {
	if block == "" {
		block = noPrecedentMarker
	}
	return c.store.Set(ctx, key, block)
}

// Resolve returns the block for key, filling the cache via fill on a miss.
// Concurrent misses for the same key share a single fill call.
func (c *Cache) Resolve(ctx context.Context, key string, fill func(context.Context) (string, error)) (string, bool, error) {
	block, found, err := c.Lookup(ctx, key)
	if err != nil {
		return "", false, err
	}
	if found {
		return block, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		filled, err := fill(ctx)
		if err != nil {
			return "", err
		}
		if err := c.StoreBlock(ctx, key, filled); err != nil {
			return "", err
		}
		return filled, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

// LearnKeyword records a single-word search term that produced results.
func (c *Cache) LearnKeyword(ctx context.Context, word string) error {
	return c.keywords.Append(ctx, word)
}

// PreferredKeywords lists the learned search terms.
func (c *Cache) PreferredKeywords(ctx context.Context) ([]string, error) {
	return c.keywords.List(ctx)
}
