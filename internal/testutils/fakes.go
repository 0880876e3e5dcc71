package testutils

import (
	"context"
	"sync"

	"github.com/keyublog/gaepan-core/internal/domain"
	"github.com/keyublog/gaepan-core/internal/ports"
)

// MemoryCache is an in-memory ports.CacheStore.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]string

	GetCalls int
	SetCalls int

	// GetErr and SetErr, when set, fail the corresponding operation.
	GetErr error
	SetErr error
}

var _ ports.CacheStore = (*MemoryCache)(nil)

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	if c.GetErr != nil {
		return "", false, c.GetErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *MemoryCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	if c.SetErr != nil {
		return c.SetErr
	}
	c.entries[key] = value
	return nil
}

// Contents returns a copy of the stored entries.
func (c *MemoryCache) Contents() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// MemoryKeywords is an in-memory ports.KeywordStore.
type MemoryKeywords struct {
	mu    sync.Mutex
	words []string
	seen  map[string]bool
}

var _ ports.KeywordStore = (*MemoryKeywords)(nil)

// NewMemoryKeywords returns a keyword store seeded with the given words.
func NewMemoryKeywords(words ...string) *MemoryKeywords {
	k := &MemoryKeywords{seen: make(map[string]bool)}
	for _, w := range words {
		k.words = append(k.words, w)
		k.seen[w] = true
	}
	return k
}

func (k *MemoryKeywords) List(ctx context.Context) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, len(k.words))
	copy(out, k.words)
	return out, nil
}

func (k *MemoryKeywords) Append(ctx context.Context, word string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.seen[word] {
		return nil
	}
	k.words = append(k.words, word)
	k.seen[word] = true
	return nil
}

// FakeSearcher is a scripted ports.PrecedentSearcher.
type FakeSearcher struct {
	mu sync.Mutex

	// Results maps query strings to canned precedents.
	Results map[string][]domain.Precedent

	// Err, when set, fails every search.
	Err error

	Queries []string
}

var _ ports.PrecedentSearcher = (*FakeSearcher)(nil)

// NewFakeSearcher returns a searcher with no results configured.
func NewFakeSearcher() *FakeSearcher {
	return &FakeSearcher{Results: make(map[string][]domain.Precedent)}
}

func (s *FakeSearcher) Search(ctx context.Context, query string, limit int) ([]domain.Precedent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	results := s.Results[query]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
