package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keyublog/gaepan-core/internal/ports"
)

// PostgresStore implements the precedent cache and keyword store on
// Postgres, for deployments that already run one and do not want Redis.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

var (
	_ ports.CacheStore   = (*PostgresStore)(nil)
	_ ports.KeywordStore = (*PostgresStore)(nil)
)

// NewPostgresStore connects to Postgres, verifies connectivity, and ensures
// the backing tables exist. Cache entries older than ttl are treated as
// absent; zero disables expiry.
func NewPostgresStore(ctx context.Context, connString string, ttl time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool, ttl: ttl}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS precedent_cache (
			cache_key  TEXT PRIMARY KEY,
			block      TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS preferred_keywords (
			word       TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

// Get returns the cached value for key, honoring the configured TTL.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		block     string
		createdAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT block, created_at FROM precedent_cache WHERE cache_key = $1`,
		key,
	).Scan(&block, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get: %w", err)
	}
	if s.ttl > 0 && time.Since(createdAt) > s.ttl {
		return "", false, nil
	}
	return block, true, nil
}

// Set stores value under key, replacing any stale entry.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO precedent_cache (cache_key, block, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (cache_key) DO UPDATE SET block = EXCLUDED.block, created_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("postgres set: %w", err)
	}
	return nil
}

// List returns all learned keywords in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT word FROM preferred_keywords ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres list keywords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("postgres scan keyword: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Append adds word to the keyword table. Duplicates are a no-op.
func (s *PostgresStore) Append(ctx context.Context, word string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO preferred_keywords (word) VALUES ($1) ON CONFLICT DO NOTHING`,
		word,
	)
	if err != nil {
		return fmt.Errorf("postgres append keyword: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }
