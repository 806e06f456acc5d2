package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresCache is a summary cache backed by Postgres, for deployments
// where several hosts share one cache.
type PostgresCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewPostgresCache connects to databaseURL and ensures the cache table
// exists.
func NewPostgresCache(databaseURL string, ttl time.Duration) (*PostgresCache, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS summary_cache (
			cache_key  TEXT PRIMARY KEY,
			summary    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create summary_cache table: %w", err)
	}
	return &PostgresCache{db: db, ttl: ttl}, nil
}

func (c *PostgresCache) Get(key string) (string, bool) {
	query := `SELECT summary FROM summary_cache WHERE cache_key = $1`
	args := []interface{}{key}
	if c.ttl > 0 {
		query += ` AND created_at > $2`
		args = append(args, time.Now().UTC().Add(-c.ttl))
	}

	var summary string
	err := c.db.QueryRow(query, args...).Scan(&summary)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return summary, true
}

func (c *PostgresCache) Put(key, summary string) error {
	const query = `
		INSERT INTO summary_cache (cache_key, summary, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cache_key)
		DO UPDATE SET summary = EXCLUDED.summary, created_at = now()`
	if _, err := c.db.Exec(query, key, summary); err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// Cleanup deletes entries older than the TTL.
func (c *PostgresCache) Cleanup() error {
	if c.ttl <= 0 {
		return nil
	}
	const query = `DELETE FROM summary_cache WHERE created_at <= $1`
	if _, err := c.db.Exec(query, time.Now().UTC().Add(-c.ttl)); err != nil {
		return fmt.Errorf("cleanup summary cache: %w", err)
	}
	return nil
}

func (c *PostgresCache) Close() error {
	return c.db.Close()
}
