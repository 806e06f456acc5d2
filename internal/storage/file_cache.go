// Package storage provides the summary caches: a JSON file cache for
// single-host runs and a Postgres-backed cache for shared deployments.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Key derives a stable cache key from an item's identity and its content,
// so edited articles re-summarize while unchanged ones hit the cache.
func Key(itemID, content string) string {
	sum := sha256.Sum256([]byte(itemID + "\x00" + content))
	return hex.EncodeToString(sum[:])[:16]
}

type cacheEntry struct {
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// FileCache is a TTL-bounded summary cache persisted as one JSON file.
type FileCache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewFileCache loads the cache at path, creating parent directories as
// needed. A corrupt cache file is discarded, not an error.
func NewFileCache(path string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &FileCache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
	data, err := os.ReadFile(path)
	if err == nil {
		_ = json.Unmarshal(data, &c.entries)
	}
	c.evictExpired()
	return c, nil
}

func (c *FileCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && time.Since(entry.CreatedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.Summary, true
}

func (c *FileCache) Put(key, summary string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{Summary: summary, CreatedAt: time.Now().UTC()}
	return c.flush()
}

// Close persists the cache one last time.
func (c *FileCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpired()
	return c.flush()
}

func (c *FileCache) evictExpired() {
	if c.ttl <= 0 {
		return
	}
	for key, entry := range c.entries {
		if time.Since(entry.CreatedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *FileCache) flush() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".cache-*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(name, c.path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
