package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := NewFileCache(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	key := Key("item-1", "some content")
	if _, ok := c.Get(key); ok {
		t.Fatal("unexpected hit on empty cache")
	}
	if err := c.Put(key, "a summary"); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get(key); !ok || got != "a summary" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestFileCacheSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := NewFileCache(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("item-1", "content")
	if err := c.Put(key, "persisted"); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewFileCache(path, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := reloaded.Get(key); !ok || got != "persisted" {
		t.Fatalf("entry lost across reload: %q, %v", got, ok)
	}
}

func TestFileCacheExpiresEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := NewFileCache(path, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("item-1", "content")
	if err := c.Put(key, "short-lived"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Fatal("expired entry still served")
	}
}

func TestFileCacheIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewFileCache(path, time.Hour)
	if err != nil {
		t.Fatalf("corrupt cache file must not be fatal: %v", err)
	}
	if err := c.Put(Key("a", "b"), "works"); err != nil {
		t.Fatal(err)
	}
}

func TestKeyChangesWithContent(t *testing.T) {
	a := Key("item-1", "version one")
	b := Key("item-1", "version two")
	c := Key("item-2", "version one")
	if a == b || a == c {
		t.Fatalf("keys collide: %s %s %s", a, b, c)
	}
	if len(a) != 16 {
		t.Fatalf("key length = %d, want 16", len(a))
	}
	if a != Key("item-1", "version one") {
		t.Fatal("key not stable")
	}
}
