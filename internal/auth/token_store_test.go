package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTokenStoreLoadAbsentFile(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewTokenStore(path)
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for malformed file, got %v", err)
	}
}

func TestTokenStoreLoadMissingAccessToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte(`{"refresh_token":"r"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewTokenStore(path)
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound without access token, got %v", err)
	}
}

func TestTokenStoreRoundTrip(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	in := &TokenSet{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer", ExpiresIn: 3600}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.AccessToken != "at" || out.RefreshToken != "rt" {
		t.Fatalf("loaded token set mismatch: %+v", out)
	}
}

func TestTokenStoreClear(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	if err := store.Save(&TokenSet{AccessToken: "at"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected store to be empty after Clear, got %v", err)
	}
	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
