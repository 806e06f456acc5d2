// Package inoreader implements a client for the Inoreader Reader API:
// stream fetching with cursor pagination, folder discovery, and the
// article model the rest of the pipeline consumes.
package inoreader

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Item is one article from a stream.
type Item struct {
	ID         string
	Title      string
	Summary    string
	Content    string
	URL        string
	FeedID     string
	FeedTitle  string
	Author     string
	Categories []string
	Published  time.Time
	Updated    time.Time
}

// Read reports whether the item carries the read-state category.
func (it Item) Read() bool {
	return it.hasCategorySuffix("state/com.google/read")
}

// Starred reports whether the item carries the starred-state category.
func (it Item) Starred() bool {
	return it.hasCategorySuffix("state/com.google/starred")
}

func (it Item) hasCategorySuffix(suffix string) bool {
	for _, c := range it.Categories {
		if strings.HasSuffix(c, suffix) {
			return true
		}
	}
	return false
}

// Text returns the richest text available: full content when present,
// summary otherwise.
func (it Item) Text() string {
	if it.Content != "" {
		return it.Content
	}
	return it.Summary
}

// WebURL returns a link a human can open. Inoreader item IDs end in a
// decimal number that maps to a zero-padded hex article ID on the web UI;
// when the ID does not follow that shape the item's own URL is returned.
func (it Item) WebURL() string {
	if idx := strings.LastIndex(it.ID, "item/"); idx >= 0 {
		numeric := it.ID[idx+len("item/"):]
		if n, err := strconv.ParseUint(numeric, 10, 64); err == nil {
			return fmt.Sprintf("https://www.inoreader.com/article/%016x", n)
		}
	}
	return it.URL
}

// Tag is a folder, label, or state known to the account.
type Tag struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	UnreadCount int    `json:"unread_count"`
	UnseenCount int    `json:"unseen_count"`
}

// Label returns the human-readable trailing segment of the tag ID.
func (t Tag) Label() string {
	for _, marker := range []string{"label/", "state/"} {
		if idx := strings.LastIndex(t.ID, marker); idx >= 0 {
			return t.ID[idx+len(marker):]
		}
	}
	return t.ID
}

// IsFolder reports whether the tag is a user folder rather than a state.
func (t Tag) IsFolder() bool {
	return t.Type == "folder" || strings.Contains(t.ID, "/label/")
}

// UserInfo identifies the authenticated account.
type UserInfo struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// Wire shapes for stream/contents responses.

type streamResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Continuation string     `json:"continuation"`
	Items        []itemJSON `json:"items"`
}

type itemJSON struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Published  int64    `json:"published"`
	Updated    int64    `json:"updated"`
	Categories []string `json:"categories"`
	Summary    struct {
		Content string `json:"content"`
	} `json:"summary"`
	Content struct {
		Content string `json:"content"`
	} `json:"content"`
	Canonical []struct {
		Href string `json:"href"`
	} `json:"canonical"`
	Alternate []struct {
		Href string `json:"href"`
	} `json:"alternate"`
	Origin struct {
		StreamID string `json:"streamId"`
		Title    string `json:"title"`
	} `json:"origin"`
}

func (raw itemJSON) toItem() Item {
	it := Item{
		ID:         raw.ID,
		Title:      raw.Title,
		Author:     raw.Author,
		Summary:    raw.Summary.Content,
		Content:    raw.Content.Content,
		FeedID:     raw.Origin.StreamID,
		FeedTitle:  raw.Origin.Title,
		Categories: raw.Categories,
	}
	if len(raw.Canonical) > 0 {
		it.URL = raw.Canonical[0].Href
	} else if len(raw.Alternate) > 0 {
		it.URL = raw.Alternate[0].Href
	}
	if raw.Published > 0 {
		it.Published = time.Unix(raw.Published, 0).UTC()
	}
	if raw.Updated > 0 {
		it.Updated = time.Unix(raw.Updated, 0).UTC()
	}
	return it
}
