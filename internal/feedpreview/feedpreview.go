// Package feedpreview fetches a feed directly from its origin, without
// authentication, so stream IDs can be inspected before subscribing.
package feedpreview

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"intelbrief/internal/inoreader"
)

// FeedURL extracts the origin URL from a feed stream ID of the form
// "feed/<url>".
func FeedURL(streamID string) (string, error) {
	rest, ok := strings.CutPrefix(streamID, "feed/")
	if !ok || rest == "" {
		return "", fmt.Errorf("stream id %q is not a feed stream", streamID)
	}
	return rest, nil
}

// Fetch downloads and parses the feed behind streamID, returning up to
// limit items mapped to the pipeline's article model.
func Fetch(ctx context.Context, streamID string, limit int) ([]inoreader.Item, error) {
	feedURL, err := FeedURL(streamID)
	if err != nil {
		return nil, err
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	items := make([]inoreader.Item, 0, len(feed.Items))
	for _, raw := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, toItem(streamID, feed.Title, raw))
	}
	return items, nil
}

func toItem(streamID, feedTitle string, raw *gofeed.Item) inoreader.Item {
	it := inoreader.Item{
		ID:        raw.GUID,
		Title:     raw.Title,
		Summary:   raw.Description,
		Content:   raw.Content,
		URL:       raw.Link,
		FeedID:    streamID,
		FeedTitle: feedTitle,
	}
	if it.ID == "" {
		it.ID = raw.Link
	}
	if raw.Author != nil {
		it.Author = raw.Author.Name
	}
	if raw.PublishedParsed != nil {
		it.Published = raw.PublishedParsed.UTC()
	}
	if raw.UpdatedParsed != nil {
		it.Updated = raw.UpdatedParsed.UTC()
	}
	return it
}
