package inoreader

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"intelbrief/internal/metrics"
)

// FetchPage requests one page of stream contents. since filters items older
// than the given time when non-zero; cursor continues a previous page. The
// returned cursor is empty on the last page.
func (c *Client) FetchPage(ctx context.Context, streamID string, n int, cursor string, since time.Time) ([]Item, string, error) {
	params := url.Values{}
	params.Set("n", strconv.Itoa(n))
	params.Set("output", "json")
	if !since.IsZero() {
		params.Set("ot", strconv.FormatInt(since.Unix(), 10))
	}
	if cursor != "" {
		params.Set("c", cursor)
	}

	var resp streamResponse
	path := "/stream/contents/" + url.PathEscape(streamID)
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, "", err
	}

	items := make([]Item, 0, len(resp.Items))
	for _, raw := range resp.Items {
		items = append(items, raw.toItem())
	}
	return items, resp.Continuation, nil
}

// FetchAll walks the stream's pages until the total budget is met, the
// stream is exhausted, or a page fails. Each page requests no more than the
// remaining budget, so the result never overshoots it. A mid-stream page
// failure returns the items gathered so far together with the error; callers
// decide whether partial data is acceptable.
func (c *Client) FetchAll(ctx context.Context, streamID string, budget, pageSize int, since time.Time) ([]Item, error) {
	if budget <= 0 {
		return nil, nil
	}
	if pageSize <= 0 {
		pageSize = 100
	}

	var (
		items  []Item
		cursor string
	)
	for len(items) < budget {
		n := pageSize
		if remaining := budget - len(items); remaining < n {
			n = remaining
		}

		page, next, err := c.FetchPage(ctx, streamID, n, cursor, since)
		if err != nil {
			return items, fmt.Errorf("fetch page after %d items: %w", len(items), err)
		}
		items = append(items, page...)
		metrics.Global.AddPagesFetched(1)
		c.log.Debug("fetched stream page", "stream", streamID, "page_items", len(page), "total", len(items))

		// A short page or a missing continuation means the stream is done.
		if next == "" || len(page) == 0 || len(page) < n {
			break
		}
		cursor = next
	}
	return items, nil
}

// TodaysArticles fetches up to budget items published since local midnight.
func (c *Client) TodaysArticles(ctx context.Context, streamID string, budget, pageSize int) ([]Item, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return c.FetchAll(ctx, streamID, budget, pageSize, midnight)
}
