package inoreader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://www.inoreader.com/reader/api/0"

// Client talks to the Reader API. The HTTP client is expected to carry
// credentials in its transport (see auth.Session.Client).
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

type ClientOption func(*Client)

// WithBaseURL overrides the API base, used by tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

func WithClientLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues one API request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("request %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// UserInfo fetches the authenticated account's identity.
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.get(ctx, "/user-info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Tags lists the account's folders, labels, and states.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var resp struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.get(ctx, "/tag/list", url.Values{"types": {"1"}}, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// FindFolder locates a folder whose label contains name, case-insensitively.
func (c *Client) FindFolder(ctx context.Context, name string) (*Tag, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	for i := range tags {
		if !tags[i].IsFolder() {
			continue
		}
		if strings.Contains(strings.ToLower(tags[i].Label()), needle) {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("folder %q not found", name)
}
