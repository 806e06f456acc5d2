package auth

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// HeadlessOptions tunes the unattended browser authorization flow.
type HeadlessOptions struct {
	// Timeout bounds the whole flow across all browser attempts.
	Timeout time.Duration
	// Browsers is an ordered list of browser binaries to try. An empty
	// entry means a rod-managed download. When nil, installed Chrome and
	// Chromium binaries are detected automatically.
	Browsers []string
	// Selectors override the consent-button lookup strategies.
	Selectors []string
}

var defaultConsentSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`form button`,
}

// AuthenticateHeadless drives a real browser through the consent screen and
// captures the authorization code from the redirect URL. Browser candidates
// are tried in order; if every attempt fails within the timeout the flow
// falls back to AuthenticateInteractive.
func (s *Session) AuthenticateHeadless(ctx context.Context, opts HeadlessOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	browsers := opts.Browsers
	if browsers == nil {
		browsers = detectBrowsers()
	}

	state := randomState()
	authURL := s.AuthorizationURL(state)
	deadline := time.Now().Add(opts.Timeout)

	for _, bin := range browsers {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		label := bin
		if label == "" {
			label = "rod-managed"
		}
		s.log.Info("attempting headless authorization", "browser", label)

		code, err := s.captureAuthCode(ctx, authURL, state, bin, remaining, opts.Selectors)
		if err != nil {
			s.log.Warn("headless browser attempt failed", "browser", label, "error", err)
			continue
		}
		return s.ExchangeCode(ctx, code)
	}

	s.log.Warn("headless authorization failed, falling back to interactive flow")
	return s.AuthenticateInteractive(ctx)
}

// detectBrowsers returns installed Chrome/Chromium binaries in preference
// order, ending with the rod-managed fallback.
func detectBrowsers() []string {
	candidates := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	var found []string
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			found = append(found, path)
		}
	}
	return append(found, "")
}

func (s *Session) captureAuthCode(ctx context.Context, authURL, state, bin string, timeout time.Duration, selectors []string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	l := launcher.New().Headless(true).Set("no-sandbox")
	if bin != "" {
		l = l.Bin(bin)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(runCtx)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("connect to browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("create stealth page: %w", err)
	}
	if err := page.Navigate(authURL); err != nil {
		return "", fmt.Errorf("navigate to authorization page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		s.log.Debug("authorization page load wait", "error", err)
	}

	// A live session cookie can redirect straight through the consent screen.
	if code, ok := codeFromPage(page, state); ok {
		return code, nil
	}

	s.clickConsent(page, selectors)

	for {
		select {
		case <-runCtx.Done():
			return "", fmt.Errorf("headless authorization timed out: %w", runCtx.Err())
		case <-time.After(2 * time.Second):
		}
		if code, ok := codeFromPage(page, state); ok {
			return code, nil
		}
	}
}

// codeFromPage extracts the authorization code from the page URL once the
// provider has redirected to the registered callback.
func codeFromPage(page *rod.Page, state string) (string, bool) {
	info, err := page.Info()
	if err != nil {
		return "", false
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	code := q.Get("code")
	if code == "" {
		return "", false
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", false
	}
	return code, true
}

// clickConsent tries each selector strategy in order and clicks the first
// element that matches. Failing to click is not fatal: the account may have
// pre-approved the application.
func (s *Session) clickConsent(page *rod.Page, selectors []string) {
	if len(selectors) == 0 {
		selectors = defaultConsentSelectors
	}
	for _, sel := range selectors {
		el, err := page.Timeout(5 * time.Second).Element(sel)
		if err != nil {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			s.log.Debug("consent click failed", "selector", sel, "error", err)
			continue
		}
		return
	}
	// Last resort: match the button by its visible text.
	el, err := page.Timeout(5*time.Second).ElementR("button, input, a", "/authorize|allow|accept|confirm/i")
	if err != nil {
		s.log.Debug("no consent control found")
		return
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		s.log.Debug("consent click failed", "error", err)
	}
}
