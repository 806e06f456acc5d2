package auth

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// AuthenticateInteractive walks the user through the authorization-code
// flow: open the consent page in a browser, then read the code from input.
func (s *Session) AuthenticateInteractive(ctx context.Context) error {
	state := randomState()
	authURL := s.AuthorizationURL(state)

	fmt.Println("Open this URL in your browser to authorize access:")
	fmt.Println("  " + authURL)
	if s.openURL != nil {
		if err := s.openURL(authURL); err != nil {
			s.log.Warn("could not open browser", "error", err)
		}
	}
	fmt.Printf("After approving you will be redirected to %s\n", s.cfg.RedirectURI)
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(s.input)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return fmt.Errorf("no authorization code provided")
	}
	return s.ExchangeCode(ctx, code)
}
