package auth

import "errors"

var (
	// ErrAuthExpired means the stored grant was rejected by the authorization
	// server. Automated runs cannot recover; one of the interactive or
	// headless flows must be run again.
	ErrAuthExpired = errors.New("authentication expired: re-authorization required")

	// ErrTransientAuth covers network and server failures during token
	// operations. Callers should retry with backoff.
	ErrTransientAuth = errors.New("transient authentication error")

	// ErrNotAuthenticated means no token is loaded at all.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenNotFound is returned by TokenStore.Load when no usable token
	// exists on disk. A corrupt token file maps to the same error.
	ErrTokenNotFound = errors.New("token not found")
)
