// Package interfaces defines the small abstractions shared across the
// client. Components depend on these rather than on concrete types so
// tests can substitute fixture servers or fakes.
package interfaces

import (
	"context"
	"net/http"
)

// HTTPClient abstracts HTTP execution for testability. Satisfied by
// *http.Client and by pkg/httpclient.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenRefresher refreshes the session's token pair. The stream
// resolver refreshes unconditionally before resolving; the live-channel
// identity is only disclosed to callers with non-stale tokens.
type TokenRefresher interface {
	RefreshTokens(ctx context.Context) bool
}
