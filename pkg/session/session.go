// Package session holds the shared per-client session state: the
// current token pair, username, and the memoized subscription tag.
//
// Only the auth engine writes tokens; every other component reads.
// The pair is swapped as a whole under the lock so a reader can never
// observe an access token from one refresh and a refresh token from
// another.
package session

import "sync"

// TokenPair is the access/refresh credential pair issued at login and
// replaced on every successful refresh. Both fields are present
// together or the pair is absent.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Store is the session state shared by the auth engine and the stream
// resolver.
type Store struct {
	mu           sync.RWMutex
	tokens       TokenPair
	hasTokens    bool
	username     string
	subscription string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// SetTokens commits a new token pair and the username it was issued
// for. Both tokens must be non-empty; a partial pair is a caller bug.
func (s *Store) SetTokens(username, accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	s.tokens = TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	s.hasTokens = true
}

// ReplaceTokens swaps in a refreshed pair, keeping the username.
func (s *Store) ReplaceTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	s.hasTokens = true
}

// ClearTokens drops the token pair, e.g. after a failed login or an
// explicit logout.
func (s *Store) ClearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = TokenPair{}
	s.hasTokens = false
}

// Tokens returns the current pair and whether one is set.
func (s *Store) Tokens() (TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.hasTokens
}

// Username returns the username committed with the current tokens.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Subscription returns the memoized subscription tag; empty means not
// yet known. Failed lookups are not cached.
func (s *Store) Subscription() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscription
}

// SetSubscription memoizes the subscription tag. There is no TTL; the
// tag lives for the client's lifetime.
func (s *Store) SetSubscription(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = tag
}

// ClearSubscription drops the memoized tag, used on logout.
func (s *Store) ClearSubscription() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscription = ""
}
