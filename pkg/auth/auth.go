// Package auth implements login, token refresh and subscription lookup
// against the service's auth endpoints.
//
// Login walks an ordered list of strategies (direct password grant
// first, Gigya-mediated shield auth second) and accepts the first one
// that yields a complete token pair. Auth failures are expected
// conditions: they are logged and reported as booleans, never as
// errors.
package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gamepass-go/pkg/configapi"
	"gamepass-go/pkg/interfaces"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/session"
)

// Engine executes authentication flows and owns all writes to the
// session store's token pair.
type Engine struct {
	client     interfaces.HTTPClient
	store      *session.Store
	endpoints  *configapi.Endpoints
	log        *logging.Logger
	strategies []strategy
}

// NewEngine creates an auth engine. gigyaAuthURL is the fixed identity
// provider login endpoint; the matching API key comes from the remote
// configuration.
func NewEngine(client interfaces.HTTPClient, store *session.Store, endpoints *configapi.Endpoints, gigyaAuthURL string, log *logging.Logger) *Engine {
	e := &Engine{
		client:    client,
		store:     store,
		endpoints: endpoints,
		log:       log.WithComponent("auth"),
	}

	// Ordered: the password grant is one round trip, Gigya is three.
	// Gigya is the fallback for accounts that require federated
	// identity verification.
	e.strategies = []strategy{
		&passwordGrantStrategy{engine: e},
		&gigyaStrategy{engine: e, authURL: gigyaAuthURL},
	}

	return e
}

// tokenResult is a parsed auth response. It is complete only when both
// tokens are present; a response carrying one of the two is treated as
// a failed attempt.
type tokenResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t tokenResult) complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// strategy is one way of turning credentials into a token pair.
type strategy interface {
	name() string
	authenticate(ctx context.Context, username, password string) tokenResult
}

// Login authenticates and commits the resulting tokens to the session
// store. When force is false and a subscription is already memoized,
// the session is considered entitled and no network calls are made.
func (e *Engine) Login(ctx context.Context, username, password string, force bool) bool {
	if !force && e.store.Subscription() != "" {
		e.log.Debug("no need to login; the user already has access")
		return true
	}

	for _, s := range e.strategies {
		e.log.Debug("trying authentication strategy", "strategy", s.name())

		result := s.authenticate(ctx, username, password)
		if !result.complete() {
			e.log.Error("could not acquire tokens", "strategy", s.name())
			continue
		}

		e.store.SetTokens(username, result.AccessToken, result.RefreshToken)
		e.log.Debug("login was successful", "strategy", s.name())
		return true
	}

	e.store.ClearTokens()
	e.log.Error("login failed")
	return false
}

// Logout drops the session's tokens and memoized subscription.
func (e *Engine) Logout() {
	e.store.ClearTokens()
	e.store.ClearSubscription()
	e.log.Debug("logged out")
}

// RefreshTokens exchanges the current refresh token for a new pair.
// On any failure the existing pair is left untouched; a failed refresh
// must not destroy a still-valid session.
func (e *Engine) RefreshTokens(ctx context.Context) bool {
	tokens, ok := e.store.Tokens()
	if !ok {
		e.log.Error("token refresh: no refresh token available")
		return false
	}

	form := url.Values{
		"client_id":     {e.endpoints.Modules.API.ClientID},
		"refresh_token": {tokens.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	result, ok := e.postTokenForm(ctx, e.endpoints.Modules.API.RefreshToken, form)
	if !ok {
		e.log.Error("token refresh: server response is invalid")
		return false
	}
	if !result.complete() {
		e.log.Error("could not find tokens in the refresh response")
		return false
	}

	e.store.ReplaceTokens(result.AccessToken, result.RefreshToken)
	e.log.Debug("successfully refreshed tokens")
	return true
}

// accountResponse is the slice of the account payload we care about.
type accountResponse struct {
	Subscriptions []struct {
		ProductTag string `json:"productTag"`
	} `json:"subscriptions"`
}

// Subscription fetches the user's subscription tag, or "" when the
// account has none or the lookup failed. When multiple subscriptions
// are returned the first entry wins; the service has never been
// observed returning more than one.
func (e *Engine) Subscription(ctx context.Context) string {
	tokens, _ := e.store.Tokens()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoints.Modules.API.UserAccount, nil)
	if err != nil {
		e.log.WithError(err).Error("get subscription: failed to create request")
		return ""
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.WithError(err).Error("get subscription: request failed")
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.log.WithError(err).Error("get subscription: failed to read response")
		return ""
	}

	var account accountResponse
	if err := json.Unmarshal(body, &account); err != nil {
		e.log.Error("get subscription: unable to parse server response")
		return ""
	}

	if len(account.Subscriptions) == 0 {
		e.log.Error("no active subscription was found")
		return ""
	}

	return account.Subscriptions[0].ProductTag
}

// postTokenForm posts a form-encoded auth request and parses the token
// response. The second return is false when the request could not be
// made or the body is not valid JSON.
func (e *Engine) postTokenForm(ctx context.Context, endpoint string, form url.Values) (tokenResult, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		e.log.WithError(err).Error("auth request could not be created")
		return tokenResult{}, false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.WithError(err).Error("auth request failed")
		return tokenResult{}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.log.WithError(err).Error("auth response could not be read")
		return tokenResult{}, false
	}

	var result tokenResult
	if err := json.Unmarshal(body, &result); err != nil {
		return tokenResult{}, false
	}

	return result, true
}

var _ interfaces.TokenRefresher = (*Engine)(nil)
