package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// passwordGrantStrategy is the direct login path: a single
// form-encoded POST exchanging the credentials for a token pair.
type passwordGrantStrategy struct {
	engine *Engine
}

func (s *passwordGrantStrategy) name() string { return "password_grant" }

func (s *passwordGrantStrategy) authenticate(ctx context.Context, username, password string) tokenResult {
	api := s.engine.endpoints.Modules.API
	form := url.Values{
		"client_id":  {api.ClientID},
		"username":   {username},
		"password":   {password},
		"grant_type": {"password"},
	}

	result, ok := s.engine.postTokenForm(ctx, api.Login, form)
	if !ok {
		s.engine.log.Error("password grant: server response is invalid")
		return tokenResult{}
	}
	return result
}

// gigyaStrategy authenticates through the Gigya identity provider and
// then exchanges the signed identity for service tokens via the
// shield_authentication grant. Used for accounts that require
// federated identity verification.
type gigyaStrategy struct {
	engine  *Engine
	authURL string
}

func (s *gigyaStrategy) name() string { return "gigya" }

// gigyaIdentity is the signed identity returned by the provider.
// Pointer fields distinguish an absent key from a present-but-empty
// value: an absent key fails the whole strategy, while empty values
// are passed through and left for the login endpoint to judge.
type gigyaIdentity struct {
	UID                *string `json:"UID"`
	UIDSignature       *string `json:"UIDSignature"`
	SignatureTimestamp *string `json:"signatureTimestamp"`
}

func (g gigyaIdentity) valid() bool {
	return g.UID != nil && g.UIDSignature != nil && g.SignatureTimestamp != nil
}

func (s *gigyaStrategy) authenticate(ctx context.Context, username, password string) tokenResult {
	identity, ok := s.fetchIdentity(ctx, username, password)
	if !ok {
		return tokenResult{}
	}

	api := s.engine.endpoints.Modules.API
	form := url.Values{
		"client_id":   {api.ClientID},
		"uuid":        {*identity.UID},
		"signature":   {*identity.UIDSignature},
		"ts":          {*identity.SignatureTimestamp},
		"device_type": {"web"},
		"username":    {username},
		"grant_type":  {"shield_authentication"},
	}

	result, ok := s.engine.postTokenForm(ctx, api.Login, form)
	if !ok {
		s.engine.log.Error("shield authentication: server response is invalid")
		return tokenResult{}
	}
	return result
}

// fetchIdentity performs the identity-provider POST. The API key is
// not configured directly; it rides in the query string of the
// JAVASCRIPT_API_URL the remote configuration hands out.
func (s *gigyaStrategy) fetchIdentity(ctx context.Context, username, password string) (gigyaIdentity, bool) {
	apiKey := apiKeyFromURL(s.engine.endpoints.Modules.Gigya.JavascriptAPIURL)
	if apiKey == "" {
		s.engine.log.Error("gigya auth: no API key in the configured javascript URL")
		return gigyaIdentity{}, false
	}

	form := url.Values{
		"apiKey":          {apiKey},
		"loginID":         {username},
		"includeUserInfo": {"false"},
		"password":        {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		s.engine.log.WithError(err).Error("gigya auth: request could not be created")
		return gigyaIdentity{}, false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.engine.client.Do(req)
	if err != nil {
		s.engine.log.WithError(err).Error("gigya auth: request failed")
		return gigyaIdentity{}, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.engine.log.WithError(err).Error("gigya auth: response could not be read")
		return gigyaIdentity{}, false
	}

	var identity gigyaIdentity
	if err := json.Unmarshal(body, &identity); err != nil {
		s.engine.log.Error("gigya auth: server response is invalid")
		return gigyaIdentity{}, false
	}

	if !identity.valid() {
		s.engine.log.Error("could not parse gigya auth response")
		return gigyaIdentity{}, false
	}

	return identity, true
}

// apiKeyFromURL extracts the apiKey query parameter from a URL.
func apiKeyFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("apiKey")
}
