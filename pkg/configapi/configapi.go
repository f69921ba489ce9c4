// Package configapi fetches the service's remote configuration
// document, which maps logical endpoint names to URLs. It is fetched
// once at client construction; everything else the library does is
// driven by the URLs found here.
package configapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"gamepass-go/pkg/interfaces"
	"gamepass-go/pkg/logging"
)

// ConfigPath is the path of the configuration document under the
// service base URL.
const ConfigPath = "/api/en/content/v1/web/config"

// Endpoints is the slice of the remote configuration the client needs.
// Unknown parts of the document are ignored.
type Endpoints struct {
	Modules Modules `json:"modules"`
}

// Modules groups the configuration sections by service module.
type Modules struct {
	API    API    `json:"API"`
	Gigya  Gigya  `json:"GIGYA"`
	Diva   Diva   `json:"DIVA"`
	Routes Routes `json:"ROUTES_DATA_PROVIDERS"`
}

// API holds the authenticated API endpoints.
type API struct {
	Login           string `json:"LOGIN"`
	RefreshToken    string `json:"REFRESH_TOKEN"`
	ClientID        string `json:"CLIENT_ID"`
	UserAccount     string `json:"USER_ACCOUNT"`
	NetworkPrograms string `json:"NETWORK_PROGRAMS"`
	NetworkEpisodes string `json:"NETWORK_EPISODES"`
}

// Gigya holds the identity-provider section. The API key is embedded
// in the JAVASCRIPT_API_URL query string.
type Gigya struct {
	JavascriptAPIURL string `json:"JAVASCRIPT_API_URL"`
}

// Diva holds the per-feature stream settings URLs.
type Diva struct {
	HTML5 DivaHTML5 `json:"HTML5"`
}

// DivaHTML5 nests the settings for the HTML5 player.
type DivaHTML5 struct {
	Settings DivaSettings `json:"SETTINGS"`
}

// DivaSettings names the diva config URL per feature.
type DivaSettings struct {
	VodNoData  string `json:"VodNoData"`
	LiveNoData string `json:"LiveNoData"`
	Live24x7   string `json:"Live24x7"`
}

// Routes holds the data-provider endpoints for schedules and the
// linear channels.
type Routes struct {
	Games       string `json:"games"`
	GamesDetail string `json:"games_detail"`
	TeamDetail  string `json:"team_detail"`
	Network     string `json:"network"`
	RedZone     string `json:"redzone"`
}

// Fetch retrieves and decodes the remote configuration document.
// Unlike the per-stage failures elsewhere in the library, a bad config
// document is an error: nothing works without it.
func Fetch(ctx context.Context, client interfaces.HTTPClient, baseURL string, log *logging.Logger) (*Endpoints, error) {
	url := baseURL + ConfigPath
	log.Debug("fetching remote configuration", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create config request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote configuration: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote configuration returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote configuration: %w", err)
	}

	var endpoints Endpoints
	if err := json.Unmarshal(body, &endpoints); err != nil {
		return nil, fmt.Errorf("failed to parse remote configuration: %w", err)
	}

	if endpoints.Modules.API.Login == "" || endpoints.Modules.API.RefreshToken == "" {
		return nil, errors.New("remote configuration is missing the auth endpoints")
	}

	return &endpoints, nil
}
