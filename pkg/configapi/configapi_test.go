package configapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamepass-go/pkg/logging"
)

const configDocument = `{
  "modules": {
    "API": {
      "LOGIN": "https://api.example.com/v1/oauth/token",
      "REFRESH_TOKEN": "https://api.example.com/v1/oauth/refresh",
      "CLIENT_ID": "client-123",
      "USER_ACCOUNT": "https://api.example.com/v1/account",
      "NETWORK_PROGRAMS": "https://api.example.com/v1/programs",
      "NETWORK_EPISODES": "https://api.example.com/v1/programs/slug/episodes"
    },
    "GIGYA": {
      "JAVASCRIPT_API_URL": "https://cdns.gigya.com/js/gigya.js?apiKey=key-abc"
    },
    "DIVA": {
      "HTML5": {
        "SETTINGS": {
          "VodNoData": "https://diva.example.com/device/vod.xml",
          "LiveNoData": "https://diva.example.com/device/live.xml",
          "Live24x7": "https://diva.example.com/device/24x7.xml"
        }
      }
    },
    "ROUTES_DATA_PROVIDERS": {
      "games": "https://api.example.com/v1/games",
      "games_detail": "https://api.example.com/v1/games/:seasonType",
      "team_detail": "https://api.example.com/v1/teams/:team",
      "network": "https://api.example.com/v1/network",
      "redzone": "https://api.example.com/v1/redzone"
    },
    "SOMETHING_UNKNOWN": {"ignored": true}
  }
}`

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ConfigPath {
			t.Errorf("path = %q, want %q", r.URL.Path, ConfigPath)
		}
		fmt.Fprint(w, configDocument)
	}))
	defer server.Close()

	endpoints, err := Fetch(context.Background(), server.Client(), server.URL, logging.Discard())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	api := endpoints.Modules.API
	if api.Login != "https://api.example.com/v1/oauth/token" {
		t.Errorf("Login = %q", api.Login)
	}
	if api.ClientID != "client-123" {
		t.Errorf("ClientID = %q", api.ClientID)
	}
	if got := endpoints.Modules.Gigya.JavascriptAPIURL; got != "https://cdns.gigya.com/js/gigya.js?apiKey=key-abc" {
		t.Errorf("JavascriptAPIURL = %q", got)
	}
	if got := endpoints.Modules.Diva.HTML5.Settings.Live24x7; got != "https://diva.example.com/device/24x7.xml" {
		t.Errorf("Live24x7 = %q", got)
	}
	if got := endpoints.Modules.Routes.RedZone; got != "https://api.example.com/v1/redzone" {
		t.Errorf("RedZone = %q", got)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not json", http.StatusOK, "<html>maintenance</html>"},
		{"missing auth endpoints", http.StatusOK, `{"modules": {"API": {"CLIENT_ID": "x"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			if _, err := Fetch(context.Background(), server.Client(), server.URL, logging.Discard()); err == nil {
				t.Error("Fetch should fail")
			}
		})
	}
}
