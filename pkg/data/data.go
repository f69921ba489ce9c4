// Package data supplies the schedule and catalog listings that
// reference the video ids the stream resolver consumes: seasons,
// weeks, games, teams and the network show archive.
//
// The payloads here are business data of uneven quality. Record-level
// problems skip the record; only an unusable response is an error.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"gamepass-go/pkg/configapi"
	"gamepass-go/pkg/interfaces"
	"gamepass-go/pkg/logging"
)

// Service fetches schedule and catalog data.
type Service struct {
	client    interfaces.HTTPClient
	endpoints *configapi.Endpoints
	log       *logging.Logger
}

// NewService creates a data service.
func NewService(client interfaces.HTTPClient, endpoints *configapi.Endpoints, log *logging.Logger) *Service {
	return &Service{
		client:    client,
		endpoints: endpoints,
		log:       log.WithComponent("data"),
	}
}

// CurrentWeek identifies where the service thinks the calendar is.
type CurrentWeek struct {
	Season     string
	SeasonType string
	Week       string
}

// Week is one week of a season phase.
type Week struct {
	Number string
	// Description is non-empty only for special weeks (Hall of Fame,
	// Super Bowl, ...).
	Description string
}

// SeasonWeeks groups a season's weeks by phase.
type SeasonWeeks struct {
	Pre  []Week
	Reg  []Week
	Post []Week
}

// TeamSide is one side of a game, with points when the service
// provides a score.
type TeamSide struct {
	Name   string
	City   string
	Points *int
}

// Game is the normalized metadata for one game.
type Game struct {
	// Name is Away@Home, e.g. "Packers@Bears".
	Name      string
	City      string
	Stadium   string
	StartTime string
	Phase     string
	Home      TeamSide
	Away      TeamSide
	// Versions maps "full", "condensed" and "coach" to video ids,
	// when available.
	Versions map[string]string
}

// SeasonGames groups a team's games by phase. Phases the team did not
// play (no post season) are nil.
type SeasonGames struct {
	Pre  []Game
	Reg  []Game
	Post []Game
}

// Team is one team's identity for a season.
type Team struct {
	Abbr string
	City string
	Name string
}

// Show is one program of the network catalog.
type Show struct {
	Name        string
	Slug        string
	Description string
	Logo        string
}

// flexString tolerates the service flip-flopping between JSON strings
// and numbers for the same field across payloads.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// CurrentWeek returns the current season, season type and week.
func (s *Service) CurrentWeek(ctx context.Context) (*CurrentWeek, error) {
	var payload struct {
		Modules struct {
			Meta struct {
				CurrentContext struct {
					CurrentSeason     flexString `json:"currentSeason"`
					CurrentSeasonType flexString `json:"currentSeasonType"`
					CurrentWeek       flexString `json:"currentWeek"`
				} `json:"currentContext"`
			} `json:"meta"`
		} `json:"modules"`
	}

	if err := s.getJSON(ctx, s.endpoints.Modules.Routes.Games, &payload); err != nil {
		return nil, fmt.Errorf("current week: %w", err)
	}

	cc := payload.Modules.Meta.CurrentContext
	if cc.CurrentSeason == "" || cc.CurrentSeasonType == "" || cc.CurrentWeek == "" {
		return nil, fmt.Errorf("current week: could not determine the current season and week")
	}

	return &CurrentWeek{
		Season:     string(cc.CurrentSeason),
		SeasonType: string(cc.CurrentSeasonType),
		Week:       string(cc.CurrentWeek),
	}, nil
}

// seasonStructure mirrors the season list of the games route.
type seasonStructure struct {
	Modules struct {
		MainMenu struct {
			SeasonStructureList []struct {
				Season      *int `json:"season"`
				SeasonTypes []struct {
					SeasonType string `json:"seasonType"`
					Weeks      []struct {
						Number       flexString `json:"number"`
						WeekNameAbbr string     `json:"weekNameAbbr"`
					} `json:"weeks"`
				} `json:"seasonTypes"`
			} `json:"seasonStructureList"`
		} `json:"mainMenu"`
	} `json:"modules"`
}

// Seasons returns the available seasons, most recent first.
func (s *Service) Seasons(ctx context.Context) ([]string, error) {
	var payload seasonStructure
	if err := s.getJSON(ctx, s.endpoints.Modules.Routes.Games, &payload); err != nil {
		return nil, fmt.Errorf("seasons: %w", err)
	}

	list := payload.Modules.MainMenu.SeasonStructureList
	if len(list) == 0 {
		return nil, fmt.Errorf("seasons: unable to parse the seasons data")
	}

	var seasons []string
	for _, entry := range list {
		if entry.Season == nil {
			continue
		}
		seasons = append(seasons, strconv.Itoa(*entry.Season))
	}

	sort.Sort(sort.Reverse(sort.StringSlice(seasons)))
	return seasons, nil
}

var weekDescriptions = map[string]string{
	"hof":  "Hall of Fame",
	"wc":   "Wild Card",
	"div":  "Divisional",
	"conf": "Conference",
	"pro":  "Pro Bowl",
	"sb":   "Super Bowl",
}

// Weeks returns the week structure of a season, grouped by phase.
func (s *Service) Weeks(ctx context.Context, season string) (*SeasonWeeks, error) {
	var payload seasonStructure
	if err := s.getJSON(ctx, s.endpoints.Modules.Routes.Games, &payload); err != nil {
		return nil, fmt.Errorf("weeks: %w", err)
	}

	wantSeason, err := strconv.Atoi(season)
	if err != nil {
		return nil, fmt.Errorf("weeks: invalid season %q", season)
	}

	for _, entry := range payload.Modules.MainMenu.SeasonStructureList {
		if entry.Season == nil || *entry.Season != wantSeason {
			continue
		}

		weeks := &SeasonWeeks{}
		for _, st := range entry.SeasonTypes {
			var converted []Week
			for _, w := range st.Weeks {
				converted = append(converted, Week{
					Number:      string(w.Number),
					Description: weekDescriptions[w.WeekNameAbbr],
				})
			}

			switch st.SeasonType {
			case "pre":
				weeks.Pre = converted
			case "reg":
				weeks.Reg = converted
			case "post":
				weeks.Post = converted
			}
		}
		return weeks, nil
	}

	return nil, fmt.Errorf("weeks: season %s not found", season)
}

// getJSON fetches a URL and decodes the JSON body into out.
func (s *Service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid server response: %w", err)
	}
	return nil
}

// phases flattens a SeasonWeeks into (phase, weeks) pairs in play
// order.
func (w *SeasonWeeks) phases() []struct {
	Name  string
	Weeks []Week
} {
	return []struct {
		Name  string
		Weeks []Week
	}{
		{"pre", w.Pre},
		{"reg", w.Reg},
		{"post", w.Post},
	}
}
