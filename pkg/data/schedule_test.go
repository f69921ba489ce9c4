package data

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

// weekGamesDocument scatters two games across differently named
// modules, plus a record without team names that must be dropped.
const weekGamesDocument = `{
  "modules": {
    "gamesSunday": {
      "content": [
        {
          "season": "2017",
          "seasonType": "REG",
          "gameDateTimeUtc": "2017-09-10T17:00:00.000Z",
          "phase": "FINAL",
          "siteCity": "Chicago",
          "siteFullName": "Soldier Field",
          "homeNickName": "Bears",
          "homeCityState": "Chicago",
          "homeTeamAbbr": "CHI",
          "visitorNickName": "Falcons",
          "visitorCityState": "Atlanta",
          "visitorTeamAbbr": "ATL",
          "homeScore": {"pointTotal": 17},
          "visitorScore": {"pointTotal": 23},
          "video": {"videoId": "vid-full-1"},
          "condensedVideo": {"videoId": "vid-cond-1"}
        },
        {"gameDateTimeUtc": "2017-09-10T10:00:00.000Z"}
      ]
    },
    "gamesThursday": {
      "content": [
        {
          "season": 2017,
          "seasonType": "REG",
          "gameDateTimeUtc": "2017-09-08T00:30:00.000Z",
          "phase": "FINAL",
          "homeNickName": "Patriots",
          "homeCityState": "New England",
          "homeTeamAbbr": "NE",
          "visitorNickName": "Chiefs",
          "visitorCityState": "Kansas City",
          "visitorTeamAbbr": "KC",
          "video": {"videoId": "vid-full-2"},
          "coachfilmVideo": {"videoId": ""}
        }
      ]
    },
    "meta": {"currentContext": "not a game module"}
  }
}`

func (f *dataFixture) serveWeekGames(path, document string) {
	f.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, document)
	})
}

func TestWeekGames(t *testing.T) {
	f := newDataFixture(t)
	f.serveWeekGames("/games/reg/2017/1", weekGamesDocument)

	games, err := f.service.WeekGames(context.Background(), "2017", "reg", "1")
	if err != nil {
		t.Fatalf("WeekGames: %v", err)
	}

	if len(games) != 2 {
		t.Fatalf("got %d games, want 2: %+v", len(games), games)
	}

	// Sorted by broadcast time: the Thursday game first.
	first := games[0]
	if first.Name != "Chiefs@Patriots" {
		t.Errorf("first game = %q", first.Name)
	}
	if len(first.Versions) != 1 || first.Versions["full"] != "vid-full-2" {
		t.Errorf("first game versions = %v", first.Versions)
	}
	if first.Home.Points != nil {
		t.Error("a game without scores should have nil points")
	}

	second := games[1]
	if second.Name != "Falcons@Bears" {
		t.Errorf("second game = %q", second.Name)
	}
	if second.Stadium != "Soldier Field" || second.City != "Chicago" {
		t.Errorf("second game venue = %q / %q", second.Stadium, second.City)
	}
	if second.Home.Points == nil || *second.Home.Points != 17 {
		t.Errorf("home points = %v", second.Home.Points)
	}
	if second.Away.Points == nil || *second.Away.Points != 23 {
		t.Errorf("away points = %v", second.Away.Points)
	}
	if second.Versions["full"] != "vid-full-1" || second.Versions["condensed"] != "vid-cond-1" {
		t.Errorf("second game versions = %v", second.Versions)
	}
	if _, ok := second.Versions["coach"]; ok {
		t.Error("absent coach film should not appear in versions")
	}
}

func TestWeekGamesEmpty(t *testing.T) {
	f := newDataFixture(t)
	f.serveWeekGames("/games/reg/2017/1", `{"modules": {}}`)

	if _, err := f.service.WeekGames(context.Background(), "2017", "reg", "1"); err == nil {
		t.Error("WeekGames should fail when the week has no games")
	}
}

// fullWeekDocument builds a games payload of n distinct matchups.
func fullWeekDocument(n int) string {
	var games []map[string]any
	for i := 0; i < n; i++ {
		games = append(games, map[string]any{
			"gameDateTimeUtc":  fmt.Sprintf("2017-09-10T%02d:00:00.000Z", i),
			"homeNickName":     fmt.Sprintf("Home%02d", i),
			"homeCityState":    fmt.Sprintf("City%02d Home%02d", i, i),
			"homeTeamAbbr":     fmt.Sprintf("H%02d", i),
			"visitorNickName":  fmt.Sprintf("Away%02d", i),
			"visitorCityState": fmt.Sprintf("Town%02d", i),
			"visitorTeamAbbr":  fmt.Sprintf("A%02d", i),
		})
	}
	doc, _ := json.Marshal(map[string]any{
		"modules": map[string]any{"games": map[string]any{"content": games}},
	})
	return string(doc)
}

func TestTeams(t *testing.T) {
	f := newDataFixture(t)
	// Week 1 is short a game; week 2 is the first full week.
	f.serveWeekGames("/games/reg/2017/1", fullWeekDocument(15))
	f.serveWeekGames("/games/reg/2017/2", fullWeekDocument(16))

	teams, err := f.service.Teams(context.Background(), "2017")
	if err != nil {
		t.Fatalf("Teams: %v", err)
	}

	if len(teams) != 32 {
		t.Fatalf("got %d teams, want 32", len(teams))
	}
	// Sorted by name, so all Away teams come before all Home teams.
	if teams[0].Name != "Away00" || teams[0].Abbr != "A00" {
		t.Errorf("teams[0] = %+v", teams[0])
	}
	// Shared-city markets embed the team name in the city field.
	home := teams[16]
	if home.Name != "Home00" || home.City != "City00" {
		t.Errorf("teams[16] = %+v, want the team name stripped from the city", home)
	}
}

func TestTeamsNoFullWeek(t *testing.T) {
	f := newDataFixture(t)
	f.mux.HandleFunc("/games/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fullWeekDocument(15))
	})

	if _, err := f.service.Teams(context.Background(), "2017"); err == nil {
		t.Error("Teams should fail when no week lists every team")
	}
}

func TestTeamGamesDirect(t *testing.T) {
	f := newDataFixture(t)
	f.mux.HandleFunc("/teams/bears", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
  "modules": {
    "gamesCurrentSeason": {
      "content": [
        {
          "season": "2017", "seasonType": "REG",
          "gameDateTimeUtc": "2017-09-10T17:00:00.000Z",
          "homeNickName": "Bears", "visitorNickName": "Falcons"
        },
        {
          "season": "2017", "seasonType": "PRE",
          "gameDateTimeUtc": "2017-08-10T17:00:00.000Z",
          "homeNickName": "Broncos", "visitorNickName": "Bears"
        },
        {
          "season": "2016", "seasonType": "REG",
          "gameDateTimeUtc": "2016-09-11T17:00:00.000Z",
          "homeNickName": "Texans", "visitorNickName": "Bears"
        }
      ]
    }
  }
}`)
	})

	games, err := f.service.TeamGames(context.Background(), "Bears", "2017")
	if err != nil {
		t.Fatalf("TeamGames: %v", err)
	}

	if len(games.Pre) != 1 || games.Pre[0].Name != "Bears@Broncos" {
		t.Errorf("Pre = %+v", games.Pre)
	}
	if len(games.Reg) != 1 || games.Reg[0].Name != "Falcons@Bears" {
		t.Errorf("Reg = %+v", games.Reg)
	}
	if len(games.Post) != 0 {
		t.Errorf("Post = %+v, want no games from other seasons", games.Post)
	}
}

func TestTeamGamesFallsBackToScan(t *testing.T) {
	f := newDataFixture(t)
	// The direct endpoint only knows the current season.
	f.mux.HandleFunc("/teams/bears", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"modules": {"gamesCurrentSeason": {"content": []}}}`)
	})
	f.serveSeasonStructure()
	f.mux.HandleFunc("/games/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/games/reg/2017/1" {
			fmt.Fprint(w, `{"modules": {"games": {"content": [
  {"seasonType": "REG", "gameDateTimeUtc": "2017-09-10T17:00:00.000Z",
   "homeNickName": "Bears", "visitorNickName": "Falcons"},
  {"seasonType": "REG", "gameDateTimeUtc": "2017-09-10T20:00:00.000Z",
   "homeNickName": "Packers", "visitorNickName": "Seahawks"}
]}}}`)
			return
		}
		fmt.Fprint(w, `{"modules": {}}`)
	})

	games, err := f.service.TeamGames(context.Background(), "Bears", "2017")
	if err != nil {
		t.Fatalf("TeamGames: %v", err)
	}

	if len(games.Reg) != 1 || games.Reg[0].Name != "Falcons@Bears" {
		t.Errorf("Reg = %+v", games.Reg)
	}
	if len(games.Pre) != 0 || len(games.Post) != 0 {
		t.Errorf("unexpected games outside reg: %+v", games)
	}
}
