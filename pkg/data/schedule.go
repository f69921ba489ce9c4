package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// rawGame mirrors one game record of the games_detail payload.
type rawGame struct {
	Season           flexString `json:"season"`
	SeasonType       string     `json:"seasonType"`
	GameDateTimeUTC  string     `json:"gameDateTimeUtc"`
	Phase            flexString `json:"phase"`
	SiteCity         string     `json:"siteCity"`
	SiteFullName     string     `json:"siteFullName"`
	HomeNickName     string     `json:"homeNickName"`
	HomeCityState    string     `json:"homeCityState"`
	HomeTeamAbbr     string     `json:"homeTeamAbbr"`
	VisitorNickName  string     `json:"visitorNickName"`
	VisitorCityState string     `json:"visitorCityState"`
	VisitorTeamAbbr  string     `json:"visitorTeamAbbr"`
	HomeScore        *rawScore  `json:"homeScore"`
	VisitorScore     *rawScore  `json:"visitorScore"`
	Video            *rawVideo  `json:"video"`
	CondensedVideo   *rawVideo  `json:"condensedVideo"`
	CoachfilmVideo   *rawVideo  `json:"coachfilmVideo"`
}

type rawScore struct {
	PointTotal *int `json:"pointTotal"`
}

type rawVideo struct {
	VideoID string `json:"videoId"`
}

// toGame normalizes a raw record. ok is false when the record lacks
// the fields that identify a game at all.
func (g rawGame) toGame() (Game, bool) {
	if g.HomeNickName == "" || g.VisitorNickName == "" {
		return Game{}, false
	}

	game := Game{
		Name:      g.VisitorNickName + "@" + g.HomeNickName,
		City:      g.SiteCity,
		Stadium:   g.SiteFullName,
		StartTime: g.GameDateTimeUTC,
		Phase:     string(g.Phase),
		Home:      TeamSide{Name: g.HomeNickName, City: g.HomeCityState},
		Away:      TeamSide{Name: g.VisitorNickName, City: g.VisitorCityState},
		Versions:  map[string]string{},
	}

	if g.HomeScore != nil {
		game.Home.Points = g.HomeScore.PointTotal
	}
	if g.VisitorScore != nil {
		game.Away.Points = g.VisitorScore.PointTotal
	}

	versions := map[string]*rawVideo{
		"full":      g.Video,
		"condensed": g.CondensedVideo,
		"coach":     g.CoachfilmVideo,
	}
	for name, v := range versions {
		if v != nil && v.VideoID != "" {
			game.Versions[name] = v.VideoID
		}
	}

	return game, true
}

// fetchGamesList returns the raw game records for one week. The
// payload scatters games across arbitrarily named modules; every
// module carrying a content list contributes.
func (s *Service) fetchGamesList(ctx context.Context, season, seasonType, week string) ([]rawGame, error) {
	url := s.endpoints.Modules.Routes.GamesDetail
	url = strings.ReplaceAll(url, ":seasonType", seasonType)
	url = strings.ReplaceAll(url, ":season", season)
	url = strings.ReplaceAll(url, ":week", week)

	var payload struct {
		Modules map[string]json.RawMessage `json:"modules"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	var games []rawGame
	for name, raw := range payload.Modules {
		var module struct {
			Content []rawGame `json:"content"`
		}
		if err := json.Unmarshal(raw, &module); err != nil {
			s.log.Debug("games list: skipping undecodable module", "module", name)
			continue
		}
		games = append(games, module.Content...)
	}

	return games, nil
}

// WeekGames returns the games of one week, sorted by broadcast time.
func (s *Service) WeekGames(ctx context.Context, season, seasonType, week string) ([]Game, error) {
	rawGames, err := s.fetchGamesList(ctx, season, seasonType, week)
	if err != nil {
		return nil, fmt.Errorf("week games: %w", err)
	}
	if len(rawGames) == 0 {
		return nil, fmt.Errorf("week games: no games found for %s/%s week %s", season, seasonType, week)
	}

	sort.SliceStable(rawGames, func(i, j int) bool {
		return rawGames[i].GameDateTimeUTC < rawGames[j].GameDateTimeUTC
	})

	var games []Game
	for _, raw := range rawGames {
		game, ok := raw.toGame()
		if !ok {
			s.log.Warn("week games: invalid record; skipping")
			continue
		}
		games = append(games, game)
	}

	return games, nil
}

// Teams returns the teams of a season, sorted alphabetically. The
// service only lists current-season teams directly, so the list is
// assembled from the matchups of a week where every team plays.
func (s *Service) Teams(ctx context.Context, season string) ([]Team, error) {
	// Weeks without byes; the first full week normally has 16 games,
	// but week 1 of 2017 had only 15.
	noByeWeeks := []string{"1", "2", "3", "13", "14", "15", "16", "17"}

	var games []rawGame
	for _, week := range noByeWeeks {
		list, err := s.fetchGamesList(ctx, season, "reg", week)
		if err != nil {
			continue
		}
		if len(list) == 16 {
			games = list
			break
		}
	}
	if len(games) != 16 {
		return nil, fmt.Errorf("teams: no full week found for season %s", season)
	}

	var teams []Team
	for _, game := range games {
		if game.HomeNickName == "" || game.VisitorNickName == "" {
			return nil, fmt.Errorf("teams: could not build the teams list")
		}

		// Cities with multiple teams carry the team name inside the
		// city field; strip it.
		teams = append(teams, Team{
			Abbr: game.HomeTeamAbbr,
			City: strings.Replace(game.HomeCityState, " "+game.HomeNickName, "", 1),
			Name: game.HomeNickName,
		})
		teams = append(teams, Team{
			Abbr: game.VisitorTeamAbbr,
			City: strings.Replace(game.VisitorCityState, " "+game.VisitorNickName, "", 1),
			Name: game.VisitorNickName,
		})
	}

	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

// TeamGames returns a team's games for a season, grouped by phase.
// The direct team endpoint only covers the current season; other
// seasons fall back to scanning every week.
func (s *Service) TeamGames(ctx context.Context, team, season string) (*SeasonGames, error) {
	games, err := s.teamGamesDirect(ctx, team, season)
	if err == nil && !games.empty() {
		return games, nil
	}

	games, err = s.teamGamesScan(ctx, team, season)
	if err != nil {
		return nil, fmt.Errorf("team games: %w", err)
	}
	if games.empty() {
		return nil, fmt.Errorf("team games: no games found for %s in %s", team, season)
	}
	return games, nil
}

func (g *SeasonGames) empty() bool {
	return len(g.Pre) == 0 && len(g.Reg) == 0 && len(g.Post) == 0
}

func (g *SeasonGames) add(seasonType string, game Game) {
	switch seasonType {
	case "pre":
		g.Pre = append(g.Pre, game)
	case "reg":
		g.Reg = append(g.Reg, game)
	case "post":
		g.Post = append(g.Post, game)
	}
}

// teamGamesDirect asks the team endpoint, which serves the current
// season only.
func (s *Service) teamGamesDirect(ctx context.Context, team, season string) (*SeasonGames, error) {
	url := strings.ReplaceAll(s.endpoints.Modules.Routes.TeamDetail, ":team", strings.ToLower(team))

	var payload struct {
		Modules struct {
			GamesCurrentSeason struct {
				Content []rawGame `json:"content"`
			} `json:"gamesCurrentSeason"`
		} `json:"modules"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}

	rawGames := payload.Modules.GamesCurrentSeason.Content
	sort.SliceStable(rawGames, func(i, j int) bool {
		return rawGames[i].GameDateTimeUTC < rawGames[j].GameDateTimeUTC
	})

	wantSeason, err := strconv.Atoi(season)
	if err != nil {
		return nil, fmt.Errorf("invalid season %q", season)
	}

	games := &SeasonGames{}
	for _, raw := range rawGames {
		recordSeason, err := strconv.Atoi(string(raw.Season))
		if err != nil || recordSeason != wantSeason {
			continue
		}

		game, ok := raw.toGame()
		if !ok {
			s.log.Warn("team games: invalid record; skipping")
			continue
		}
		games.add(strings.ToLower(raw.SeasonType), game)
	}

	return games, nil
}

// teamGamesScan walks every week of the season looking for the team.
// Slow and chatty, but works for any season the service still lists.
func (s *Service) teamGamesScan(ctx context.Context, team, season string) (*SeasonGames, error) {
	weeks, err := s.Weeks(ctx, season)
	if err != nil {
		return nil, err
	}

	games := &SeasonGames{}
	for _, phase := range weeks.phases() {
		for _, week := range phase.Weeks {
			weekGames, err := s.WeekGames(ctx, season, phase.Name, week.Number)
			if err != nil {
				continue
			}
			for _, game := range weekGames {
				if strings.Contains(game.Name, team) {
					games.add(phase.Name, game)
				}
			}
		}
	}

	return games, nil
}
