package data

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gamepass-go/pkg/dates"
)

// Shows returns the network program catalog, sorted by title.
func (s *Service) Shows(ctx context.Context) ([]Show, error) {
	var payload struct {
		Modules struct {
			Programs []struct {
				Title       string `json:"title"`
				Slug        string `json:"slug"`
				Description string `json:"description"`
				Thumbnail   *struct {
					ThumbnailURL string `json:"thumbnailUrl"`
				} `json:"thumbnail"`
			} `json:"programs"`
		} `json:"modules"`
	}

	if err := s.getJSON(ctx, s.endpoints.Modules.API.NetworkPrograms, &payload); err != nil {
		return nil, fmt.Errorf("shows: %w", err)
	}
	if len(payload.Modules.Programs) == 0 {
		return nil, fmt.Errorf("shows: could not parse the network shows list")
	}

	var shows []Show
	for _, program := range payload.Modules.Programs {
		if program.Title == "" || program.Slug == "" {
			s.log.Warn("shows: invalid record; skipping")
			continue
		}

		show := Show{
			Name:        program.Title,
			Slug:        program.Slug,
			Description: program.Description,
		}
		if program.Thumbnail != nil {
			show.Logo = program.Thumbnail.ThumbnailURL
		} else {
			s.log.Warn("shows: cannot find logo", "show", program.Title)
		}

		shows = append(shows, show)
	}

	sort.Slice(shows, func(i, j int) bool { return shows[i].Name < shows[j].Name })
	return shows, nil
}

// ShowSeasons returns the seasons a show has episodes for, most recent
// first. The archive's own season field is unreliable, so each episode
// is inspected: a usable season slug wins, otherwise the schedule date
// decides (a February-or-later broadcast belongs to that year's
// season, January to the previous one).
func (s *Service) ShowSeasons(ctx context.Context, showSlug string) ([]string, error) {
	url := s.endpoints.Modules.API.NetworkEpisodes
	url = strings.ReplaceAll(url, ":seasonSlug/", "")
	url = strings.ReplaceAll(url, ":tvShowSlug", showSlug)

	var payload struct {
		Modules struct {
			Archive struct {
				Content []struct {
					Season       string `json:"season"`
					ScheduleDate string `json:"scheduleDate"`
				} `json:"content"`
			} `json:"archive"`
		} `json:"modules"`
	}

	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("show seasons: %w", err)
	}
	if payload.Modules.Archive.Content == nil {
		return nil, fmt.Errorf("show seasons: server response is invalid")
	}

	seen := map[string]bool{}
	var seasons []string
	for _, episode := range payload.Modules.Archive.Content {
		season, ok := episodeSeason(episode.Season, episode.ScheduleDate)
		if !ok {
			s.log.Info("show seasons: cannot find episode season info; skipping")
			continue
		}
		if !seen[season] {
			seen[season] = true
			seasons = append(seasons, season)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(seasons)))
	return seasons, nil
}

func episodeSeason(seasonSlug, scheduleDate string) (string, bool) {
	slug := strings.TrimPrefix(seasonSlug, "season-")
	if year, err := strconv.Atoi(slug); err == nil {
		return strconv.Itoa(year), true
	}

	dt, err := dates.Parse(scheduleDate)
	if err != nil {
		return "", false
	}
	if dt.Month() >= time.February {
		return strconv.Itoa(dt.Year()), true
	}
	return strconv.Itoa(dt.Year() - 1), true
}
