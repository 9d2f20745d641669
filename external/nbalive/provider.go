package nbalive

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/usecase"
)

const leagueCodeNBA = "NBA"

type scheduleEnvelope struct {
	LeagueSchedule struct {
		SeasonYear string `json:"seasonYear"`
		GameDates  []struct {
			GameDate string             `json:"gameDate"`
			Games    []scheduleGameItem `json:"games"`
		} `json:"gameDates"`
	} `json:"leagueSchedule"`
}

type scheduleGameItem struct {
	GameID          string `json:"gameId"`
	GameStatus      int    `json:"gameStatus"`
	GameDateTimeUTC string `json:"gameDateTimeUTC"`
	GameEndTimeUTC  string `json:"gameEndTimeUTC"`
	ArenaName       string `json:"arenaName"`
	WeekNumber      int    `json:"weekNumber"`
	HomeTeam        struct {
		TeamTricode string `json:"teamTricode"`
		Score       *int   `json:"score"`
	} `json:"homeTeam"`
	AwayTeam struct {
		TeamTricode string `json:"teamTricode"`
		Score       *int   `json:"score"`
	} `json:"awayTeam"`
}

type playByPlayEnvelope struct {
	Game struct {
		GameID         string `json:"gameId"`
		GameStatus     int    `json:"gameStatus"`
		GameEndTimeUTC string `json:"gameEndTimeUTC"`
		Actions        []struct {
			ActionNumber int    `json:"actionNumber"`
			Period       int    `json:"period"`
			Clock        string `json:"clock"`
			Description  string `json:"description"`
			ActionType   string `json:"actionType"`
			TeamTricode  string `json:"teamTricode"`
		} `json:"actions"`
	} `json:"game"`
}

// FetchSchedule reads the league schedule document and returns the games
// starting inside [from, to).
func (c *Client) FetchSchedule(ctx context.Context, leagueCode string, from, to time.Time) ([]usecase.ExternalGame, error) {
	if !strings.EqualFold(leagueCode, leagueCodeNBA) {
		return nil, fmt.Errorf("%w: nba live feed serves league NBA, got %q", usecase.ErrInvalidInput, leagueCode)
	}

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, "/schedule/scheduleLeagueV2.json", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch nba schedule: %w", err)
	}

	season := parseSeasonYear(envelope.LeagueSchedule.SeasonYear)
	out := make([]usecase.ExternalGame, 0, 64)
	for _, date := range envelope.LeagueSchedule.GameDates {
		for _, item := range date.Games {
			startTime, err := time.Parse(time.RFC3339, item.GameDateTimeUTC)
			if err != nil {
				c.logger.WarnContext(ctx, "skip schedule row with bad start time",
					"game_id", item.GameID,
					"value", item.GameDateTimeUTC,
				)
				continue
			}
			if startTime.Before(from) || !startTime.Before(to) {
				continue
			}

			out = append(out, usecase.ExternalGame{
				SourceGameKey: item.GameID,
				LeagueCode:    leagueCodeNBA,
				Season:        season,
				SeasonType:    "regular",
				HomeTeam:      item.HomeTeam.TeamTricode,
				AwayTeam:      item.AwayTeam.TeamTricode,
				HomeScore:     item.HomeTeam.Score,
				AwayScore:     item.AwayTeam.Score,
				Venue:         item.ArenaName,
				Status:        mapGameStatus(item.GameStatus),
				StartTime:     startTime.UTC(),
				EndedAt:       parseOptionalTime(item.GameEndTimeUTC),
			})
		}
	}

	return out, nil
}

// FetchLive reads the play-by-play document for one game.
func (c *Client) FetchLive(ctx context.Context, sourceGameKey string) (usecase.LiveSnapshot, error) {
	key := strings.TrimSpace(sourceGameKey)
	if key == "" {
		return usecase.LiveSnapshot{}, fmt.Errorf("%w: source game key is required", usecase.ErrInvalidInput)
	}

	var envelope playByPlayEnvelope
	path := fmt.Sprintf("/playbyplay/playbyplay_%s.json", key)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.LiveSnapshot{}, fmt.Errorf("fetch nba play-by-play: %w", err)
	}

	plays := make([]usecase.ExternalPlay, 0, len(envelope.Game.Actions))
	for _, action := range envelope.Game.Actions {
		plays = append(plays, usecase.ExternalPlay{
			Period:      action.Period,
			Sequence:    action.ActionNumber,
			Clock:       normalizeClock(action.Clock),
			Description: action.Description,
			PlayType:    action.ActionType,
			Team:        action.TeamTricode,
		})
	}

	return usecase.LiveSnapshot{
		Plays:   plays,
		Status:  mapGameStatus(envelope.Game.GameStatus),
		EndedAt: parseOptionalTime(envelope.Game.GameEndTimeUTC),
	}, nil
}

func mapGameStatus(code int) game.Status {
	switch code {
	case 1:
		return game.StatusScheduled
	case 2:
		return game.StatusLive
	case 3:
		return game.StatusFinal
	default:
		return ""
	}
}

var iso8601ClockRegex = regexp.MustCompile(`^PT(\d+)M(\d+)(?:\.\d+)?S$`)

// normalizeClock converts the feed's ISO-8601 duration ("PT11M32.00S") into
// display form ("11:32"). Unrecognized values pass through untouched.
func normalizeClock(raw string) string {
	raw = strings.TrimSpace(raw)
	match := iso8601ClockRegex.FindStringSubmatch(raw)
	if match == nil {
		return raw
	}
	minutes, _ := strconv.Atoi(match[1])
	seconds, _ := strconv.Atoi(match[2])
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// parseSeasonYear extracts the opening year from "2025-26".
func parseSeasonYear(raw string) int {
	head := strings.SplitN(strings.TrimSpace(raw), "-", 2)[0]
	season, _ := strconv.Atoi(head)
	return season
}

func parseOptionalTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
