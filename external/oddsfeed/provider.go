package oddsfeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/odds"
	"github.com/scorewatch/scorewatch/internal/usecase"
)

type oddsEnvelope struct {
	GameKey    string `json:"game_key"`
	Bookmakers []struct {
		Key        string `json:"key"`
		LastUpdate string `json:"last_update"`
		Markets    []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Price *float64 `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchOdds captures the current quotes for one game across books. The game
// id is filled in by the caller; this adapter only knows the provider key.
func (c *Client) FetchOdds(ctx context.Context, sourceGameKey string) ([]odds.Snapshot, error) {
	key := strings.TrimSpace(sourceGameKey)
	if key == "" {
		return nil, fmt.Errorf("%w: source game key is required", usecase.ErrInvalidInput)
	}

	var envelope oddsEnvelope
	path := "/sports/events/" + key + "/odds"
	query := map[string]string{
		"regions": "us",
		"markets": "spreads,totals",
	}
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch odds: %w", err)
	}

	out := make([]odds.Snapshot, 0, len(envelope.Bookmakers))
	for _, book := range envelope.Bookmakers {
		capturedAt := parseCaptureTime(book.LastUpdate)
		for _, market := range book.Markets {
			snapshot := odds.Snapshot{
				Book:       book.Key,
				MarketType: market.Key,
				CapturedAt: capturedAt,
			}
			for _, outcome := range market.Outcomes {
				switch {
				case market.Key == "totals":
					snapshot.Total = outcome.Point
				case strings.EqualFold(outcome.Name, "home"):
					snapshot.HomeLine = outcome.Point
				case strings.EqualFold(outcome.Name, "away"):
					snapshot.AwayLine = outcome.Point
				}
			}
			out = append(out, snapshot)
		}
	}

	return out, nil
}

func parseCaptureTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}
