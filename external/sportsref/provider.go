package sportsref

import (
	"context"
	"fmt"
	"strings"

	"github.com/scorewatch/scorewatch/internal/usecase"
)

type pbpEnvelope struct {
	GameKey string `json:"game_key"`
	Plays   []struct {
		Period      int    `json:"period"`
		Sequence    int    `json:"sequence"`
		Clock       string `json:"clock"`
		Description string `json:"description"`
		PlayType    string `json:"play_type"`
		Team        string `json:"team"`
	} `json:"plays"`
}

// FetchFinalPBP downloads the archived play-by-play for a completed game.
func (c *Client) FetchFinalPBP(ctx context.Context, sourceGameKey string) ([]usecase.ExternalPlay, error) {
	key := strings.TrimSpace(sourceGameKey)
	if key == "" {
		return nil, fmt.Errorf("%w: source game key is required", usecase.ErrInvalidInput)
	}

	var envelope pbpEnvelope
	path := fmt.Sprintf("/api/pbp/%s.json", key)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch archived play-by-play: %w", err)
	}

	out := make([]usecase.ExternalPlay, 0, len(envelope.Plays))
	for _, play := range envelope.Plays {
		out = append(out, usecase.ExternalPlay{
			Period:      play.Period,
			Sequence:    play.Sequence,
			Clock:       play.Clock,
			Description: play.Description,
			PlayType:    play.PlayType,
			Team:        play.Team,
		})
	}
	return out, nil
}
