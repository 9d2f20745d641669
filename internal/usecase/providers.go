package usecase

import (
	"context"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/odds"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
)

// ExternalGame is a schedule row as a provider reports it, before
// reconciliation against the stored record.
type ExternalGame struct {
	SourceGameKey string
	LeagueCode    string
	Season        int
	SeasonType    string
	HomeTeam      string
	AwayTeam      string
	HomeScore     *int
	AwayScore     *int
	Venue         string
	Status        game.Status
	StartTime     time.Time
	EndedAt       *time.Time
}

// ExternalPlay is a provider play-by-play entry with the clock already
// normalized to display form.
type ExternalPlay struct {
	Period      int
	Sequence    int
	Clock       string
	Description string
	PlayType    string
	Team        string
}

// LiveSnapshot is one live-feed poll result: the plays seen so far plus the
// provider's current view of the game status.
type LiveSnapshot struct {
	Plays   []ExternalPlay
	Status  game.Status
	EndedAt *time.Time
}

// CollectedPost is a raw social post from a source adapter, before
// classification assigns a reveal level.
type CollectedPost struct {
	ExternalID string
	Text       string
	PostedAt   time.Time
	MediaURL   string
	MediaType  string
	HasVideo   bool
}

func externalPlaysToEvents(gameID int64, plays []ExternalPlay) []pbp.Event {
	out := make([]pbp.Event, 0, len(plays))
	for _, play := range plays {
		out = append(out, pbp.Event{
			GameID:      gameID,
			Period:      play.Period,
			Sequence:    play.Sequence,
			Clock:       play.Clock,
			Description: play.Description,
			PlayType:    play.PlayType,
			Team:        play.Team,
		})
	}
	return out
}

type ScheduleProvider interface {
	FetchSchedule(ctx context.Context, leagueCode string, from, to time.Time) ([]ExternalGame, error)
}

type LiveFeedProvider interface {
	FetchLive(ctx context.Context, sourceGameKey string) (LiveSnapshot, error)
}

// BackfillProvider serves authoritative post-game play-by-play. It is never
// consulted while a game is in progress.
type BackfillProvider interface {
	FetchFinalPBP(ctx context.Context, sourceGameKey string) ([]ExternalPlay, error)
}

// SocialSource fetches an account's posts inside a window. Implementations
// return a *RateLimitedError on provider throttling so the collector can back
// the whole platform off.
type SocialSource interface {
	Platform() string
	CollectPosts(ctx context.Context, handle string, windowStart, windowEnd time.Time) ([]CollectedPost, error)
}

type OddsProvider interface {
	FetchOdds(ctx context.Context, sourceGameKey string) ([]odds.Snapshot, error)
}

// LeagueCapability describes how much of the ingestion pipeline a league
// participates in.
type LeagueCapability string

const (
	// CapabilityLive runs schedule sync, live polling, and backfill.
	CapabilityLive LeagueCapability = "live"
	// CapabilityBestEffort runs schedule sync and live polling but treats
	// provider failures as routine and skips the game quietly.
	CapabilityBestEffort LeagueCapability = "best_effort"
	// CapabilityBackfillOnly never polls live; play-by-play arrives only
	// through post-game validation.
	CapabilityBackfillOnly LeagueCapability = "backfill_only"
)

type LeagueConfig struct {
	Code       string
	Capability LeagueCapability
}

// DefaultLeagues is the supported league set and its pipeline tiers.
func DefaultLeagues() []LeagueConfig {
	return []LeagueConfig{
		{Code: "NBA", Capability: CapabilityLive},
		{Code: "NFL", Capability: CapabilityBestEffort},
		{Code: "NCAAB", Capability: CapabilityBackfillOnly},
	}
}
