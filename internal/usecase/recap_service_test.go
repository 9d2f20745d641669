package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/cache"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

func newRecapFixture(t *testing.T) (*RecapService, *memory.GameRepository, *memory.PBPRepository) {
	t.Helper()
	games := memory.NewGameRepository()
	events := memory.NewPBPRepository()
	svc := NewRecapService(games, events, cache.NewStore(time.Minute), logging.NewNop())
	return svc, games, events
}

func seedFinalGame(games *memory.GameRepository) int64 {
	home, away := 112, 104
	ended := time.Date(2026, 1, 9, 22, 0, 0, 0, time.UTC)
	return games.Seed(game.Game{
		LeagueCode: "NBA",
		Season:     2025,
		HomeTeam:   "BOS",
		AwayTeam:   "LAL",
		HomeScore:  &home,
		AwayScore:  &away,
		Status:     game.StatusFinal,
		StartTime:  ended.Add(-3 * time.Hour),
		EndTime:    &ended,
	})
}

func TestAvailabilityRequiresStoredPBP(t *testing.T) {
	svc, games, events := newRecapFixture(t)
	id := seedFinalGame(games)

	got, err := svc.Availability(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, recapReasonPBPMissing, got.Reason)

	require.NoError(t, events.UpsertEvents(context.Background(), []pbp.Event{
		{GameID: id, Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
	}))

	got, err = svc.Availability(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Empty(t, got.Reason)
}

func TestAvailabilityUnknownGame(t *testing.T) {
	svc, _, _ := newRecapFixture(t)
	_, err := svc.Availability(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryWithoutPBPIsUnavailableNotError(t *testing.T) {
	svc, games, _ := newRecapFixture(t)
	id := seedFinalGame(games)

	got, err := svc.Summary(context.Background(), id, social.RevealPost)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Equal(t, recapReasonPBPMissing, got.Reason)
	assert.Nil(t, got.HomeScore)
}

func TestSummaryPreLevelHidesOutcome(t *testing.T) {
	svc, games, events := newRecapFixture(t)
	id := seedFinalGame(games)

	require.NoError(t, events.UpsertEvents(context.Background(), []pbp.Event{
		{GameID: id, Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
		{GameID: id, Period: 2, Sequence: 201, Clock: "9:15", Description: "Three pointer"},
	}))

	got, err := svc.Summary(context.Background(), id, social.RevealPre)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, 2, got.Periods)
	assert.Equal(t, 2, got.EventCount)
	assert.Equal(t, "LAL at BOS", got.Headline)
	assert.Nil(t, got.HomeScore)
	assert.Nil(t, got.AwayScore)
}

func TestSummaryPostLevelShowsFinalScore(t *testing.T) {
	svc, games, events := newRecapFixture(t)
	id := seedFinalGame(games)

	require.NoError(t, events.UpsertEvents(context.Background(), []pbp.Event{
		{GameID: id, Period: 4, Sequence: 512, Clock: "0:00", Description: "End of game"},
	}))

	got, err := svc.Summary(context.Background(), id, social.RevealPost)
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.Equal(t, "Final: LAL 104, BOS 112", got.Headline)
	require.NotNil(t, got.HomeScore)
	assert.Equal(t, 112, *got.HomeScore)
}

func TestSummaryRejectsUnknownLevel(t *testing.T) {
	svc, games, _ := newRecapFixture(t)
	id := seedFinalGame(games)

	_, err := svc.Summary(context.Background(), id, social.RevealLevel("spoilers"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
