package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/cache"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

func newGameFixture(t *testing.T) (*GameService, *memory.GameRepository, *memory.PBPRepository) {
	t.Helper()
	games := memory.NewGameRepository()
	events := memory.NewPBPRepository()
	svc := NewGameService(games, events, cache.NewStore(time.Minute), logging.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return svc, games, events
}

func TestListByRangeWindows(t *testing.T) {
	svc, games, _ := newGameFixture(t)
	now := svc.now()

	yesterday := games.Seed(game.Game{
		LeagueCode: "NBA", Season: 2025, HomeTeam: "BOS", AwayTeam: "LAL",
		Status: game.StatusFinal, StartTime: now.Add(-20 * time.Hour),
	})
	tonight := games.Seed(game.Game{
		LeagueCode: "NBA", Season: 2025, HomeTeam: "MIA", AwayTeam: "NYK",
		Status: game.StatusScheduled, StartTime: now.Add(8 * time.Hour),
	})
	games.Seed(game.Game{
		LeagueCode: "NBA", Season: 2025, HomeTeam: "DEN", AwayTeam: "PHX",
		Status: game.StatusFinal, StartTime: now.Add(-80 * time.Hour),
	})

	last2, err := svc.ListByRange(context.Background(), game.RangeLast2)
	require.NoError(t, err)
	require.Len(t, last2, 1)
	assert.Equal(t, yesterday, last2[0].ID)

	next24, err := svc.ListByRange(context.Background(), game.RangeNext24)
	require.NoError(t, err)
	require.Len(t, next24, 1)
	assert.Equal(t, tonight, next24[0].ID)

	current, err := svc.ListByRange(context.Background(), game.RangeCurrent)
	require.NoError(t, err)
	assert.Len(t, current, 1)
}

func TestListByRangeRejectsUnknownRange(t *testing.T) {
	svc, _, _ := newGameFixture(t)
	_, err := svc.ListByRange(context.Background(), game.Range("lastweek"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetByIDUnknownGame(t *testing.T) {
	svc, _, _ := newGameFixture(t)
	_, err := svc.GetByID(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetPBPGroupsByPeriod(t *testing.T) {
	svc, games, events := newGameFixture(t)
	id := games.Seed(game.Game{
		LeagueCode: "NBA", Season: 2025, HomeTeam: "BOS", AwayTeam: "LAL",
		Status: game.StatusLive, StartTime: svc.now().Add(-time.Hour),
	})

	require.NoError(t, events.UpsertEvents(context.Background(), []pbp.Event{
		{GameID: id, Period: 2, Sequence: 201, Clock: "9:15", Description: "Three pointer"},
		{GameID: id, Period: 1, Sequence: 2, Clock: "11:32", Description: "Made layup"},
		{GameID: id, Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
	}))

	periods, err := svc.GetPBP(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, 1, periods[0].Number)
	require.Len(t, periods[0].Events, 2)
	assert.Equal(t, 1, periods[0].Events[0].Sequence)
	assert.Equal(t, 2, periods[1].Number)
}

func TestGetPBPEmptyForKnownGame(t *testing.T) {
	svc, games, _ := newGameFixture(t)
	id := games.Seed(game.Game{
		LeagueCode: "NBA", Season: 2025, HomeTeam: "BOS", AwayTeam: "LAL",
		Status: game.StatusScheduled, StartTime: svc.now(),
	})

	periods, err := svc.GetPBP(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, periods)
}
