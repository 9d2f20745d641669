package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

func newStatusFixture(t *testing.T, status game.Status) (*StatusSyncService, *memory.GameRepository, *memory.PBPRepository, int64) {
	t.Helper()

	games := memory.NewGameRepository()
	events := memory.NewPBPRepository()
	id := games.Seed(game.Game{
		LeagueCode: "NBA",
		Season:     2025,
		HomeTeam:   "BOS",
		AwayTeam:   "LAL",
		Status:     status,
		StartTime:  time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	})

	svc := NewStatusSyncService(games, events, logging.NewNop())
	return svc, games, events, id
}

func TestApplyPBPPromotesScheduledToLive(t *testing.T) {
	svc, games, _, id := newStatusFixture(t, game.StatusScheduled)

	err := svc.ApplyPBP(context.Background(), id, []pbp.Event{
		{Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
	})
	require.NoError(t, err)

	stored, found, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, game.StatusLive, stored.Status)
	assert.True(t, stored.HasPBP)
}

func TestApplyPBPKeepsFinalStatus(t *testing.T) {
	svc, games, events, id := newStatusFixture(t, game.StatusFinal)

	err := svc.ApplyPBP(context.Background(), id, []pbp.Event{
		{Period: 4, Sequence: 512, Clock: "0:00", Description: "End of game"},
	})
	require.NoError(t, err)

	stored, _, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinal, stored.Status)

	count, err := events.CountByGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyPBPIsIdempotent(t *testing.T) {
	svc, _, events, id := newStatusFixture(t, game.StatusLive)

	batch := []pbp.Event{
		{Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
		{Period: 1, Sequence: 2, Clock: "11:32", Description: "Made layup"},
	}
	require.NoError(t, svc.ApplyPBP(context.Background(), id, batch))
	require.NoError(t, svc.ApplyPBP(context.Background(), id, batch))

	count, err := events.CountByGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestApplyPBPUnknownGame(t *testing.T) {
	svc, _, _, _ := newStatusFixture(t, game.StatusScheduled)

	err := svc.ApplyPBP(context.Background(), 9999, []pbp.Event{{Period: 1, Sequence: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyStatusSignalSetsEndTimeOnce(t *testing.T) {
	svc, games, _, id := newStatusFixture(t, game.StatusLive)

	firstEnd := time.Date(2026, 1, 10, 3, 0, 0, 0, time.UTC)
	require.NoError(t, svc.ApplyStatusSignal(context.Background(), id, game.StatusFinal, &firstEnd))

	stored, _, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, firstEnd, *stored.EndTime)

	// A repeated final signal is a no-op, not a violation.
	laterEnd := firstEnd.Add(time.Hour)
	require.NoError(t, svc.ApplyStatusSignal(context.Background(), id, game.StatusFinal, &laterEnd))

	stored, _, err = games.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, firstEnd, *stored.EndTime)
}

func TestApplyStatusSignalRejectsRegression(t *testing.T) {
	tests := []struct {
		name     string
		current  game.Status
		incoming game.Status
	}{
		{name: "live to scheduled", current: game.StatusLive, incoming: game.StatusScheduled},
		{name: "final to live", current: game.StatusFinal, incoming: game.StatusLive},
		{name: "canceled to scheduled", current: game.StatusCanceled, incoming: game.StatusScheduled},
		{name: "postponed to scheduled", current: game.StatusPostponed, incoming: game.StatusScheduled},
		{name: "postponed to live", current: game.StatusPostponed, incoming: game.StatusLive},
		{name: "postponed to final", current: game.StatusPostponed, incoming: game.StatusFinal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, games, _, id := newStatusFixture(t, tc.current)

			err := svc.ApplyStatusSignal(context.Background(), id, tc.incoming, nil)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			stored, _, err := games.GetByID(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tc.current, stored.Status)
		})
	}
}

func TestApplyPBPRejectsPostponedGame(t *testing.T) {
	svc, games, events, id := newStatusFixture(t, game.StatusPostponed)

	err := svc.ApplyPBP(context.Background(), id, []pbp.Event{
		{Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, _, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusPostponed, stored.Status)
	assert.False(t, stored.HasPBP)

	count, err := events.CountByGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFinalSignalRacingLatePBPStaysFinal(t *testing.T) {
	svc, games, events, id := newStatusFixture(t, game.StatusLive)

	end := time.Date(2026, 1, 10, 3, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = svc.ApplyStatusSignal(context.Background(), id, game.StatusFinal, &end)
	}()
	go func() {
		defer wg.Done()
		_ = svc.ApplyPBP(context.Background(), id, []pbp.Event{
			{Period: 4, Sequence: 512, Clock: "0:00", Description: "End of game"},
		})
	}()
	wg.Wait()

	stored, _, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinal, stored.Status)
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, end, *stored.EndTime)

	// The late events still land either way.
	count, err := events.CountByGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyStatusSignalRejectsUnknownStatus(t *testing.T) {
	svc, _, _, id := newStatusFixture(t, game.StatusScheduled)

	err := svc.ApplyStatusSignal(context.Background(), id, game.Status("halftime"), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
