package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/odds"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type fakeOddsProvider struct {
	fn func(sourceGameKey string) ([]odds.Snapshot, error)
}

func (f *fakeOddsProvider) FetchOdds(_ context.Context, sourceGameKey string) ([]odds.Snapshot, error) {
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(sourceGameKey)
}

func TestSyncOddsCapturesUpcomingGames(t *testing.T) {
	games := memory.NewGameRepository()
	snapshots := memory.NewOddsRepository()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	total := 224.5
	provider := &fakeOddsProvider{fn: func(key string) ([]odds.Snapshot, error) {
		return []odds.Snapshot{{Book: "draftkings", MarketType: "total", Total: &total}}, nil
	}}

	svc := NewOddsSyncService(provider, games, snapshots, logging.NewNop())
	svc.now = func() time.Time { return now }

	upcoming := games.Seed(game.Game{
		LeagueCode:    "NBA",
		Season:        2025,
		HomeTeam:      "BOS",
		AwayTeam:      "LAL",
		Status:        game.StatusScheduled,
		StartTime:     now.Add(7 * time.Hour),
		SourceGameKey: "0022500123",
	})
	games.Seed(game.Game{
		LeagueCode:    "NBA",
		Season:        2025,
		HomeTeam:      "MIA",
		AwayTeam:      "NYK",
		Status:        game.StatusFinal,
		StartTime:     now.Add(-3 * time.Hour),
		SourceGameKey: "0022500122",
	})

	result, err := svc.SyncOdds(context.Background())
	require.NoError(t, err)

	// Terminal games are not polled.
	assert.Equal(t, 1, result.GamesPolled)
	assert.Equal(t, 1, result.Snapshots)

	stored, err := snapshots.ListByGame(context.Background(), upcoming)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "draftkings", stored[0].Book)
	assert.Equal(t, now, stored[0].CapturedAt)
}

func TestSyncOddsRepeatCaptureIsAppendOnly(t *testing.T) {
	games := memory.NewGameRepository()
	snapshots := memory.NewOddsRepository()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	captured := now.Add(-time.Hour)
	provider := &fakeOddsProvider{fn: func(string) ([]odds.Snapshot, error) {
		return []odds.Snapshot{{Book: "draftkings", MarketType: "spread", CapturedAt: captured}}, nil
	}}

	svc := NewOddsSyncService(provider, games, snapshots, logging.NewNop())
	svc.now = func() time.Time { return now }

	id := games.Seed(game.Game{
		LeagueCode:    "NBA",
		Season:        2025,
		HomeTeam:      "BOS",
		AwayTeam:      "LAL",
		Status:        game.StatusScheduled,
		StartTime:     now.Add(2 * time.Hour),
		SourceGameKey: "0022500123",
	})

	_, err := svc.SyncOdds(context.Background())
	require.NoError(t, err)
	_, err = svc.SyncOdds(context.Background())
	require.NoError(t, err)

	stored, err := snapshots.ListByGame(context.Background(), id)
	require.NoError(t, err)
	// Same (book, market, captured_at) collapses to one row.
	assert.Len(t, stored, 1)
}
