package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type fakeScheduleProvider struct {
	fn func(leagueCode string) ([]ExternalGame, error)
}

func (f *fakeScheduleProvider) FetchSchedule(_ context.Context, leagueCode string, _, _ time.Time) ([]ExternalGame, error) {
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(leagueCode)
}

type fakeLiveProvider struct {
	calls map[string]int
	fn    func(sourceGameKey string) (LiveSnapshot, error)
}

func (f *fakeLiveProvider) FetchLive(_ context.Context, sourceGameKey string) (LiveSnapshot, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[sourceGameKey]++
	if f.fn == nil {
		return LiveSnapshot{}, nil
	}
	return f.fn(sourceGameKey)
}

func newScheduleFixture(schedule *fakeScheduleProvider, live *fakeLiveProvider) (*ScheduleSyncService, *memory.GameRepository, *memory.PBPRepository) {
	games := memory.NewGameRepository()
	events := memory.NewPBPRepository()
	status := NewStatusSyncService(games, events, logging.NewNop())
	svc := NewScheduleSyncService(schedule, live, games, status, nil, logging.NewNop())
	return svc, games, events
}

func TestSyncScheduleUpsertsAndAppliesFinals(t *testing.T) {
	start := time.Date(2026, 1, 9, 19, 0, 0, 0, time.UTC)
	ended := start.Add(3 * time.Hour)
	home, away := 112, 104

	schedule := &fakeScheduleProvider{fn: func(leagueCode string) ([]ExternalGame, error) {
		if leagueCode != "NBA" {
			return nil, nil
		}
		return []ExternalGame{
			{
				SourceGameKey: "0022500123",
				LeagueCode:    "NBA",
				Season:        2025,
				SeasonType:    "regular",
				HomeTeam:      "BOS",
				AwayTeam:      "LAL",
				HomeScore:     &home,
				AwayScore:     &away,
				Status:        game.StatusFinal,
				StartTime:     start,
				EndedAt:       &ended,
			},
			{
				SourceGameKey: "0022500124",
				LeagueCode:    "NBA",
				Season:        2025,
				SeasonType:    "regular",
				HomeTeam:      "MIA",
				AwayTeam:      "NYK",
				Status:        game.StatusScheduled,
				StartTime:     start.Add(24 * time.Hour),
			},
		}, nil
	}}

	svc, games, _ := newScheduleFixture(schedule, &fakeLiveProvider{})

	result, err := svc.SyncSchedule(context.Background(), start.Add(-time.Hour), start.Add(48*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Leagues)
	assert.Equal(t, 2, result.GamesSeen)
	assert.Equal(t, 2, result.GamesUpserted)
	assert.Equal(t, 1, result.StatusSignals)
	assert.Equal(t, 0, result.Errors)

	finished, found, err := games.FindByTeam(context.Background(), "NBA", "BOS", start.Add(-time.Hour), start.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, game.StatusFinal, finished.Status)
	require.NotNil(t, finished.EndTime)
	assert.Equal(t, ended, *finished.EndTime)
}

func TestSyncScheduleIsRerunSafe(t *testing.T) {
	start := time.Date(2026, 1, 9, 19, 0, 0, 0, time.UTC)
	schedule := &fakeScheduleProvider{fn: func(leagueCode string) ([]ExternalGame, error) {
		if leagueCode != "NBA" {
			return nil, nil
		}
		return []ExternalGame{{
			SourceGameKey: "0022500123",
			LeagueCode:    "NBA",
			Season:        2025,
			HomeTeam:      "BOS",
			AwayTeam:      "LAL",
			Status:        game.StatusScheduled,
			StartTime:     start,
		}}, nil
	}}

	svc, games, _ := newScheduleFixture(schedule, &fakeLiveProvider{})

	_, err := svc.SyncSchedule(context.Background(), start.Add(-time.Hour), start.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.SyncSchedule(context.Background(), start.Add(-time.Hour), start.Add(time.Hour))
	require.NoError(t, err)

	items, err := games.ListByWindow(context.Background(), start.Add(-time.Hour), start.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSyncScheduleContinuesPastFailingLeague(t *testing.T) {
	start := time.Date(2026, 1, 9, 19, 0, 0, 0, time.UTC)
	schedule := &fakeScheduleProvider{fn: func(leagueCode string) ([]ExternalGame, error) {
		if leagueCode == "NBA" {
			return nil, errors.New("provider down")
		}
		if leagueCode == "NFL" {
			return []ExternalGame{{
				SourceGameKey: "nfl-1",
				LeagueCode:    "NFL",
				Season:        2025,
				HomeTeam:      "NE",
				AwayTeam:      "BUF",
				Status:        game.StatusScheduled,
				StartTime:     start,
			}}, nil
		}
		return nil, nil
	}}

	svc, _, _ := newScheduleFixture(schedule, &fakeLiveProvider{})

	result, err := svc.SyncSchedule(context.Background(), start.Add(-time.Hour), start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.GamesUpserted)
}

func TestSyncLivePromotesAndFinalizes(t *testing.T) {
	svc, games, events := newScheduleFixture(&fakeScheduleProvider{}, nil)

	now := time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	id := games.Seed(game.Game{
		LeagueCode:    "NBA",
		Season:        2025,
		HomeTeam:      "BOS",
		AwayTeam:      "LAL",
		Status:        game.StatusScheduled,
		StartTime:     now.Add(-2 * time.Hour),
		SourceGameKey: "0022500123",
	})

	ended := now.Add(-5 * time.Minute)
	live := &fakeLiveProvider{fn: func(string) (LiveSnapshot, error) {
		return LiveSnapshot{
			Plays: []ExternalPlay{
				{Period: 1, Sequence: 1, Clock: "12:00", Description: "Jump ball"},
				{Period: 4, Sequence: 512, Clock: "0:00", Description: "End of game"},
			},
			Status:  game.StatusFinal,
			EndedAt: &ended,
		}, nil
	}}
	svc.live = live

	result, err := svc.SyncLive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.GamesPolled)
	assert.Equal(t, 2, result.EventsApplied)
	assert.Equal(t, 1, result.Finals)

	stored, _, err := games.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinal, stored.Status)
	assert.True(t, stored.HasPBP)

	count, err := events.CountByGame(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSyncLiveSkipsBackfillOnlyLeague(t *testing.T) {
	live := &fakeLiveProvider{}
	svc, games, _ := newScheduleFixture(&fakeScheduleProvider{}, live)

	now := time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	games.Seed(game.Game{
		LeagueCode:    "NCAAB",
		Season:        2025,
		HomeTeam:      "DUKE",
		AwayTeam:      "UNC",
		Status:        game.StatusScheduled,
		StartTime:     now.Add(-time.Hour),
		SourceGameKey: "ncaab-1",
	})

	result, err := svc.SyncLive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.GamesPolled)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, live.calls)
}

func TestSyncLiveBestEffortSwallowsFetchFailure(t *testing.T) {
	live := &fakeLiveProvider{fn: func(string) (LiveSnapshot, error) {
		return LiveSnapshot{}, errors.New("feed unavailable")
	}}
	svc, games, _ := newScheduleFixture(&fakeScheduleProvider{}, live)

	now := time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	games.Seed(game.Game{
		LeagueCode:    "NFL",
		Season:        2025,
		HomeTeam:      "NE",
		AwayTeam:      "BUF",
		Status:        game.StatusLive,
		StartTime:     now.Add(-time.Hour),
		SourceGameKey: "nfl-1",
	})

	result, err := svc.SyncLive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 1, result.Skipped)
}
