package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type ScheduleSyncResult struct {
	Leagues       int `json:"leagues"`
	GamesSeen     int `json:"gamesSeen"`
	GamesUpserted int `json:"gamesUpserted"`
	StatusSignals int `json:"statusSignals"`
	Rejected      int `json:"rejected"`
	Errors        int `json:"errors"`
}

type LiveSyncResult struct {
	GamesPolled   int `json:"gamesPolled"`
	EventsApplied int `json:"eventsApplied"`
	Finals        int `json:"finals"`
	Skipped       int `json:"skipped"`
	Errors        int `json:"errors"`
}

// ScheduleSyncService reconciles provider schedules and live feeds into the
// stored game set. Identity fields flow through the schedule upsert; status
// and end_time go through the status synchronizer only.
type ScheduleSyncService struct {
	schedule ScheduleProvider
	live     LiveFeedProvider
	games    game.Repository
	status   *StatusSyncService
	leagues  []LeagueConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewScheduleSyncService(
	schedule ScheduleProvider,
	live LiveFeedProvider,
	games game.Repository,
	status *StatusSyncService,
	leagues []LeagueConfig,
	logger *logging.Logger,
) *ScheduleSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if len(leagues) == 0 {
		leagues = DefaultLeagues()
	}
	return &ScheduleSyncService{
		schedule: schedule,
		live:     live,
		games:    games,
		status:   status,
		leagues:  leagues,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncSchedule pulls every league's schedule for [from, to) and reconciles
// it. A league failing wholesale is counted and skipped; the other leagues
// still sync.
func (s *ScheduleSyncService) SyncSchedule(ctx context.Context, from, to time.Time) (ScheduleSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleSyncService.SyncSchedule")
	defer span.End()

	var result ScheduleSyncResult
	if !to.After(from) {
		return result, errors.Wrap(ErrInvalidInput, "schedule window is empty")
	}

	for _, league := range s.leagues {
		result.Leagues++

		items, err := s.schedule.FetchSchedule(ctx, league.Code, from, to)
		if err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "schedule fetch failed",
				"league", league.Code,
				"error", err,
			)
			continue
		}
		result.GamesSeen += len(items)

		for _, item := range items {
			id, err := s.games.UpsertSchedule(ctx, game.Game{
				LeagueCode:    item.LeagueCode,
				Season:        item.Season,
				SeasonType:    item.SeasonType,
				HomeTeam:      item.HomeTeam,
				AwayTeam:      item.AwayTeam,
				HomeScore:     item.HomeScore,
				AwayScore:     item.AwayScore,
				Venue:         item.Venue,
				Status:        game.StatusScheduled,
				StartTime:     item.StartTime,
				SourceGameKey: item.SourceGameKey,
			})
			if err != nil {
				result.Errors++
				s.logger.WarnContext(ctx, "schedule upsert failed",
					"league", league.Code,
					"source_game_key", item.SourceGameKey,
					"error", err,
				)
				continue
			}
			result.GamesUpserted++

			if item.Status == "" || item.Status == game.StatusScheduled {
				continue
			}
			result.StatusSignals++
			err = s.status.ApplyStatusSignal(ctx, id, item.Status, item.EndedAt)
			switch {
			case err == nil:
			case errors.Is(err, ErrInvalidTransition):
				// Already logged with context by the synchronizer.
				result.Rejected++
			default:
				result.Errors++
				s.logger.WarnContext(ctx, "status signal failed",
					"game_id", id,
					"error", err,
				)
			}
		}
	}

	return result, nil
}

// SyncLive polls the live feed for every in-window game of a live-capable
// league. Best-effort leagues downgrade fetch failures to debug logs.
func (s *ScheduleSyncService) SyncLive(ctx context.Context) (LiveSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "ScheduleSyncService.SyncLive")
	defer span.End()

	var result LiveSyncResult

	now := s.now().UTC()
	candidates, err := s.games.ListByWindow(ctx, now.Add(-12*time.Hour), now.Add(time.Hour))
	if err != nil {
		return result, errors.Wrap(err, "list candidate games")
	}

	capability := make(map[string]LeagueCapability, len(s.leagues))
	for _, league := range s.leagues {
		capability[league.Code] = league.Capability
	}

	for _, g := range candidates {
		tier, ok := capability[g.LeagueCode]
		if !ok || tier == CapabilityBackfillOnly {
			result.Skipped++
			continue
		}
		if game.IsTerminal(g.Status) || g.Status == game.StatusPostponed {
			result.Skipped++
			continue
		}
		if g.Status == game.StatusScheduled && g.StartTime.After(now) {
			result.Skipped++
			continue
		}

		result.GamesPolled++
		snapshot, err := s.live.FetchLive(ctx, g.SourceGameKey)
		if err != nil {
			if tier == CapabilityBestEffort {
				result.Skipped++
				s.logger.DebugContext(ctx, "best-effort live fetch skipped",
					"game_id", g.ID,
					"league", g.LeagueCode,
					"error", err,
				)
				continue
			}
			result.Errors++
			s.logger.WarnContext(ctx, "live fetch failed",
				"game_id", g.ID,
				"league", g.LeagueCode,
				"error", err,
			)
			continue
		}

		if len(snapshot.Plays) > 0 {
			events := externalPlaysToEvents(g.ID, snapshot.Plays)
			if err := s.status.ApplyPBP(ctx, g.ID, events); err != nil {
				result.Errors++
				s.logger.WarnContext(ctx, "apply live pbp failed",
					"game_id", g.ID,
					"error", err,
				)
				continue
			}
			result.EventsApplied += len(events)
		}

		if snapshot.Status != "" && snapshot.Status != g.Status {
			err := s.status.ApplyStatusSignal(ctx, g.ID, snapshot.Status, snapshot.EndedAt)
			switch {
			case err == nil:
				if snapshot.Status == game.StatusFinal {
					result.Finals++
				}
			case errors.Is(err, ErrInvalidTransition):
			default:
				result.Errors++
			}
		}
	}

	return result, nil
}
