package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
	"github.com/scorewatch/scorewatch/internal/platform/resilience"
)

// StatusSyncService owns every game status transition. All writes to a
// game's status and end_time funnel through here under a per-game lock, so
// concurrent live polls and backfill runs cannot interleave a regression.
type StatusSyncService struct {
	games  game.Repository
	events pbp.Repository
	locks  *resilience.KeyedMutex
	logger *logging.Logger
	now    func() time.Time
}

func NewStatusSyncService(games game.Repository, events pbp.Repository, logger *logging.Logger) *StatusSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatusSyncService{
		games:  games,
		events: events,
		locks:  resilience.NewKeyedMutex(),
		logger: logger,
		now:    time.Now,
	}
}

func gameLockKey(id int64) string {
	return "game:" + strconv.FormatInt(id, 10)
}

// ApplyPBP appends play-by-play events and promotes a scheduled game to
// live. Events still land after the game is final; the terminal status is
// untouched. A postponed game accepts nothing: play data for it means the
// feed and the schedule disagree, so the batch is rejected whole.
func (s *StatusSyncService) ApplyPBP(ctx context.Context, gameID int64, events []pbp.Event) error {
	ctx, span := startUsecaseSpan(ctx, "StatusSyncService.ApplyPBP")
	defer span.End()

	if gameID <= 0 {
		return errors.Wrap(ErrInvalidInput, "game id is required")
	}

	unlock := s.locks.Lock(gameLockKey(gameID))
	defer unlock()

	stored, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return errors.Wrap(err, "load game")
	}
	if !found {
		return errors.Wrapf(ErrNotFound, "game %d", gameID)
	}
	if stored.Status == game.StatusPostponed {
		s.logger.WarnContext(ctx, "pbp rejected for postponed game",
			"game_id", gameID,
			"events", len(events),
		)
		return errors.Wrapf(ErrInvalidTransition, "pbp for postponed game %d", gameID)
	}

	if len(events) > 0 {
		for i := range events {
			events[i].GameID = gameID
		}
		if err := s.events.UpsertEvents(ctx, events); err != nil {
			return errors.Wrap(err, "upsert pbp events")
		}
		if !stored.HasPBP {
			if err := s.games.SetHasPBP(ctx, gameID); err != nil {
				return errors.Wrap(err, "flag has_pbp")
			}
		}
	}

	if stored.Status == game.StatusScheduled {
		resolved := game.ResolveStatusTransition(stored.Status, game.StatusLive)
		if resolved != stored.Status {
			if err := s.games.UpdateStatus(ctx, gameID, resolved, nil); err != nil {
				return errors.Wrap(err, "promote to live")
			}
			s.logger.InfoContext(ctx, "game went live",
				"game_id", gameID,
				"from", string(stored.Status),
			)
		}
	}

	return nil
}

// ApplyStatusSignal reconciles a provider-reported status with the stored
// one. Repeats of the current status are no-ops; regressions are rejected
// with ErrInvalidTransition and a warning, never silently absorbed.
func (s *StatusSyncService) ApplyStatusSignal(ctx context.Context, gameID int64, incoming game.Status, endedAt *time.Time) error {
	ctx, span := startUsecaseSpan(ctx, "StatusSyncService.ApplyStatusSignal")
	defer span.End()

	if gameID <= 0 {
		return errors.Wrap(ErrInvalidInput, "game id is required")
	}
	if _, ok := game.ParseStatus(string(incoming)); !ok {
		return errors.Wrapf(ErrInvalidInput, "unknown status %q", string(incoming))
	}

	unlock := s.locks.Lock(gameLockKey(gameID))
	defer unlock()

	stored, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return errors.Wrap(err, "load game")
	}
	if !found {
		return errors.Wrapf(ErrNotFound, "game %d", gameID)
	}

	if incoming == stored.Status {
		return nil
	}

	resolved := game.ResolveStatusTransition(stored.Status, incoming)
	if resolved == stored.Status {
		s.logger.WarnContext(ctx, "status transition rejected",
			"game_id", gameID,
			"current", string(stored.Status),
			"incoming", string(incoming),
		)
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", stored.Status, incoming)
	}

	var endTime *time.Time
	if game.IsTerminal(resolved) && stored.EndTime == nil {
		if endedAt != nil {
			t := endedAt.UTC()
			endTime = &t
		} else {
			t := s.now().UTC()
			endTime = &t
		}
	}

	if err := s.games.UpdateStatus(ctx, gameID, resolved, endTime); err != nil {
		return errors.Wrap(err, "update status")
	}

	s.logger.InfoContext(ctx, "game status updated",
		"game_id", gameID,
		"from", string(stored.Status),
		"to", string(resolved),
	)
	return nil
}
