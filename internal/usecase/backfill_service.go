package usecase

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type BackfillReport struct {
	GameID        int64 `json:"gameId"`
	LiveCount     int   `json:"liveCount"`
	BackfillCount int   `json:"backfillCount"`
	Discrepancy   bool  `json:"discrepancy"`
}

// BackfillService validates a finished game's play-by-play against the
// authoritative post-game source. It fills gaps the live feed missed and
// flags count discrepancies; it never rewrites events the live feed stored.
type BackfillService struct {
	provider BackfillProvider
	games    game.Repository
	events   pbp.Repository
	status   *StatusSyncService
	logger   *logging.Logger
}

func NewBackfillService(
	provider BackfillProvider,
	games game.Repository,
	events pbp.Repository,
	status *StatusSyncService,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		provider: provider,
		games:    games,
		events:   events,
		status:   status,
		logger:   logger,
	}
}

// ValidateGame backfills one finished game. Calling it for a game that is
// not final is an input error: the authoritative source only settles after
// the game ends.
func (s *BackfillService) ValidateGame(ctx context.Context, gameID int64) (BackfillReport, error) {
	ctx, span := startUsecaseSpan(ctx, "BackfillService.ValidateGame")
	defer span.End()

	report := BackfillReport{GameID: gameID}
	if gameID <= 0 {
		return report, errors.Wrap(ErrInvalidInput, "game id is required")
	}

	stored, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return report, errors.Wrap(err, "load game")
	}
	if !found {
		return report, errors.Wrapf(ErrNotFound, "game %d", gameID)
	}
	if stored.Status != game.StatusFinal {
		return report, errors.Wrapf(ErrInvalidInput, "game %d is %s, backfill is post-game only", gameID, stored.Status)
	}

	liveCount, err := s.events.CountByGame(ctx, gameID)
	if err != nil {
		return report, errors.Wrap(err, "count stored events")
	}
	report.LiveCount = liveCount

	plays, err := s.provider.FetchFinalPBP(ctx, stored.SourceGameKey)
	if err != nil {
		return report, errors.Wrap(err, "fetch final pbp")
	}
	report.BackfillCount = len(plays)

	if len(plays) > 0 {
		if err := s.status.ApplyPBP(ctx, gameID, externalPlaysToEvents(gameID, plays)); err != nil {
			return report, errors.Wrap(err, "apply backfill events")
		}
	}

	if liveCount != len(plays) {
		// Flagged, not resolved: the live rows stay as stored and the gap
		// filled above is all the correction backfill performs.
		report.Discrepancy = true
		s.logger.WarnContext(ctx, "backfill count discrepancy",
			"game_id", gameID,
			"live_count", liveCount,
			"backfill_count", len(plays),
		)
	}

	return report, nil
}
