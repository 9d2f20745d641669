package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/odds"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type OddsSyncResult struct {
	GamesPolled int `json:"gamesPolled"`
	Snapshots   int `json:"snapshots"`
	Errors      int `json:"errors"`
}

// OddsSyncService captures point-in-time odds for upcoming and live games.
// Snapshots are append-only history; the service never updates a captured
// quote in place.
type OddsSyncService struct {
	provider  OddsProvider
	games     game.Repository
	snapshots odds.Repository
	logger    *logging.Logger
	now       func() time.Time
}

func NewOddsSyncService(provider OddsProvider, games game.Repository, snapshots odds.Repository, logger *logging.Logger) *OddsSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OddsSyncService{
		provider:  provider,
		games:     games,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// ListByGame returns the captured odds history for a known game, oldest
// snapshot first.
func (s *OddsSyncService) ListByGame(ctx context.Context, gameID int64) ([]odds.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "OddsSyncService.ListByGame")
	defer span.End()

	if gameID <= 0 {
		return nil, errors.Wrap(ErrInvalidInput, "game id is required")
	}

	_, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, errors.Wrap(err, "load game")
	}
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "game %d", gameID)
	}

	items, err := s.snapshots.ListByGame(ctx, gameID)
	if err != nil {
		return nil, errors.Wrap(err, "list odds snapshots")
	}
	return items, nil
}

// SyncOdds polls odds for every non-terminal game starting within the next
// 24 hours or already underway.
func (s *OddsSyncService) SyncOdds(ctx context.Context) (OddsSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "OddsSyncService.SyncOdds")
	defer span.End()

	var result OddsSyncResult
	if s.provider == nil {
		return result, errors.Wrap(ErrDependencyUnavailable, "odds provider is not configured")
	}

	now := s.now().UTC()
	candidates, err := s.games.ListByWindow(ctx, now.Add(-6*time.Hour), now.Add(24*time.Hour))
	if err != nil {
		return result, errors.Wrap(err, "list candidate games")
	}

	for _, g := range candidates {
		if game.IsTerminal(g.Status) || g.Status == game.StatusPostponed {
			continue
		}

		result.GamesPolled++
		items, err := s.provider.FetchOdds(ctx, g.SourceGameKey)
		if err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "odds fetch failed",
				"game_id", g.ID,
				"error", err,
			)
			continue
		}
		if len(items) == 0 {
			continue
		}

		for i := range items {
			items[i].GameID = g.ID
			if items[i].CapturedAt.IsZero() {
				items[i].CapturedAt = now
			}
		}
		if err := s.snapshots.UpsertSnapshots(ctx, items); err != nil {
			result.Errors++
			s.logger.WarnContext(ctx, "odds store failed",
				"game_id", g.ID,
				"error", err,
			)
			continue
		}
		result.Snapshots += len(items)
	}

	return result, nil
}
