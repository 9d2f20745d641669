package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/platform/cache"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

// GameService is the read surface for game listings and play-by-play.
type GameService struct {
	games  game.Repository
	events pbp.Repository
	cache  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewGameService(games game.Repository, events pbp.Repository, store *cache.Store, logger *logging.Logger) *GameService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameService{
		games:  games,
		events: events,
		cache:  store,
		logger: logger,
		now:    time.Now,
	}
}

// rangeWindow maps a named range to absolute bounds. "current" is the UTC
// calendar day; the other two are rolling windows around now.
func rangeWindow(now time.Time, r game.Range) (time.Time, time.Time, error) {
	now = now.UTC()
	switch r {
	case game.RangeLast2:
		return now.Add(-48 * time.Hour), now, nil
	case game.RangeCurrent:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.Add(24 * time.Hour), nil
	case game.RangeNext24:
		return now, now.Add(24 * time.Hour), nil
	default:
		return time.Time{}, time.Time{}, errors.Wrapf(ErrInvalidInput, "unknown range %q", string(r))
	}
}

func (s *GameService) ListByRange(ctx context.Context, r game.Range) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.ListByRange")
	defer span.End()

	from, to, err := rangeWindow(s.now(), r)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("games:range:%s:%d", r, from.Unix()/60)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := s.games.ListByWindow(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "list games")
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	items, ok := value.([]game.Game)
	if !ok {
		return nil, errors.New("unexpected cached type for game list")
	}
	return items, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.GetByID")
	defer span.End()

	if id <= 0 {
		return game.Game{}, errors.Wrap(ErrInvalidInput, "game id is required")
	}

	stored, found, err := s.games.GetByID(ctx, id)
	if err != nil {
		return game.Game{}, errors.Wrap(err, "load game")
	}
	if !found {
		return game.Game{}, errors.Wrapf(ErrNotFound, "game %d", id)
	}
	return stored, nil
}

// GetPBP returns the game's play-by-play grouped by period. A known game
// with no events yet yields an empty slice, not an error.
func (s *GameService) GetPBP(ctx context.Context, id int64) ([]pbp.Period, error) {
	ctx, span := startUsecaseSpan(ctx, "GameService.GetPBP")
	defer span.End()

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	events, err := s.events.ListByGame(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list pbp events")
	}
	return pbp.GroupByPeriod(events), nil
}
