package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/platform/cache"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

const recapReasonPBPMissing = "pbp_missing"

type RecapAvailability struct {
	GameID    int64  `json:"gameId"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// RecapSummary is the gated recap payload. At the pre reveal level the
// outcome fields stay empty even for a final game.
type RecapSummary struct {
	GameID      int64              `json:"gameId"`
	Available   bool               `json:"available"`
	Reason      string             `json:"reason,omitempty"`
	RevealLevel social.RevealLevel `json:"revealLevel,omitempty"`
	Headline    string             `json:"headline,omitempty"`
	Periods     int                `json:"periods,omitempty"`
	EventCount  int                `json:"eventCount,omitempty"`
	HomeScore   *int               `json:"homeScore,omitempty"`
	AwayScore   *int               `json:"awayScore,omitempty"`
}

// RecapService gates recap delivery on stored play-by-play. No events, no
// recap: the gate never substitutes provider data fetched on demand.
type RecapService struct {
	games  game.Repository
	events pbp.Repository
	cache  *cache.Store
	logger *logging.Logger
}

func NewRecapService(games game.Repository, events pbp.Repository, store *cache.Store, logger *logging.Logger) *RecapService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecapService{
		games:  games,
		events: events,
		cache:  store,
		logger: logger,
	}
}

func (s *RecapService) Availability(ctx context.Context, gameID int64) (RecapAvailability, error) {
	ctx, span := startUsecaseSpan(ctx, "RecapService.Availability")
	defer span.End()

	out := RecapAvailability{GameID: gameID}
	if gameID <= 0 {
		return out, errors.Wrap(ErrInvalidInput, "game id is required")
	}

	_, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return out, errors.Wrap(err, "load game")
	}
	if !found {
		return out, errors.Wrapf(ErrNotFound, "game %d", gameID)
	}

	count, err := s.events.CountByGame(ctx, gameID)
	if err != nil {
		return out, errors.Wrap(err, "count pbp events")
	}
	if count == 0 {
		out.Reason = recapReasonPBPMissing
		return out, nil
	}

	out.Available = true
	return out, nil
}

// Summary builds the recap at the requested reveal level. An unavailable
// recap is a valid response, not an error.
func (s *RecapService) Summary(ctx context.Context, gameID int64, level social.RevealLevel) (RecapSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "RecapService.Summary")
	defer span.End()

	if gameID <= 0 {
		return RecapSummary{}, errors.Wrap(ErrInvalidInput, "game id is required")
	}
	if level != social.RevealPre && level != social.RevealPost {
		return RecapSummary{}, errors.Wrapf(ErrInvalidInput, "unknown reveal level %q", string(level))
	}

	key := fmt.Sprintf("recap:%d:%s", gameID, level)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.buildSummary(ctx, gameID, level)
	})
	if err != nil {
		return RecapSummary{}, err
	}

	summary, ok := value.(RecapSummary)
	if !ok {
		return RecapSummary{}, errors.New("unexpected cached type for recap")
	}
	return summary, nil
}

func (s *RecapService) buildSummary(ctx context.Context, gameID int64, level social.RevealLevel) (RecapSummary, error) {
	stored, found, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return RecapSummary{}, errors.Wrap(err, "load game")
	}
	if !found {
		return RecapSummary{}, errors.Wrapf(ErrNotFound, "game %d", gameID)
	}

	events, err := s.events.ListByGame(ctx, gameID)
	if err != nil {
		return RecapSummary{}, errors.Wrap(err, "list pbp events")
	}
	if len(events) == 0 {
		return RecapSummary{
			GameID: gameID,
			Reason: recapReasonPBPMissing,
		}, nil
	}

	periods := pbp.GroupByPeriod(events)
	summary := RecapSummary{
		GameID:      gameID,
		Available:   true,
		RevealLevel: level,
		Periods:     len(periods),
		EventCount:  len(events),
		Headline:    fmt.Sprintf("%s at %s", stored.AwayTeam, stored.HomeTeam),
	}

	if level == social.RevealPost && stored.Status == game.StatusFinal && stored.HomeScore != nil && stored.AwayScore != nil {
		summary.HomeScore = stored.HomeScore
		summary.AwayScore = stored.AwayScore
		summary.Headline = fmt.Sprintf("Final: %s %d, %s %d",
			stored.AwayTeam, *stored.AwayScore,
			stored.HomeTeam, *stored.HomeScore,
		)
	}

	return summary, nil
}
