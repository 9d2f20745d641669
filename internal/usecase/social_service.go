package usecase

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

// SocialService is the read surface for collected posts and the account
// registry.
type SocialService struct {
	games    game.Repository
	posts    social.Repository
	accounts account.Repository
	logger   *logging.Logger
}

func NewSocialService(games game.Repository, posts social.Repository, accounts account.Repository, logger *logging.Logger) *SocialService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SocialService{
		games:    games,
		posts:    posts,
		accounts: accounts,
		logger:   logger,
	}
}

// ListByGame returns a game's posts ordered by posted_at, each carrying its
// reveal level. An empty maxLevel returns everything; maxLevel pre makes the
// result spoiler-safe by withholding anything classified post.
func (s *SocialService) ListByGame(ctx context.Context, gameID int64, maxLevel social.RevealLevel) ([]social.Post, error) {
	ctx, span := startUsecaseSpan(ctx, "SocialService.ListByGame")
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

	items, err := s.posts.ListByGame(ctx, gameID)
	if err != nil {
		return nil, errors.Wrap(err, "list posts")
	}
	if maxLevel != social.RevealPre {
		return items, nil
	}

	safe := make([]social.Post, 0, len(items))
	for _, post := range items {
		if post.RevealLevel == social.RevealPre {
			safe = append(safe, post)
		}
	}
	return safe, nil
}

func (s *SocialService) ListAccounts(ctx context.Context) ([]account.RegistryEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "SocialService.ListAccounts")
	defer span.End()

	items, err := s.accounts.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list registry")
	}
	return items, nil
}
