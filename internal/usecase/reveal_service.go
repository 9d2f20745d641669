package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/reveal"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

// RevealService assigns reveal levels to collected posts and owns every
// write to the reveal fields. Classification is conservative: a post only
// gets the pre level when a safe pattern matched and nothing about the game
// state contradicts it.
type RevealService struct {
	games    game.Repository
	posts    social.Repository
	accounts account.Repository
	logger   *logging.Logger
}

func NewRevealService(games game.Repository, posts social.Repository, accounts account.Repository, logger *logging.Logger) *RevealService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RevealService{games: games, posts: posts, accounts: accounts, logger: logger}
}

// ClassifyPost labels one post. Game context outranks text analysis: any
// post published after a final game's end time is post regardless of what a
// safe pattern would say about its text.
func (s *RevealService) ClassifyPost(g *game.Game, postedAt time.Time, text string) reveal.Classification {
	if g != nil && g.Status == game.StatusFinal && g.EndTime != nil && postedAt.After(*g.EndTime) {
		return reveal.Classification{Level: social.RevealPost, Reason: reveal.ReasonPostGameTiming}
	}
	return reveal.Classify(text)
}

// ProcessCollected classifies and stores one account's window of posts.
// The game association goes through the registry's (team, platform) lookup
// and then by team and window; posts with no resolvable game are stored
// unassociated and classified on text alone.
func (s *RevealService) ProcessCollected(ctx context.Context, entry account.RegistryEntry, collected []CollectedPost, windowStart, windowEnd time.Time) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "RevealService.ProcessCollected")
	defer span.End()

	if len(collected) == 0 {
		return 0, nil
	}

	// The registry row is the authority for team and league context; the
	// caller's snapshot may predate a registry edit made mid-cycle.
	if entry.TeamID != 0 {
		resolved, ok, err := s.accounts.GetByTeamPlatform(ctx, entry.TeamID, entry.Platform)
		if err != nil {
			return 0, errors.Wrap(err, "resolve registry entry")
		}
		if ok {
			entry = resolved
		}
	}

	var matched *game.Game
	g, found, err := s.games.FindByTeam(ctx, entry.LeagueCode, entry.TeamAbbreviation, windowStart, windowEnd)
	if err != nil {
		return 0, errors.Wrap(err, "resolve game for account")
	}
	if found {
		matched = &g
	}

	saved := 0
	hadGamePosts := false
	for _, item := range collected {
		if item.ExternalID == "" {
			continue
		}

		classification := s.ClassifyPost(matched, item.PostedAt, item.Text)
		post := social.Post{
			Platform:     entry.Platform,
			ExternalID:   item.ExternalID,
			Handle:       entry.Handle,
			TeamID:       entry.TeamID,
			LeagueCode:   entry.LeagueCode,
			PostedAt:     item.PostedAt.UTC(),
			Text:         item.Text,
			MediaURL:     item.MediaURL,
			MediaType:    item.MediaType,
			HasVideo:     item.HasVideo,
			RevealLevel:  classification.Level,
			RevealReason: classification.Reason,
		}
		if matched != nil {
			post.GameID = matched.ID
		}

		if err := s.posts.Upsert(ctx, post); err != nil {
			return saved, errors.Wrapf(err, "store post %s/%s", entry.Platform, item.ExternalID)
		}
		saved++
		if matched != nil {
			hadGamePosts = true
		}
	}

	if hadGamePosts && !matched.HasSocial {
		if err := s.games.SetHasSocial(ctx, matched.ID); err != nil {
			return saved, errors.Wrap(err, "flag has_social")
		}
	}

	return saved, nil
}

// Reclassify tightens a stored post's reveal level to post. Loosening is
// not supported; the repository ignores the write if the post is already
// post.
func (s *RevealService) Reclassify(ctx context.Context, platform, externalID, reason string) error {
	ctx, span := startUsecaseSpan(ctx, "RevealService.Reclassify")
	defer span.End()

	if platform == "" || externalID == "" {
		return errors.Wrap(ErrInvalidInput, "platform and external id are required")
	}
	if reason == "" {
		reason = reveal.ReasonDefaultRisk
	}

	if err := s.posts.ReclassifyStricter(ctx, platform, externalID, reason); err != nil {
		return errors.Wrap(err, "reclassify post")
	}

	s.logger.InfoContext(ctx, "post reclassified",
		"platform", platform,
		"external_id", externalID,
		"reason", reason,
	)
	return nil
}
