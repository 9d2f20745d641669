package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/reveal"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

func TestClassifyPostPostGameTimingOverridesSafeText(t *testing.T) {
	svc := NewRevealService(memory.NewGameRepository(), memory.NewSocialRepository(), memory.NewAccountRepository(), logging.NewNop())

	endTime := time.Date(2026, 1, 10, 3, 0, 0, 0, time.UTC)
	final := &game.Game{Status: game.StatusFinal, EndTime: &endTime}

	// The text alone would be safe, but timing wins.
	got := svc.ClassifyPost(final, endTime.Add(10*time.Minute), "Starting lineup for tonight")
	assert.Equal(t, social.RevealPost, got.Level)
	assert.Equal(t, reveal.ReasonPostGameTiming, got.Reason)

	// Same text before the end stays safe.
	got = svc.ClassifyPost(final, endTime.Add(-2*time.Hour), "Starting lineup for tonight")
	assert.Equal(t, social.RevealPre, got.Level)
	assert.Equal(t, reveal.ReasonSafePattern, got.Reason)
}

func TestClassifyPostWithoutGameFallsBackToText(t *testing.T) {
	svc := NewRevealService(memory.NewGameRepository(), memory.NewSocialRepository(), memory.NewAccountRepository(), logging.NewNop())

	got := svc.ClassifyPost(nil, time.Now(), "FINAL: Celtics 112 - Lakers 104")
	assert.Equal(t, social.RevealPost, got.Level)

	got = svc.ClassifyPost(nil, time.Now(), "Injury report ahead of tip-off")
	assert.Equal(t, social.RevealPre, got.Level)
}

func TestProcessCollectedAssociatesGameAndFlagsSocial(t *testing.T) {
	games := memory.NewGameRepository()
	posts := memory.NewSocialRepository()
	svc := NewRevealService(games, posts, memory.NewAccountRepository(), logging.NewNop())

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	gameID := games.Seed(game.Game{
		LeagueCode: "NBA",
		Season:     2025,
		HomeTeam:   "BOS",
		AwayTeam:   "LAL",
		Status:     game.StatusLive,
		StartTime:  start,
	})

	entry := account.RegistryEntry{
		Platform:         "x",
		Handle:           "celtics",
		TeamID:           7,
		TeamAbbreviation: "BOS",
		LeagueCode:       "NBA",
		IsActive:         true,
	}
	collected := []CollectedPost{
		{ExternalID: "p1", Text: "Tip-off in 30 minutes", PostedAt: start.Add(-30 * time.Minute)},
		{ExternalID: "p2", Text: "What a finish!! FINAL: 110-108", PostedAt: start.Add(3 * time.Hour)},
	}

	saved, err := svc.ProcessCollected(context.Background(), entry, collected, start.Add(-time.Hour), start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	stored, _, err := games.GetByID(context.Background(), gameID)
	require.NoError(t, err)
	assert.True(t, stored.HasSocial)

	safe, ok := posts.PostByExternalID("x", "p1")
	require.True(t, ok)
	assert.Equal(t, gameID, safe.GameID)
	assert.Equal(t, social.RevealPre, safe.RevealLevel)

	spoiler, ok := posts.PostByExternalID("x", "p2")
	require.True(t, ok)
	assert.Equal(t, social.RevealPost, spoiler.RevealLevel)
	assert.Equal(t, reveal.ReasonScorePattern, spoiler.RevealReason)
}

func TestProcessCollectedResolvesRegistryRowByTeamPlatform(t *testing.T) {
	games := memory.NewGameRepository()
	posts := memory.NewSocialRepository()
	accounts := memory.NewAccountRepository()
	svc := NewRevealService(games, posts, accounts, logging.NewNop())

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	gameID := games.Seed(game.Game{
		LeagueCode: "NBA",
		Season:     2025,
		HomeTeam:   "BOS",
		AwayTeam:   "LAL",
		Status:     game.StatusLive,
		StartTime:  start,
	})
	accounts.Seed(account.RegistryEntry{
		Platform:         "x",
		Handle:           "celtics",
		TeamID:           7,
		TeamAbbreviation: "BOS",
		LeagueCode:       "NBA",
		IsActive:         true,
	})

	// The caller's snapshot carries a stale abbreviation; the registry's
	// (team, platform) row wins and the post still lands on the game.
	stale := account.RegistryEntry{
		Platform:         "x",
		Handle:           "celtics",
		TeamID:           7,
		TeamAbbreviation: "BOS_OLD",
		LeagueCode:       "NBA",
		IsActive:         true,
	}
	collected := []CollectedPost{
		{ExternalID: "p1", Text: "Tip-off in 30 minutes", PostedAt: start.Add(-30 * time.Minute)},
	}

	saved, err := svc.ProcessCollected(context.Background(), stale, collected, start.Add(-time.Hour), start.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	stored, ok := posts.PostByExternalID("x", "p1")
	require.True(t, ok)
	assert.Equal(t, gameID, stored.GameID)
}

func TestProcessCollectedDuplicateExternalIDStoresOnce(t *testing.T) {
	games := memory.NewGameRepository()
	posts := memory.NewSocialRepository()
	svc := NewRevealService(games, posts, memory.NewAccountRepository(), logging.NewNop())

	entry := account.RegistryEntry{Platform: "x", Handle: "celtics", TeamAbbreviation: "BOS", LeagueCode: "NBA"}
	now := time.Now().UTC()
	item := []CollectedPost{{ExternalID: "dup", Text: "Halftime update", PostedAt: now}}

	_, err := svc.ProcessCollected(context.Background(), entry, item, now.Add(-time.Hour), now)
	require.NoError(t, err)
	_, err = svc.ProcessCollected(context.Background(), entry, item, now.Add(-time.Hour), now)
	require.NoError(t, err)

	assert.Len(t, posts.All(), 1)
}

func TestReclassifyTightensOnly(t *testing.T) {
	posts := memory.NewSocialRepository()
	svc := NewRevealService(memory.NewGameRepository(), posts, memory.NewAccountRepository(), logging.NewNop())

	require.NoError(t, posts.Upsert(context.Background(), social.Post{
		Platform:     "x",
		ExternalID:   "p1",
		RevealLevel:  social.RevealPre,
		RevealReason: reveal.ReasonSafePattern,
	}))

	require.NoError(t, svc.Reclassify(context.Background(), "x", "p1", reveal.ReasonRecapPattern))

	stored, ok := posts.PostByExternalID("x", "p1")
	require.True(t, ok)
	assert.Equal(t, social.RevealPost, stored.RevealLevel)
	assert.Equal(t, reveal.ReasonRecapPattern, stored.RevealReason)

	// Already post: a second call leaves the reason untouched.
	require.NoError(t, svc.Reclassify(context.Background(), "x", "p1", reveal.ReasonDefaultRisk))
	stored, _ = posts.PostByExternalID("x", "p1")
	assert.Equal(t, reveal.ReasonRecapPattern, stored.RevealReason)
}

func TestReclassifyRequiresIdentity(t *testing.T) {
	svc := NewRevealService(memory.NewGameRepository(), memory.NewSocialRepository(), memory.NewAccountRepository(), logging.NewNop())
	err := svc.Reclassify(context.Background(), "", "p1", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
