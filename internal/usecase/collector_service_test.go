package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/pollwindow"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/memory"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
)

type fakeSource struct {
	platform string

	mu    sync.Mutex
	calls int
	fn    func(handle string) ([]CollectedPost, error)
}

func (f *fakeSource) Platform() string { return f.platform }

func (f *fakeSource) CollectPosts(_ context.Context, handle string, _, _ time.Time) ([]CollectedPost, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(handle)
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type collectorFixture struct {
	svc     *CollectorService
	source  *fakeSource
	windows *memory.PollWindowRepository
	posts   *memory.SocialRepository
	now     time.Time
}

func newCollectorFixture(t *testing.T, cfg CollectorConfig, entries ...account.RegistryEntry) *collectorFixture {
	t.Helper()

	accounts := memory.NewAccountRepository()
	accounts.Seed(entries...)
	windows := memory.NewPollWindowRepository()
	games := memory.NewGameRepository()
	posts := memory.NewSocialRepository()

	source := &fakeSource{platform: "x"}
	reveal := NewRevealService(games, posts, accounts, logging.NewNop())
	svc := NewCollectorService([]SocialSource{source}, accounts, windows, reveal, cfg, logging.NewNop())

	now := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &collectorFixture{svc: svc, source: source, windows: windows, posts: posts, now: now}
}

func xAccount(handle string) account.RegistryEntry {
	return account.RegistryEntry{
		Platform:         "x",
		Handle:           handle,
		TeamAbbreviation: "BOS",
		LeagueCode:       "NBA",
		IsActive:         true,
	}
}

func TestRunCycleStoresPostsAndWindow(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1}, xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		return []CollectedPost{
			{ExternalID: "p1", Text: "Warm-ups underway", PostedAt: fix.now.Add(-time.Hour)},
			{ExternalID: "p2", Text: "Lineup news", PostedAt: fix.now.Add(-30 * time.Minute)},
		}, nil
	}

	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Accounts)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 2, result.PostsSaved)
	assert.NotEmpty(t, result.CycleID)

	windowEnd := fix.now.Truncate(fix.svc.cfg.CycleInterval)
	windowStart := windowEnd.Add(-fix.svc.cfg.Lookback)
	win, found, err := fix.windows.Get(context.Background(), "x", "celtics", windowStart, windowEnd)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pollwindow.StatusSuccess, win.Status)
	assert.Equal(t, 2, win.PostsFound)
	assert.Equal(t, 1, win.Attempts)
}

func TestRunCycleSecondRunHitsWindowCache(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1}, xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		return []CollectedPost{{ExternalID: "p1", Text: "Tip-off soon", PostedAt: fix.now}}, nil
	}

	_, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.CacheHits)
	assert.Equal(t, 0, result.Fetched)
	assert.Equal(t, 1, fix.source.callCount())
}

func TestConcurrentCyclesFetchAccountOnce(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 2}, xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		return []CollectedPost{{ExternalID: "p1", Text: "Tip-off soon", PostedAt: fix.now}}, nil
	}

	// Two schedulers firing at once: the per-window lock serializes them and
	// the loser must land on the fresh window row instead of refetching.
	var wg sync.WaitGroup
	results := make([]CycleResult, 2)
	errs := make([]error, 2)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = fix.svc.RunCycle(context.Background())
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Equal(t, 1, fix.source.callCount())
	assert.Equal(t, 1, results[0].Fetched+results[1].Fetched)
	assert.Equal(t, 1, results[0].CacheHits+results[1].CacheHits)
}

func TestDriftingCycleSharesWindowKey(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1, CycleInterval: 15 * time.Minute}, xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		return []CollectedPost{{ExternalID: "p1", Text: "Tip-off soon", PostedAt: fix.now}}, nil
	}

	_, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	// A second scheduler firing 7 minutes late still truncates to the same
	// window, so the stored row answers instead of the source.
	fix.svc.now = func() time.Time { return fix.now.Add(7 * time.Minute) }
	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.CacheHits)
	assert.Equal(t, 0, result.Fetched)
	assert.Equal(t, 1, fix.source.callCount())
	assert.Equal(t, 1, fix.windows.Len())
}

func TestRunCycleQuotaDefersWithoutError(t *testing.T) {
	cfg := CollectorConfig{MaxWorkers: 1, QuotaPerCycle: map[string]int{"x": 1}}
	fix := newCollectorFixture(t, cfg, xAccount("bulls"), xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) { return nil, nil }

	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.Deferred)
	assert.Equal(t, 1, fix.source.callCount())

	// The deferred account has no window row, so the next cycle retries it.
	assert.Equal(t, 1, fix.windows.Len())
}

func TestRunCycleRateLimitPausesPlatform(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1}, xAccount("bulls"), xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		return nil, &RateLimitedError{RetryAfter: 10 * time.Minute}
	}

	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	// One real 429, then the platform pause catches the second account
	// before it fetches.
	assert.Equal(t, 2, result.RateLimited)
	assert.Equal(t, 1, fix.source.callCount())

	windowEnd := fix.now.Truncate(fix.svc.cfg.CycleInterval)
	windowStart := windowEnd.Add(-fix.svc.cfg.Lookback)
	for _, handle := range []string{"bulls", "celtics"} {
		win, found, err := fix.windows.Get(context.Background(), "x", handle, windowStart, windowEnd)
		require.NoError(t, err)
		require.True(t, found, handle)
		assert.Equal(t, pollwindow.StatusRateLimited, win.Status, handle)
		require.NotNil(t, win.RateLimitedUntil, handle)
		assert.Equal(t, fix.now.Add(10*time.Minute), win.RateLimitedUntil.UTC(), handle)
	}
}

func TestRunCycleIsolatesAccountFailures(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1}, xAccount("bad"), xAccount("good"))
	fix.source.fn = func(handle string) ([]CollectedPost, error) {
		if handle == "bad" {
			return nil, errors.New("upstream timeout")
		}
		return []CollectedPost{{ExternalID: "p1", Text: "Game time", PostedAt: fix.now}}, nil
	}

	result, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.Fetched)
	assert.Equal(t, 1, result.PostsSaved)

	windowEnd := fix.now.Truncate(fix.svc.cfg.CycleInterval)
	windowStart := windowEnd.Add(-fix.svc.cfg.Lookback)
	win, found, err := fix.windows.Get(context.Background(), "x", "bad", windowStart, windowEnd)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pollwindow.StatusError, win.Status)
	assert.Contains(t, win.ErrorDetail, "upstream timeout")
}

func TestRateLimitRetryAfterFallsBackToConfig(t *testing.T) {
	fix := newCollectorFixture(t, CollectorConfig{MaxWorkers: 1, RateLimitBackoff: 20 * time.Minute}, xAccount("celtics"))
	fix.source.fn = func(string) ([]CollectedPost, error) {
		// No Retry-After header from the provider.
		return nil, &RateLimitedError{}
	}

	_, err := fix.svc.RunCycle(context.Background())
	require.NoError(t, err)

	until, paused := fix.svc.platformPaused("x", fix.now)
	require.True(t, paused)
	assert.Equal(t, fix.now.Add(20*time.Minute), until)
}
