package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/pollwindow"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
	"github.com/scorewatch/scorewatch/internal/platform/resilience"
)

// AccountOutcome is the terminal state of one account inside one cycle.
type AccountOutcome string

const (
	OutcomeFetched     AccountOutcome = "fetched"
	OutcomeCacheHit    AccountOutcome = "cache_hit"
	OutcomeDeferred    AccountOutcome = "deferred"
	OutcomeRateLimited AccountOutcome = "rate_limited"
	OutcomeError       AccountOutcome = "error"
)

type AccountResult struct {
	Platform   string         `json:"platform"`
	Handle     string         `json:"handle"`
	Outcome    AccountOutcome `json:"outcome"`
	PostsFound int            `json:"postsFound"`
	PostsSaved int            `json:"postsSaved"`
	Detail     string         `json:"detail,omitempty"`
}

type CycleResult struct {
	CycleID     string          `json:"cycleId"`
	StartedAt   time.Time       `json:"startedAt"`
	Duration    time.Duration   `json:"-"`
	Accounts    int             `json:"accounts"`
	Fetched     int             `json:"fetched"`
	CacheHits   int             `json:"cacheHits"`
	Deferred    int             `json:"deferred"`
	RateLimited int             `json:"rateLimited"`
	Errors      int             `json:"errors"`
	PostsSaved  int             `json:"postsSaved"`
	Results     []AccountResult `json:"results"`
}

type CollectorConfig struct {
	CycleInterval    time.Duration
	Lookback         time.Duration
	WindowTTL        time.Duration
	QuotaPerCycle    map[string]int
	DefaultQuota     int
	MaxWorkers       int
	FetchTimeout     time.Duration
	RateLimitBackoff time.Duration
}

func (c CollectorConfig) Normalize() CollectorConfig {
	if c.CycleInterval <= 0 {
		c.CycleInterval = 15 * time.Minute
	}
	if c.Lookback <= 0 {
		c.Lookback = 24 * time.Hour
	}
	if c.WindowTTL <= 0 {
		c.WindowTTL = c.CycleInterval
	}
	if c.DefaultQuota <= 0 {
		c.DefaultQuota = 30
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 4
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.RateLimitBackoff <= 0 {
		c.RateLimitBackoff = 15 * time.Minute
	}
	return c
}

// platformQuota is the per-cycle fetch budget for one platform.
type platformQuota struct {
	mu        sync.Mutex
	remaining int
}

func (q *platformQuota) take() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.remaining <= 0 {
		return false
	}
	q.remaining--
	return true
}

// CollectorService polls registered social accounts on a fixed cadence.
// Each (platform, handle, window) is fetched at most once per window TTL;
// a platform-level 429 pauses that platform until the backoff deadline while
// other platforms keep collecting.
type CollectorService struct {
	sources  map[string]SocialSource
	accounts account.Repository
	windows  pollwindow.Repository
	reveal   *RevealService
	cfg      CollectorConfig
	logger   *logging.Logger
	now      func() time.Time

	winLocks *resilience.KeyedMutex

	mu           sync.Mutex
	backoffUntil map[string]time.Time
}

func NewCollectorService(
	sources []SocialSource,
	accounts account.Repository,
	windows pollwindow.Repository,
	reveal *RevealService,
	cfg CollectorConfig,
	logger *logging.Logger,
) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}
	byPlatform := make(map[string]SocialSource, len(sources))
	for _, src := range sources {
		if src != nil {
			byPlatform[src.Platform()] = src
		}
	}
	return &CollectorService{
		sources:      byPlatform,
		accounts:     accounts,
		windows:      windows,
		reveal:       reveal,
		cfg:          cfg.Normalize(),
		logger:       logger,
		now:          time.Now,
		winLocks:     resilience.NewKeyedMutex(),
		backoffUntil: make(map[string]time.Time),
	}
}

// Run executes collection cycles until ctx is canceled. The first cycle
// starts immediately.
func (s *CollectorService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CycleInterval)
	defer ticker.Stop()

	for {
		if _, err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.ErrorContext(ctx, "collection cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle polls every active account once over the lookback window.
// Per-account failures are isolated into the result; only systemic failures
// (registry or window store unreachable) abort the cycle.
func (s *CollectorService) RunCycle(ctx context.Context) (CycleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "CollectorService.RunCycle")
	defer span.End()

	startedAt := s.now().UTC()
	result := CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: startedAt,
	}

	// Aligned to the cycle interval so drifting schedulers land on the same
	// window key and the per-window cache can dedup them.
	windowEnd := startedAt.Truncate(s.cfg.CycleInterval)
	windowStart := windowEnd.Add(-s.cfg.Lookback)

	type unit struct {
		entry account.RegistryEntry
		src   SocialSource
		quota *platformQuota
	}
	var units []unit
	for platform, src := range s.sources {
		entries, err := s.accounts.ListActive(ctx, platform)
		if err != nil {
			return result, errors.Wrapf(err, "list active accounts for %s", platform)
		}
		quota := &platformQuota{remaining: s.quotaFor(platform)}
		for _, entry := range entries {
			units = append(units, unit{entry: entry, src: src, quota: quota})
		}
	}
	result.Accounts = len(units)

	s.logger.InfoContext(ctx, "collection cycle started",
		"cycle_id", result.CycleID,
		"accounts", result.Accounts,
		"window_start", windowStart,
		"window_end", windowEnd,
	)

	pool, err := ants.NewPool(s.cfg.MaxWorkers)
	if err != nil {
		return result, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for _, u := range units {
		u := u
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			res, err := s.collectAccount(ctx, u.src, u.entry, u.quota, windowStart, windowEnd)

			mu.Lock()
			defer mu.Unlock()
			result.Results = append(result.Results, res)
			switch res.Outcome {
			case OutcomeFetched:
				result.Fetched++
			case OutcomeCacheHit:
				result.CacheHits++
			case OutcomeDeferred:
				result.Deferred++
			case OutcomeRateLimited:
				result.RateLimited++
			case OutcomeError:
				result.Errors++
			}
			result.PostsSaved += res.PostsSaved
			if err != nil && firstErr == nil {
				firstErr = err
			}
		})
		if submitErr != nil {
			wg.Done()
		}
	}
	wg.Wait()

	result.Duration = s.now().UTC().Sub(startedAt)
	s.logger.InfoContext(ctx, "collection cycle finished",
		"cycle_id", result.CycleID,
		"fetched", result.Fetched,
		"cache_hits", result.CacheHits,
		"deferred", result.Deferred,
		"rate_limited", result.RateLimited,
		"errors", result.Errors,
		"posts_saved", result.PostsSaved,
		"duration", result.Duration,
	)

	if firstErr != nil {
		return result, errors.Wrap(firstErr, "collection cycle degraded")
	}
	return result, nil
}

// collectAccount runs one unit of work. The returned error is reserved for
// systemic store failures; source failures are folded into the outcome.
func (s *CollectorService) collectAccount(
	ctx context.Context,
	src SocialSource,
	entry account.RegistryEntry,
	quota *platformQuota,
	windowStart, windowEnd time.Time,
) (AccountResult, error) {
	res := AccountResult{Platform: entry.Platform, Handle: entry.Handle}

	key := pollwindow.Key(entry.Platform, entry.Handle, windowStart, windowEnd)
	unlock := s.winLocks.Lock(key)
	defer unlock()

	now := s.now().UTC()

	stored, found, err := s.windows.Get(ctx, entry.Platform, entry.Handle, windowStart, windowEnd)
	if err != nil {
		res.Outcome = OutcomeError
		res.Detail = "window store unavailable"
		return res, errors.Wrap(err, "load poll window")
	}
	if found && stored.Fresh(now, s.cfg.WindowTTL) {
		res.Outcome = OutcomeCacheHit
		res.PostsFound = stored.PostsFound
		return res, nil
	}

	if until, paused := s.platformPaused(entry.Platform, now); paused {
		res.Outcome = OutcomeRateLimited
		res.Detail = "platform backoff until " + until.Format(time.RFC3339)
		win := s.baseWindow(entry, windowStart, windowEnd, stored, now)
		win.Status = pollwindow.StatusRateLimited
		win.RateLimitedUntil = &until
		if err := s.windows.Upsert(ctx, win); err != nil {
			return res, errors.Wrap(err, "record rate-limited window")
		}
		return res, nil
	}

	if !quota.take() {
		// Over budget for this cycle; no window row is written, so the
		// next cycle retries naturally.
		res.Outcome = OutcomeDeferred
		res.Detail = "platform quota exhausted"
		return res, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	posts, fetchErr := src.CollectPosts(fetchCtx, entry.Handle, windowStart, windowEnd)
	cancel()

	win := s.baseWindow(entry, windowStart, windowEnd, stored, now)
	win.Attempts++

	if fetchErr != nil {
		if errors.Is(fetchErr, ErrSourceRateLimited) {
			until := s.pausePlatform(entry.Platform, RateLimitRetryAfter(fetchErr), now)
			res.Outcome = OutcomeRateLimited
			res.Detail = fetchErr.Error()
			win.Status = pollwindow.StatusRateLimited
			win.RateLimitedUntil = &until
			if err := s.windows.Upsert(ctx, win); err != nil {
				return res, errors.Wrap(err, "record rate-limited window")
			}
			s.logger.WarnContext(ctx, "platform rate limited",
				"platform", entry.Platform,
				"handle", entry.Handle,
				"backoff_until", until,
			)
			return res, nil
		}

		res.Outcome = OutcomeError
		res.Detail = fetchErr.Error()
		win.Status = pollwindow.StatusError
		win.ErrorDetail = fetchErr.Error()
		if err := s.windows.Upsert(ctx, win); err != nil {
			return res, errors.Wrap(err, "record failed window")
		}
		s.logger.WarnContext(ctx, "account fetch failed",
			"platform", entry.Platform,
			"handle", entry.Handle,
			"error", fetchErr,
		)
		return res, nil
	}

	saved, err := s.reveal.ProcessCollected(ctx, entry, posts, windowStart, windowEnd)
	if err != nil {
		res.Outcome = OutcomeError
		res.Detail = err.Error()
		win.Status = pollwindow.StatusError
		win.ErrorDetail = err.Error()
		if upsertErr := s.windows.Upsert(ctx, win); upsertErr != nil {
			return res, errors.Wrap(upsertErr, "record failed window")
		}
		return res, errors.Wrap(err, "process collected posts")
	}

	res.Outcome = OutcomeFetched
	res.PostsFound = len(posts)
	res.PostsSaved = saved
	win.Status = pollwindow.StatusSuccess
	win.PostsFound = len(posts)
	win.RateLimitedUntil = nil
	win.ErrorDetail = ""
	if err := s.windows.Upsert(ctx, win); err != nil {
		return res, errors.Wrap(err, "record successful window")
	}

	return res, nil
}

func (s *CollectorService) baseWindow(entry account.RegistryEntry, start, end time.Time, stored pollwindow.Window, now time.Time) pollwindow.Window {
	win := pollwindow.Window{
		Platform:    entry.Platform,
		Handle:      entry.Handle,
		WindowStart: start,
		WindowEnd:   end,
		Status:      pollwindow.StatusPending,
		Attempts:    stored.Attempts,
		UpdatedAt:   now,
	}
	return win
}

func (s *CollectorService) quotaFor(platform string) int {
	if q, ok := s.cfg.QuotaPerCycle[platform]; ok && q > 0 {
		return q
	}
	return s.cfg.DefaultQuota
}

func (s *CollectorService) platformPaused(platform string, now time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.backoffUntil[platform]
	if !ok || !until.After(now) {
		return time.Time{}, false
	}
	return until, true
}

func (s *CollectorService) pausePlatform(platform string, retryAfter time.Duration, now time.Time) time.Time {
	if retryAfter <= 0 {
		retryAfter = s.cfg.RateLimitBackoff
	}
	until := now.Add(retryAfter)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.backoffUntil[platform]; !ok || until.After(existing) {
		s.backoffUntil[platform] = until
	}
	return s.backoffUntil[platform]
}
