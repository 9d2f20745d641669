package app

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/scorewatch/scorewatch/external/nbalive"
	"github.com/scorewatch/scorewatch/external/oddsfeed"
	"github.com/scorewatch/scorewatch/external/sportsref"
	"github.com/scorewatch/scorewatch/external/xapi"
	"github.com/scorewatch/scorewatch/internal/config"
	"github.com/scorewatch/scorewatch/internal/infrastructure/repository/postgres"
	"github.com/scorewatch/scorewatch/internal/interfaces/httpapi"
	"github.com/scorewatch/scorewatch/internal/platform/cache"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
	"github.com/scorewatch/scorewatch/internal/platform/resilience"
	"github.com/scorewatch/scorewatch/internal/usecase"
)

// App owns the wired service graph. Background loops (collector, sync jobs)
// are exposed so main can decide which ones to run.
type App struct {
	Config       config.Config
	Logger       *logging.Logger
	DB           *sqlx.DB
	Server       *http.Server
	Collector    *usecase.CollectorService
	ScheduleSync *usecase.ScheduleSyncService
	OddsSync     *usecase.OddsSyncService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, errors.New("http server addr cannot be empty")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "seed reference data")
	}

	games := postgres.NewGameRepository(db)
	events := postgres.NewPBPRepository(db)
	posts := postgres.NewSocialPostRepository(db)
	accounts := postgres.NewAccountRepository(db)
	windows := postgres.NewPollWindowRepository(db)
	snapshots := postgres.NewOddsRepository(db)

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	statusSync := usecase.NewStatusSyncService(games, events, logger)
	revealSvc := usecase.NewRevealService(games, posts, accounts, logger)
	gameSvc := usecase.NewGameService(games, events, store, logger)
	socialSvc := usecase.NewSocialService(games, posts, accounts, logger)
	recapSvc := usecase.NewRecapService(games, events, store, logger)

	var scheduleSync *usecase.ScheduleSyncService
	if cfg.NBALiveEnabled {
		nba := nbalive.NewClient(nbalive.ClientConfig{
			BaseURL:    cfg.NBALiveBaseURL,
			Timeout:    cfg.NBALiveTimeout,
			MaxRetries: cfg.NBALiveMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.NBALiveCircuitEnabled,
				FailureThreshold: cfg.NBALiveCircuitFailureCount,
				OpenTimeout:      cfg.NBALiveCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.NBALiveCircuitHalfOpenMaxReq,
			},
		})
		scheduleSync = usecase.NewScheduleSyncService(nba, nba, games, statusSync, usecase.DefaultLeagues(), logger)
	}

	var backfill *usecase.BackfillService
	if cfg.SportsRefEnabled {
		archive := sportsref.NewClient(sportsref.ClientConfig{
			BaseURL:       cfg.SportsRefBaseURL,
			Timeout:       cfg.SportsRefTimeout,
			MaxRetries:    cfg.SportsRefMaxRetries,
			MinRequestGap: cfg.SportsRefMinRequestGap,
			Logger:        logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SportsRefCircuitEnabled,
				FailureThreshold: cfg.SportsRefCircuitFailureCount,
				OpenTimeout:      cfg.SportsRefCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SportsRefCircuitHalfOpenMaxReq,
			},
		})
		backfill = usecase.NewBackfillService(archive, games, events, statusSync, logger)
	}

	var oddsProvider usecase.OddsProvider
	if cfg.OddsFeedEnabled {
		oddsProvider = oddsfeed.NewClient(oddsfeed.ClientConfig{
			BaseURL:    cfg.OddsFeedBaseURL,
			APIKey:     cfg.OddsFeedAPIKey,
			Timeout:    cfg.OddsFeedTimeout,
			MaxRetries: cfg.OddsFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OddsFeedCircuitEnabled,
				FailureThreshold: cfg.OddsFeedCircuitFailureCount,
				OpenTimeout:      cfg.OddsFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OddsFeedCircuitHalfOpenMaxReq,
			},
		})
	}
	// Constructed even without a provider so the odds read endpoint stays up.
	oddsSync := usecase.NewOddsSyncService(oddsProvider, games, snapshots, logger)

	var sources []usecase.SocialSource
	if cfg.XAPIEnabled {
		sources = append(sources, xapi.NewClient(xapi.ClientConfig{
			BaseURL:     cfg.XAPIBaseURL,
			BearerToken: cfg.XAPIBearerToken,
			Timeout:     cfg.XAPITimeout,
			MaxRetries:  cfg.XAPIMaxRetries,
			Logger:      logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.XAPICircuitEnabled,
				FailureThreshold: cfg.XAPICircuitFailureCount,
				OpenTimeout:      cfg.XAPICircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.XAPICircuitHalfOpenMaxReq,
			},
		}))
	}

	var collector *usecase.CollectorService
	if len(sources) > 0 {
		collector = usecase.NewCollectorService(sources, accounts, windows, revealSvc, usecase.CollectorConfig{
			CycleInterval:    cfg.CollectorCycleInterval,
			Lookback:         cfg.CollectorLookback,
			WindowTTL:        cfg.CollectorWindowTTL,
			QuotaPerCycle:    cfg.CollectorQuotaByPlatform,
			DefaultQuota:     cfg.CollectorDefaultQuota,
			MaxWorkers:       cfg.CollectorMaxWorkers,
			FetchTimeout:     cfg.CollectorFetchTimeout,
			RateLimitBackoff: cfg.CollectorRateLimitBackoff,
		}, logger)
	}

	handler := httpapi.NewHandler(gameSvc, socialSvc, recapSvc, oddsSync, revealSvc, collector, scheduleSync, backfill, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Server:       server,
		Collector:    collector,
		ScheduleSync: scheduleSync,
		OddsSync:     oddsSync,
	}, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
