package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	_ "github.com/lib/pq"

	"github.com/leagueforge/waiverwire/external/jobqueue"
	"github.com/leagueforge/waiverwire/external/warden"
	"github.com/leagueforge/waiverwire/internal/config"
	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/team"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/infrastructure/repository/memory"
	"github.com/leagueforge/waiverwire/internal/infrastructure/repository/postgres"
	"github.com/leagueforge/waiverwire/internal/interfaces/httpapi"
	"github.com/leagueforge/waiverwire/internal/platform/cache"
	idgen "github.com/leagueforge/waiverwire/internal/platform/id"
	"github.com/leagueforge/waiverwire/internal/platform/logging"
	"github.com/leagueforge/waiverwire/internal/platform/resilience"
	"github.com/leagueforge/waiverwire/internal/usecase"
)

// App bundles the wired HTTP server with the optional sweep scheduler
// and a close hook for the storage backend.
type App struct {
	Server         *http.Server
	SweepScheduler *jobqueue.SweepScheduler
	close          func() error
}

func (a *App) Close() error {
	if a == nil || a.close == nil {
		return nil
	}
	return a.close()
}

type repositories struct {
	leagues league.Repository
	teams   team.Repository
	rosters roster.Repository
	claims  waiver.Repository
	store   waiver.SettlementStore
	locker  waiver.RunLocker
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, closeStorage, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	var logCache *cache.Store
	if cfg.CacheEnabled {
		logCache = cache.NewStore(cfg.CacheTTL)
	}

	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.teams, repos.rosters)
	claimSvc := usecase.NewClaimService(
		repos.leagues,
		repos.teams,
		repos.rosters,
		repos.claims,
		idgen.NewRandomGenerator("clm"),
		logCache,
		logger,
	)
	settlementSvc := usecase.NewSettlementService(
		repos.leagues,
		repos.teams,
		repos.claims,
		repos.store,
		repos.locker,
		waiver.TieBreak(cfg.WaiverTieBreak),
		logCache,
		logger,
	)

	wardenClient := warden.NewClient(warden.ClientConfig{
		BaseURL:        cfg.WardenBaseURL,
		IntrospectPath: cfg.WardenIntrospectPath,
		Timeout:        cfg.WardenTimeout,
		CacheTTL:       cfg.WardenCacheTTL,
		CacheMaxSize:   cfg.WardenCacheMaxSize,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.WardenCircuitEnabled,
			FailureThreshold: cfg.WardenCircuitFailureCount,
			OpenTimeout:      cfg.WardenCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.WardenCircuitHalfOpenMaxReq,
		},
	}, nil, logger)

	handler := httpapi.NewHandler(leagueSvc, claimSvc, settlementSvc, cfg.SweepWorkers, logger)
	router := httpapi.NewRouter(handler, wardenClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	app := &App{
		Server: server,
		close:  closeStorage,
	}
	if cfg.QStashEnabled {
		publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
		app.SweepScheduler = jobqueue.NewSweepScheduler(publisher)
	}

	return app, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		db, err := connectPostgres(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("postgres storage connected", "db", dbNameFromURL(cfg.DBURL))

		claimRepo := postgres.NewClaimRepository(db)
		return repositories{
			leagues: postgres.NewLeagueRepository(db),
			teams:   postgres.NewTeamRepository(db),
			rosters: postgres.NewRosterRepository(db),
			claims:  claimRepo,
			store:   postgres.NewSettlementStore(db),
			locker:  postgres.NewRunLocker(db),
		}, db.Close, nil
	case config.StorageMemory:
		logger.Info("memory storage selected, seeding demo league")

		teamRepo := memory.NewTeamRepository(memory.SeedTeams())
		rosterRepo := memory.NewRosterRepository(memory.SeedRosters())
		claimRepo := memory.NewClaimRepository()
		return repositories{
			leagues: memory.NewLeagueRepository(memory.SeedLeagues()),
			teams:   teamRepo,
			rosters: rosterRepo,
			claims:  claimRepo,
			store:   memory.NewSettlementStore(teamRepo, rosterRepo, claimRepo),
			locker:  memory.NewRunLocker(),
		}, nil, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func connectPostgres(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
