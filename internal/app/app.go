package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sourcegraph/conc"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/roster-engine/internal/config"
	"github.com/riskibarqy/roster-engine/internal/domain/draft"
	"github.com/riskibarqy/roster-engine/internal/domain/jobscheduler"
	"github.com/riskibarqy/roster-engine/internal/domain/league"
	"github.com/riskibarqy/roster-engine/internal/domain/movebudget"
	"github.com/riskibarqy/roster-engine/internal/domain/player"
	"github.com/riskibarqy/roster-engine/internal/domain/roster"
	"github.com/riskibarqy/roster-engine/internal/domain/waiver"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/lock"
	cacherepo "github.com/riskibarqy/roster-engine/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/roster-engine/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/roster-engine/internal/interfaces/httpapi"
	"github.com/riskibarqy/roster-engine/internal/platform/cache"
	idgen "github.com/riskibarqy/roster-engine/internal/platform/id"
	"github.com/riskibarqy/roster-engine/internal/platform/logging"
	"github.com/riskibarqy/roster-engine/internal/platform/pgdsn"
	"github.com/riskibarqy/roster-engine/internal/platform/resilience"
	"github.com/riskibarqy/roster-engine/internal/usecase"
)

type repositories struct {
	leagues  league.Repository
	teams    roster.Repository
	players  player.Repository
	drafts   draft.Repository
	budgets  movebudget.Repository
	claims   waiver.Repository
	dispatch jobscheduler.Repository
}

// App owns the HTTP server and the background workers of one process.
type App struct {
	Server *http.Server

	ticker    *usecase.DraftTicker
	scheduler *usecase.Scheduler
	closers   []func() error
	logger    *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{logger: logger}
	clock := clockwork.NewRealClock()

	repos, err := app.buildRepositories(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if cfg.CacheEnabled {
		store := cache.NewStoreWithClock(cfg.CacheTTL, clock)
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
	}

	locker, err := app.buildLocker(cfg, clock)
	if err != nil {
		app.Close()
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	budgetSvc := usecase.NewMoveBudgetService(repos.budgets, repos.teams, logger.Named("budget"))
	rosterSvc := usecase.NewRosterService(repos.teams, repos.players, repos.drafts, budgetSvc, usecase.RosterConfig{
		WaiverPeriod: cfg.WaiverPeriod,
		WaiverCutoff: cfg.WaiverCutoff,
	}, logger.Named("roster"))
	draftSvc := usecase.NewDraftService(repos.leagues, repos.teams, repos.players, repos.drafts, rosterSvc, ids, usecase.DraftConfig{
		DefaultRounds:      cfg.DraftDefaultRounds,
		DefaultPickSeconds: cfg.DraftDefaultPickSeconds,
	}, clock, logger.Named("draft"))
	waiverSvc := usecase.NewWaiverService(repos.teams, repos.players, repos.claims, rosterSvc, locker, ids, usecase.WaiverConfig{
		Cutoff:  cfg.WaiverCutoff,
		Workers: cfg.WaiverResolverWorkers,
		LockTTL: cfg.WaiverBatchLockTTL,
	}, logger.Named("waivers"))

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
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
	}
	jobSvc := usecase.NewJobOrchestratorService(waiverSvc, budgetSvc, queue, repos.dispatch, usecase.JobOrchestratorConfig{
		WaiverCutoff: cfg.WaiverCutoff,
	}, logger)

	app.ticker = usecase.NewDraftTicker(draftSvc, repos.drafts, clock, cfg.DraftTickInterval, logger.Named("draft_ticker"))
	if !cfg.QStashEnabled {
		app.scheduler = usecase.NewScheduler(clock, logger.Named("scheduler"), usecase.EngineJobs(jobSvc)...)
	}

	verifier := anubis.NewClient(nil, anubis.Config{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectURL,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.CacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
	}, clock, logger)

	handler := httpapi.NewHandler(rosterSvc, draftSvc, waiverSvc, jobSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return app, nil
}

func (a *App) buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, db.Close)
		return repositories{
			leagues:  postgres.NewLeagueRepository(db),
			teams:    postgres.NewTeamRepository(db),
			players:  postgres.NewPlayerRepository(db),
			drafts:   postgres.NewDraftRepository(db),
			budgets:  postgres.NewMoveBudgetRepository(db),
			claims:   postgres.NewWaiverRepository(db),
			dispatch: postgres.NewJobDispatchRepository(db),
		}, nil
	}

	var (
		leagues []league.League
		teams   []roster.Team
		players []player.Player
	)
	if cfg.SeedDemoData {
		leagues, teams, players = memory.SeedLeagues(), memory.SeedTeams(), memory.SeedPlayers()
	}
	return repositories{
		leagues:  memory.NewLeagueRepository(leagues),
		teams:    memory.NewTeamRepository(teams),
		players:  memory.NewPlayerRepository(players),
		drafts:   memory.NewDraftRepository(),
		budgets:  memory.NewMoveBudgetRepository(),
		claims:   memory.NewWaiverRepository(),
		dispatch: memory.NewJobDispatchRepository(),
	}, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := pgdsn.Normalize(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(pgdsn.DatabaseName(dsn)),
		otelsql.WithQueryFormatter(pgdsn.TraceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (a *App) buildLocker(cfg config.Config, clock clockwork.Clock) (usecase.BatchLocker, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return lock.NewMemoryLocker(clock), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.closers = append(a.closers, client.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return lock.NewRedisLocker(client, cfg.ServiceName+":lock:"), nil
}

// RunWorkers blocks until ctx is cancelled.
func (a *App) RunWorkers(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() {
		_ = a.ticker.Run(ctx)
	})
	if a.scheduler != nil {
		wg.Go(func() {
			_ = a.scheduler.Run(ctx)
		})
	} else {
		a.logger.InfoContext(ctx, "in-process scheduler disabled", "reason", "QSTASH_ENABLED=true")
	}
	wg.Wait()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource failed", "error", err)
		}
	}
	a.closers = nil
}
