package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pool-league/external/anubis"
	"github.com/riskibarqy/pool-league/external/jobqueue"
	"github.com/riskibarqy/pool-league/external/paymentgateway"
	"github.com/riskibarqy/pool-league/internal/config"
	"github.com/riskibarqy/pool-league/internal/domain/challenge"
	"github.com/riskibarqy/pool-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/pool-league/internal/domain/ladder"
	"github.com/riskibarqy/pool-league/internal/domain/payment"
	"github.com/riskibarqy/pool-league/internal/domain/settlement"
	"github.com/riskibarqy/pool-league/internal/domain/sharedpot"
	"github.com/riskibarqy/pool-league/internal/domain/venue"
	cacherepo "github.com/riskibarqy/pool-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pool-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pool-league/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/pool-league/internal/platform/cache"
	idgen "github.com/riskibarqy/pool-league/internal/platform/id"
	"github.com/riskibarqy/pool-league/internal/platform/logging"
	"github.com/riskibarqy/pool-league/internal/usecase"
)

// Container holds the services shared by the API and scheduler binaries.
type Container struct {
	Ladder     *usecase.LadderService
	Challenges *usecase.ChallengeService
	Venues     *usecase.VenueService
	SharedPots *usecase.SharedPotService
	Settlement *usecase.SettlementService
	Payments   *usecase.PaymentService
	Jobs       *usecase.JobOrchestratorService

	db     *sqlx.DB
	logger *logging.Logger
}

type repositories struct {
	players    ladder.Repository
	venues     venue.Repository
	challenges challenge.Repository
	games      sharedpot.Repository
	outbox     payment.Outbox
	dispatches jobscheduler.Repository
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	container := &Container{logger: logger}
	repos, err := container.buildRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := settlement.NewEngine(cfg.RateTable(), cfg.SettlementPolicy)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("build settlement engine: %w", err)
	}

	ids := idgen.NewUUIDGenerator()
	queue, err := buildJobQueue(cfg, logger)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("build job queue: %w", err)
	}

	container.Ladder = usecase.NewLadderService(repos.players, logger)
	container.Venues = usecase.NewVenueService(repos.venues, ids, logger)
	container.SharedPots = usecase.NewSharedPotService(repos.games, ids, logger)
	container.Settlement = usecase.NewSettlementService(engine)
	container.Challenges = usecase.NewChallengeService(
		repos.challenges,
		repos.players,
		repos.venues,
		engine,
		queue,
		repos.dispatches,
		ids,
		usecase.ChallengeConfig{
			StakeLimits:   cfg.StakeLimits,
			LadderRules:   cfg.LadderRules,
			HallWinPoints: cfg.HallWinPoints,
			TTL:           cfg.ChallengeTTL,
			SweepWorkers:  cfg.ChallengeSweepWorkers,
		},
		logger,
	)
	container.Payments = usecase.NewPaymentService(
		repos.outbox,
		buildDispatcher(cfg, logger),
		usecase.PaymentConfig{Workers: cfg.PaymentWorkers},
		logger,
	)
	container.Jobs = usecase.NewJobOrchestratorService(
		container.Challenges,
		container.Payments,
		queue,
		repos.dispatches,
		usecase.JobOrchestratorConfig{
			SweepInterval: cfg.JobSweepInterval,
			FlushInterval: cfg.JobFlushInterval,
			SweepBatch:    cfg.JobSweepBatch,
			FlushBatch:    cfg.JobFlushBatch,
		},
		logger,
	)

	return container, nil
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func NewHTTPServer(cfg config.Config, container *Container, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		cfg.AnubisCircuit,
		logger,
	)

	handler := httpapi.NewHandler(
		container.Ladder,
		container.Challenges,
		container.Venues,
		container.SharedPots,
		container.Settlement,
		container.Payments,
		container.Jobs,
		logger,
	)
	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func (c *Container) buildRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	var repos repositories

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := OpenDatabase(cfg)
		if err != nil {
			return repositories{}, err
		}
		c.db = db
		if cfg.DBSeedOnStart {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return repositories{}, fmt.Errorf("seed database: %w", err)
			}
		}
		repos = repositories{
			players:    postgres.NewPlayerRepository(db),
			venues:     postgres.NewVenueRepository(db),
			challenges: postgres.NewChallengeRepository(db),
			games:      postgres.NewSharedPotRepository(db),
			outbox:     postgres.NewPaymentOutbox(db),
			dispatches: postgres.NewJobDispatchRepository(db),
		}
		c.logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", databaseName(cfg.DBURL))
	default:
		store := memory.NewSeededStore()
		repos = repositories{
			players:    memory.NewPlayerRepository(store),
			venues:     memory.NewVenueRepository(store),
			challenges: memory.NewChallengeRepository(store),
			games:      memory.NewSharedPotRepository(store),
			outbox:     memory.NewPaymentOutbox(store),
			dispatches: memory.NewJobDispatchRepository(store),
		}
		c.logger.Info("storage ready", "driver", config.StorageMemory)
	}

	if cfg.CacheEnabled {
		shared := basecache.NewStore(cfg.CacheTTL)
		repos.players = cacherepo.NewPlayerRepository(repos.players, shared)
		repos.venues = cacherepo.NewVenueRepository(repos.venues, shared)
		repos.challenges = cacherepo.NewChallengeRepository(repos.challenges, shared)
	}

	return repos, nil
}

func buildJobQueue(cfg config.Config, logger *logging.Logger) (usecase.JobQueue, error) {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue(), nil
	}
	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)
}

func buildDispatcher(cfg config.Config, logger *logging.Logger) payment.Dispatcher {
	if !cfg.PaymentGatewayEnabled {
		return paymentgateway.NewLogDispatcher(logger)
	}
	return paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:        cfg.PaymentGatewayBaseURL,
		APIKey:         cfg.PaymentGatewayAPIKey,
		Timeout:        cfg.PaymentGatewayTimeout,
		CircuitBreaker: cfg.PaymentCircuit,
	}, logger)
}
