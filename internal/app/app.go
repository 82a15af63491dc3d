package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/kirinyoku/eventmarket/internal/config"
	"github.com/kirinyoku/eventmarket/internal/postgres"
	"github.com/kirinyoku/eventmarket/internal/queue"
	"github.com/kirinyoku/eventmarket/internal/redis"
	postgresrepo "github.com/kirinyoku/eventmarket/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/eventmarket/internal/repository/redis"
	"github.com/kirinyoku/eventmarket/internal/service"
	"github.com/kirinyoku/eventmarket/internal/service/booking"
	"github.com/kirinyoku/eventmarket/internal/service/catalog"
	"github.com/kirinyoku/eventmarket/internal/service/dashboard"
	httpgin "github.com/kirinyoku/eventmarket/internal/transport/http/gin"
)

// submitRateScope namespaces the booking submission limiter keys.
const submitRateScope = "submit"

type App struct {
	cfg         *config.Config
	logger      *slog.Logger
	httpServer  *http.Server
	queueServer *queue.Server
	queueClient *queue.Client
	pool        *pgxpool.Pool
	rdb         *goredis.Client
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	pgxPool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, pgxPool, logger); err != nil {
			pgxPool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	rdb, err := redis.New(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	queueCfg := queue.Config{
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Queue.RedisDB,
		Concurrency:   cfg.Queue.Concurrency,
		MaxRetry:      cfg.Queue.MaxRetry,
		TaskTimeout:   cfg.Queue.TaskTimeout,
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	pubsub := redisrepo.NewCustomerPubSub(rdb)
	queueClient := queue.NewClient(queueCfg)

	infra := service.Infra{
		Store:    store,
		Cache:    cache,
		PubSub:   pubsub,
		Sessions: redisrepo.NewSessionStore(rdb, cfg.Dashboard.SessionTTL),
		Guard:    redisrepo.NewSubmissionGuard(rdb, cfg.Dashboard.SubmissionTTL),
		Queue:    queueClient,
	}
	if cfg.Dashboard.SubmitLimit > 0 {
		infra.Limiter = redisrepo.NewSlidingWindowLimiter(
			rdb,
			submitRateScope,
			cfg.Dashboard.SubmitLimit,
			cfg.Dashboard.SubmitWindow,
		)
	}

	// Initialize services
	services := service.NewServices(infra, service.Config{
		Catalog: catalog.Config{
			ServicesTTL:  cfg.Cache.ServicesTTL,
			ProvidersTTL: cfg.Cache.ProvidersTTL,
			ScheduleTTL:  cfg.Cache.ScheduleTTL,
		},
		Dashboard: dashboard.Config{
			OptimisticWindow: cfg.Dashboard.OptimisticWindow,
		},
	}, logger)

	// Initialize booking worker
	handler := queue.NewHandler(
		services.Bookings,
		services.Dashboard,
		booking.IsRejection,
		[]error{
			booking.ErrAlreadyBooked,
			booking.ErrSlotTaken,
			booking.ErrServiceUnavailable,
			booking.ErrServiceNotFound,
			booking.ErrInvalidBooking,
		},
		logger,
	)

	// Initialize Gin router
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, cfg.Dashboard.IdempotencyTTL)
	router := httpgin.NewRouter(
		httpgin.RouterConfig{AllowOrigins: cfg.Server.AllowOrigins},
		services,
		idempotencyStore,
		pubsub,
		logger,
	)

	// Event streams never finish on their own; their requests are
	// cancelled once shutdown starts.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	httpServer.RegisterOnShutdown(cancelRequests)

	return &App{
		cfg:         cfg,
		logger:      logger,
		httpServer:  httpServer,
		queueServer: queue.NewServer(queueCfg, handler, logger),
		queueClient: queueClient,
		pool:        pgxPool,
		rdb:         rdb,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Start booking worker
	g.Go(func() error {
		a.logger.Info("booking worker started", "concurrency", a.cfg.Queue.Concurrency)
		if err := a.queueServer.Run(gCtx); err != nil {
			return fmt.Errorf("failed to run booking worker: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if err := a.queueClient.Close(); err != nil {
		a.logger.Warn("failed to close queue client", "error", err)
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("failed to close redis", "error", err)
	}
	a.pool.Close()
}
