package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/kanban/api/handler"
	"github.com/fastygo/kanban/internal/config"
	"github.com/fastygo/kanban/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/kanban/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/kanban/internal/infrastructure/redis"
	sqlitedb "github.com/fastygo/kanban/internal/infrastructure/sqlite"
	"github.com/fastygo/kanban/internal/middleware"
	"github.com/fastygo/kanban/internal/router"
	"github.com/fastygo/kanban/internal/services/lifecycle"
	"github.com/fastygo/kanban/pkg/httpcontext"
	"github.com/fastygo/kanban/pkg/logger"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/repository/postgres"
	redisRepo "github.com/fastygo/kanban/repository/redis"
	"github.com/fastygo/kanban/repository/sqlite"
	"github.com/fastygo/kanban/usecase"
	authUC "github.com/fastygo/kanban/usecase/auth"
	boardUC "github.com/fastygo/kanban/usecase/board"
	columnUC "github.com/fastygo/kanban/usecase/column"
	"github.com/fastygo/kanban/usecase/ledger"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
	profileUC "github.com/fastygo/kanban/usecase/profile"
	taskUC "github.com/fastygo/kanban/usecase/task"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: serve,
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger error: %w", err)
	}
	return cfg, zapLogger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, zapLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(ctx, cfg.Context.ShutdownTimeout, zapLogger)
	appCtx := manager.Context()

	store, pinger, err := openStore(appCtx, cfg, manager, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return fmt.Errorf("redis connection failed: %w", err)
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pinger, cfg.Database.Driver, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	var cache repository.BoardCache = repository.NopBoardCache{}
	if cfg.Cache.Enabled {
		cache = redisRepo.NewBoardCache(redisClient, cfg.Cache.BoardTTL, zapLogger)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		// Tokens signed with an ephemeral secret do not survive a restart.
		secret = uuid.NewString()
		zapLogger.Warn("JWT_SECRET is not set, using an ephemeral signing secret")
	}

	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.TokenTTL)
	positions := ledger.New(zapLogger)
	resolver := usecase.NewResolver(store)

	authUseCase := authUC.New(store, sessionRepo, authUC.TokenConfig{
		Secret: secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TokenTTL,
	}, zapLogger)
	memberUseCase := membershipUC.New(store, cache, zapLogger)
	profileUseCase := profileUC.New(store, cache, zapLogger)
	boardUseCase := boardUC.New(store, cache, zapLogger)
	columnUseCase := columnUC.New(store, positions, cache, zapLogger)
	taskUseCase := taskUC.New(store, positions, cache, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Board:   apiHandler.NewBoardHandler(boardUseCase, memberUseCase, resolver, ctxAdapter, zapLogger),
		Column:  apiHandler.NewColumnHandler(columnUseCase, memberUseCase, resolver, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, memberUseCase, resolver, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	runErr := manager.Wait()
	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
	return runErr
}

// openStore connects the configured database, applies migrations when enabled
// and registers its shutdown hook.
func openStore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (repository.Store, monitor.Pinger, error) {
	if cfg.Database.Driver == config.DriverSQLite {
		db, err := sqlitedb.Open(cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite connection failed: %w", err)
		}
		manager.Register("sqlite", func(ctx context.Context) error {
			return db.Close()
		})
		if cfg.Migrations.Enabled {
			if err := sqlitedb.RunMigrations(db, zapLogger); err != nil {
				return nil, nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return sqlite.NewStore(db), monitor.SQLPinger{DB: db}, nil
	}

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		return nil, nil, fmt.Errorf("migrations failed: %w", err)
	}
	pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})
	return postgres.NewStore(pool), pool, nil
}
