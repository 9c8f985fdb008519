package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/earn"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/fraud"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/giveaway"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/store"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/memory"
	timeprovider "github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/config"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/seed"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(logger.Options{
		Production:  cfg.Logger.Format != "console",
		Level:       cfg.Logger.Level,
		OutputPaths: cfg.Logger.Output,
		ServiceName: cfg.Logger.ServiceName,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Service stopped with error", map[string]any{"error": err.Error()})
		_ = appLogger.Flush()
		os.Exit(1)
	}
}

// storage is the persistence driver selected by configuration
type storage struct {
	uow   persistence.UnitOfWork
	probe handler.DatabaseProbe
	close func() error
}

func openStorage(ctx context.Context, cfg *config.Config, appLogger coreport.Logger, tp coreport.TimeProvider) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		appLogger.Warn("Using in-memory storage, data is lost on restart", nil)
		return &storage{uow: memory.NewStore(appLogger), close: func() error { return nil }}, nil
	}

	manager := database.NewManager(database.FromAppConfig(cfg.Database), appLogger, tp)
	if err := manager.Connect(ctx); err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := manager.Migrate(ctx); err != nil {
			_ = manager.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return &storage{uow: manager.CreateUnitOfWork(), probe: manager, close: manager.Close}, nil
}

func openGate(ctx context.Context, cfg config.RedisConfig, tp coreport.TimeProvider) (coreport.CompletionGate, *redis.Client, error) {
	if !cfg.Enabled {
		return cache.NoopGate{}, nil, nil
	}
	client, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisGate(client, cfg.KeyPrefix, tp), client, nil
}

// closeStorage waits for pending fraud flag writes, then closes storage.
// It runs on every exit path of run, including a failed listener.
func closeStorage(st *storage, flags *fraud.Recorder, appLogger coreport.Logger) {
	if flags != nil {
		flags.Wait()
	}
	if err := st.close(); err != nil {
		appLogger.Error("Failed to close storage", map[string]any{"error": err.Error()})
	}
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
		if cfg.Admin.Token == "" {
			appLogger.Warn("Admin token is not set, admin routes are disabled", nil)
		}
		if mode := strings.ToLower(cfg.Database.SSLMode); cfg.Database.Driver == config.DriverPostgres && mode == "disable" {
			appLogger.Warn("Database SSL is disabled in production", nil)
		}
	}

	ctx := context.Background()
	tp := timeprovider.NewRealTimeProvider()

	st, err := openStorage(ctx, cfg, appLogger, tp)
	if err != nil {
		return err
	}
	var flags *fraud.Recorder
	defer func() { closeStorage(st, flags, appLogger) }()

	gate, redisClient, err := openGate(ctx, cfg.Redis, tp)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	policy := cfg.Economy.Policy()
	runner := txn.NewRunner(st.uow, tp, appLogger, cfg.Transaction.RunnerConfig())
	ldg := ledger.NewLedger(runner, tp, appLogger)
	devices := fraud.NewDeviceTracker(st.uow, tp, appLogger)
	flags = fraud.NewRecorder(st.uow, tp, appLogger)

	users := user.NewUserUseCase(runner, ldg, policy, tp, appLogger)
	earnService := earn.NewService(runner, ldg, devices, flags, gate, policy, tp, appLogger)
	storeService := store.NewService(runner, ldg, tp, appLogger)
	giveawayService := giveaway.NewService(runner, ldg, gate, policy, tp, appLogger)

	if cfg.Seed.Enabled {
		err := seed.NewSeeder(runner, users, tp, appLogger).Run(ctx, seed.Options{
			GiveawayBonusEntries: cfg.Seed.GiveawayBonusEntries,
			GiveawayDuration:     cfg.Seed.GiveawayDuration,
			DemoUserIDs:          cfg.Seed.DemoUserIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to seed reference data: %w", err)
		}
	}

	router := routes.NewRouter(routes.Handlers{
		User:     handler.NewUserHandler(users, appLogger),
		Earn:     handler.NewEarnHandler(earnService, ldg, appLogger),
		Store:    handler.NewStoreHandler(storeService, appLogger),
		Giveaway: handler.NewGiveawayHandler(giveawayService, appLogger),
		Admin:    handler.NewAdminHandler(users, storeService, appLogger),
		Health:   handler.NewHealthHandler(cfg.Database.Driver, st.probe),
	}, appLogger, tp, cfg.Admin.Token, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":   server.Addr,
			"env":    cfg.Environment,
			"driver": cfg.Database.Driver,
			"redis":  cfg.Redis.Enabled,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		appLogger.Info("Shutting down server...", map[string]any{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
	return nil
}
