package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/domain"
	"marketplace/internal/logger"
	"marketplace/internal/pkg/clock"
	"marketplace/internal/repository"
	"marketplace/internal/seed"
	"marketplace/internal/server"
	"marketplace/internal/service"
	"marketplace/internal/storage"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openStore selects the persistent store named by the configuration.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.Store.Driver {
	case "", "file":
		store := storage.NewFileStore(afero.NewOsFs(), cfg.Store.Path, log)
		log.Info("Using file store", zap.String("path", store.Path()))
		return store, nil
	case "postgres":
		dsn := storage.PostgresDSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.Database, cfg.Database.Schema)
		db, err := storage.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, log); err != nil {
			db.Close()
			return nil, err
		}
		if cfg.IsDevelopment() {
			if err := database.GetMigrationStatus(db); err != nil {
				log.Warn("Could not read migration status", zap.Error(err))
			}
		}
		log.Info("Using postgres store", zap.String("host", cfg.Database.Host))
		return storage.NewPostgresStore(db, log), nil
	default:
		return nil, errors.Newf("unknown store driver %q", cfg.Store.Driver)
	}
}

// seedSource returns the bundled seeds unless a seed directory is configured.
func seedSource(cfg *config.Config, log *zap.Logger, clk clock.Clock) storage.SeedFunc {
	if cfg.Store.SeedDir != "" {
		return seed.NewDirLoader(afero.NewOsFs(), cfg.Store.SeedDir, log, clk).Load
	}
	return seed.NewLoader(log, clk).Load
}

// openCatalog initializes the store and loads it. A corrupt document is
// replaced by the seeds only when reseed is set.
func openCatalog(ctx context.Context, store storage.Store, seedFn storage.SeedFunc, reseed bool, log *zap.Logger) (*repository.Catalog, error) {
	if err := store.Initialize(ctx, seedFn); err != nil {
		return nil, errors.Wrap(err, "initialize store")
	}

	catalog, err := repository.NewCatalog(ctx, store, log)
	if err == nil || !errors.Is(err, domain.ErrCorruptStore) || !reseed {
		return catalog, err
	}

	log.Warn("Persisted catalog is corrupt, restoring seeds", zap.Error(err))
	if err := store.Save(ctx, seedFn()); err != nil {
		return nil, errors.Wrap(err, "reseed store")
	}
	return repository.NewCatalog(ctx, store, log)
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("store", cfg.Store.Driver),
	)

	ctx := context.Background()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}

	catalog, err := openCatalog(ctx, store, seedSource(cfg, log, clock.NewRealClock()), cfg.Store.ReseedOnCorrupt, log)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	deps := server.Dependencies{Catalog: catalog, Store: store}

	if cfg.Redis.Addr != "" {
		deps.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, rate limiting fails open", zap.Error(err))
		}
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}

	if cfg.OwnerAuthEnabled() {
		deps.Owners = service.NewOwnerService(
			cfg.Owner.Username,
			cfg.Owner.PasswordHash,
			cfg.JWT.Secret,
			time.Duration(cfg.JWT.AccessExpiry)*time.Minute,
			clock.NewRealClock(),
		)
		log.Info("Owner sessions enabled", zap.String("owner", cfg.Owner.Username))
	}

	srv := server.NewServer(cfg, log, deps)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
