package server

import (
	"net/http"
	"time"

	"marketplace/internal/config"
	custommiddleware "marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"
	"marketplace/internal/storage"
	"marketplace/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LivenessMessage is served on GET /
const LivenessMessage = "Catalog backend en línea"

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  storage.Store
	redis  *redis.Client
}

// Dependencies are the collaborators wired into the router. Redis and Owners
// are optional; nil disables rate limiting and owner sessions respectively.
type Dependencies struct {
	Catalog *repository.Catalog
	Store   storage.Store
	Redis   *redis.Client
	Owners  service.OwnerService
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	router := NewRouter(cfg, logger, deps)

	return &Server{
		Server: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		store:  deps.Store,
		redis:  deps.Redis,
	}
}

// NewRouter builds the full HTTP handler tree
func NewRouter(cfg *config.Config, logger *zap.Logger, deps Dependencies) chi.Router {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware())
	router.Use(custommiddleware.Preflight)

	router.NotFound(custommiddleware.NotFoundHandler)
	router.MethodNotAllowed(custommiddleware.NotFoundHandler)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(LivenessMessage))
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	var guards []func(http.Handler) http.Handler
	if deps.Owners != nil {
		transport.NewSessionHandler(deps.Owners, logger).RegisterRoutes(router)
		guards = append(guards, custommiddleware.OwnerAuthMiddleware(deps.Owners, logger))
	}
	if deps.Redis != nil {
		guards = append(guards, custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "catalog_rate_limit",
		}, logger))
	}

	catalogHandler := transport.NewCatalogHandler(deps.Catalog.Products(), deps.Catalog.Affiliates(), logger)
	catalogHandler.RegisterRoutes(router, chain(guards))

	return router
}

func chain(guards []func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(guards) - 1; i >= 0; i-- {
			next = guards[i](next)
		}
		return next
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close store", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
