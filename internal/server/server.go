package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/ach-dashboard/internal/app/workspace"
	database "github.com/FACorreiaa/ach-dashboard/internal/db"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/apiclient"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/config"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/query"
	"github.com/FACorreiaa/ach-dashboard/internal/pkg/session"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	dbPool   *pgxpool.Pool
	registry *workspace.Registry
	router   http.Handler
}

// New creates a new Server instance with all dependencies
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	storage, err := s.setupStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup session storage: %w", err)
	}

	s.registry = workspace.NewRegistry(workspace.Options{
		API: apiclient.Config{
			BaseURL: cfg.Backend.APIBaseURL,
			Timeout: cfg.Backend.Timeout,
		},
		Storage:      storage,
		Retry:        query.DefaultRetryPolicy(),
		IdleTTL:      cfg.Session.IdleTTL,
		PollInterval: cfg.Session.PollInterval,
		FocusWindow:  cfg.Session.FocusWindow,
		Logger:       logger,
	})
	return s, nil
}

// setupStorage picks where session tokens are persisted between requests and restarts.
func (s *Server) setupStorage(ctx context.Context) (session.Backend, error) {
	if s.cfg.Session.Store != config.SessionStorePostgres {
		s.logger.Info("Using in-memory session storage")
		return session.NewMemoryBackend(s.cfg.Session.PersistTTL), nil
	}

	s.logger.Info("Setting up database connection and migrations")
	pool, err := database.Open(ctx, s.cfg.Repositories.Postgres, s.logger)
	if err != nil {
		return nil, err
	}
	s.dbPool = pool
	s.logger.Info("Database setup completed successfully")
	return session.NewPostgresBackend(pool, s.logger), nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.cfg.Backend.Timeout + 15*time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Registry() *workspace.Registry {
	return s.registry
}

// Close releases the workspaces and the database pool.
func (s *Server) Close() {
	if s.registry != nil {
		s.registry.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}
