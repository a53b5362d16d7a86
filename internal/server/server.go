// Package server is the composition root: it opens the store, builds the
// services and handlers, mounts the routes and runs the HTTP server until a
// shutdown signal arrives.
//
//	config → store (sqlite | postgres) → services → handlers → chi router
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devlink/internal/auth"
	"github.com/sakif/devlink/internal/config"
	"github.com/sakif/devlink/internal/github"
	"github.com/sakif/devlink/internal/handler"
	"github.com/sakif/devlink/internal/middleware"
	"github.com/sakif/devlink/internal/repository"
	pgRepo "github.com/sakif/devlink/internal/repository/postgres"
	sqliteRepo "github.com/sakif/devlink/internal/repository/sqlite"
	"github.com/sakif/devlink/internal/service"
	"github.com/sakif/devlink/internal/validate"
)

// Server owns the store and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured store and wires the server around it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// OpenStore connects to the database selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := pgRepo.New(ctx, cfg.URL, cfg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return db, nil
	case config.DriverSQLite:
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewWithStore wires the server around an already open store. The server
// takes ownership of store.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes builds the dependency graph and mounts every route.
//
//	POST   /api/users                         register
//	GET    /api/auth                          current user        (auth)
//	POST   /api/auth                          login
//	GET    /api/profile                       list profiles
//	POST   /api/profile                       upsert own profile  (auth)
//	DELETE /api/profile                       delete own profile  (auth)
//	GET    /api/profile/me                    own profile         (auth)
//	GET    /api/profile/user/{user_id}        profile by user
//	GET    /api/profile/github/{username}     GitHub repositories
//	PUT    /api/profile/experience            add experience      (auth)
//	DELETE /api/profile/experience/{exp_id}   remove experience   (auth)
//	PUT    /api/profile/education             add education       (auth)
//	DELETE /api/profile/education/{edu_id}    remove education    (auth)
//	*      /api/posts/...                     posts               (auth)
//	GET    /healthz                           store liveness
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.Auth.BcryptCost)
	v := validate.New()
	gh := github.NewClient(github.Config{
		BaseURL: s.config.GitHub.BaseURL,
		Token:   s.config.GitHub.Token,
		Timeout: s.config.GitHub.Timeout,
	}, s.logger)

	users := s.store.Users()
	authHandler := handler.NewAuthHandler(
		service.NewAuthService(users, tokens, passwords, v, s.logger), s.logger)
	profileHandler := handler.NewProfileHandler(
		service.NewProfileService(s.store.Profiles(), users, gh, v, s.logger), s.logger)
	postHandler := handler.NewPostHandler(
		service.NewPostService(s.store.Posts(), users, v, s.logger), s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.HandleRegister)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/", authHandler.HandleLogin)
			r.With(requireAuth).Get("/", authHandler.HandleMe)
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profileHandler.HandleList)
			r.Get("/user/{user_id}", profileHandler.HandleGetByUser)
			r.Get("/github/{username}", profileHandler.HandleGitHubRepos)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", profileHandler.HandleGetMine)
				r.Post("/", profileHandler.HandleUpsert)
				r.Delete("/", profileHandler.HandleDelete)
				r.Put("/experience", profileHandler.HandleAddExperience)
				r.Delete("/experience/{exp_id}", profileHandler.HandleRemoveExperience)
				r.Put("/education", profileHandler.HandleAddEducation)
				r.Delete("/education/{edu_id}", profileHandler.HandleRemoveEducation)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", postHandler.HandleCreate)
			r.Get("/", postHandler.HandleList)
			r.Get("/{id}", postHandler.HandleGet)
			r.Delete("/{id}", postHandler.HandleDelete)
			r.Put("/like/{id}", postHandler.HandleLike)
			r.Put("/unlike/{id}", postHandler.HandleUnlike)
			r.Post("/comment/{id}", postHandler.HandleComment)
			r.Delete("/comment/{id}/{comment_id}", postHandler.HandleRemoveComment)
		})
	})

	return nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to the configured shutdown timeout and closes the store.
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", s.config.Database.Driver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
