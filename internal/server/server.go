// Package server wires the store, services and handlers together and runs
// the HTTP server.
//
// This is the composition root: New builds every dependency in one place,
// and each layer only receives the layer below it (handlers get services,
// services get repository interfaces).
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/blog-api/internal/auth"
	"github.com/sakif/blog-api/internal/handler"
	"github.com/sakif/blog-api/internal/middleware"
	"github.com/sakif/blog-api/internal/repository/sqlstore"
	"github.com/sakif/blog-api/internal/service"
	"github.com/sakif/blog-api/internal/validation"
)

// Config holds what the server needs beyond the store.
type Config struct {
	Port            int
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

// Server owns the router and the store; Start closes the store on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqlstore.DB
}

// New builds the dependency graph on top of an open store.
func New(cfg Config, db *sqlstore.DB, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	v := validation.New()
	authService := service.NewAuthService(db.Users(), tokens, passwords, v, logger)
	postService := service.NewPostService(db.Posts(), db.Comments(), v, logger)
	commentService := service.NewCommentService(db.Comments(), db.Posts(), v, logger)

	s.setupRoutes(
		tokens,
		handler.NewAuthHandler(authService, logger),
		handler.NewPostHandler(postService, commentService, logger),
		handler.NewCommentHandler(commentService, logger),
		handler.NewHealthHandler(db, logger),
	)

	return s, nil
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes registers every route.
//
// ROUTES:
//
//	GET    /healthz                  → store liveness
//	POST   /users                    → register
//	POST   /token                    → obtain access + refresh tokens
//	POST   /token/refresh            → new access token
//	GET    /posts, POST /posts       → own posts / create          (auth)
//	GET|PUT|PATCH|DELETE /posts/{id}                               (auth)
//	GET    /posts/{id}/comments      → own comments on a post      (auth)
//	POST   /posts/{id}/comments      → comment on a post           (auth)
//	GET    /comments, POST /comments → own comments / create       (auth)
//	GET|PUT|PATCH|DELETE /comments/{id}                            (auth)
//
// Middleware runs in the order added: request ID, real IP, access log,
// panic recovery, then trailing-slash stripping so /posts/ routes like /posts.
func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	healthHandler *handler.HealthHandler,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.StripSlashes)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Post("/users", authHandler.HandleRegister)
	s.router.Post("/token", authHandler.HandleObtainToken)
	s.router.Post("/token/refresh", authHandler.HandleRefreshToken)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		mountResource(r, "/posts", postHandler, func(r chi.Router) {
			r.Get("/{id}/comments", postHandler.HandleListComments)
			r.Post("/{id}/comments", postHandler.HandleCreateComment)
		})
		mountResource(r, "/comments", commentHandler, nil)
	})
}

// mountResource registers the six ResourceController routes under pattern.
// extra, if non-nil, adds routes to the same subrouter.
func mountResource(r chi.Router, pattern string, c handler.ResourceController, extra func(chi.Router)) {
	r.Route(pattern, func(r chi.Router) {
		r.Get("/", c.HandleList)
		r.Post("/", c.HandleCreate)
		r.Get("/{id}", c.HandleRetrieve)
		r.Put("/{id}", c.HandleUpdate)
		r.Patch("/{id}", c.HandlePartialUpdate)
		r.Delete("/{id}", c.HandleDelete)
		if extra != nil {
			extra(r)
		}
	})
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the store.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
