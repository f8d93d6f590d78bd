// Package server wires the application together: database, services,
// handlers, middleware, and routes, plus startup seeding and graceful
// shutdown. It is the composition root; no business logic lives here.
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

	"github.com/sakif/stackit/internal/apperror"
	"github.com/sakif/stackit/internal/auth"
	"github.com/sakif/stackit/internal/handler"
	"github.com/sakif/stackit/internal/middleware"
	"github.com/sakif/stackit/internal/model"
	sqliteRepo "github.com/sakif/stackit/internal/repository/sqlite"
	"github.com/sakif/stackit/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port          int
	DBPath        string
	JWTSecret     string
	AdminPassword string // seeded admin account password
	SecureCookies bool   // set behind TLS

	// GitHub OAuth; login via GitHub is disabled when ClientID is empty.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New opens the database, wires all layers, registers routes, and seeds
// the default categories and admin account.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}

	s.setupRoutes()

	if err := s.seedDefaults(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding defaults: %w", err)
	}

	return s, nil
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	notificationService := service.NewNotificationService(s.db, s.logger)
	authService := service.NewAuthService(s.db, s.tokens, passwords, s.logger)
	questionService := service.NewQuestionService(s.db, s.db, s.db, s.db, s.db, s.db, s.logger)
	answerService := service.NewAnswerService(s.db, s.db, s.db, s.db, notificationService, s.logger)
	voteService := service.NewVoteService(s.db, s.db, s.db, s.db, notificationService, s.logger)
	adminService := service.NewAdminService(s.db, s.db, s.db, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.logger, s.config.SecureCookies)
	questionHandler := handler.NewQuestionHandler(questionService, answerService, authService)
	answerHandler := handler.NewAnswerHandler(answerService)
	voteHandler := handler.NewVoteHandler(voteService)
	profileHandler := handler.NewProfileHandler(authService, questionService, answerService)
	adminHandler := handler.NewAdminHandler(adminService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	requireAuth := auth.RequireAuth(s.tokens)
	optionalAuth := auth.OptionalAuth(s.tokens)

	// Per-IP throttle on the spam-prone write endpoints.
	writeLimiter := middleware.NewIPRateLimiter(1, 5)

	// Public routes.
	s.router.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", questionHandler.Index)
		r.Get("/question/{id}", questionHandler.View)
		r.Get("/profile/{username}", profileHandler.View)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(writeLimiter.Limit)
		r.Post("/register", authHandler.Register)
	})
	s.router.Post("/login", authHandler.Login)
	s.router.Get("/logout", authHandler.Logout)
	s.router.Get("/auth/github", authHandler.GitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.GitHubCallback)

	// Authenticated routes.
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", authHandler.Me)

		r.Group(func(r chi.Router) {
			r.Use(writeLimiter.Limit)
			r.Post("/ask", questionHandler.Ask)
			r.Post("/answer/{questionID}", answerHandler.Post)
		})

		r.Post("/question/edit/{id}", questionHandler.Edit)
		r.Post("/question/delete/{id}", questionHandler.Delete)

		r.Post("/answer/edit/{id}", answerHandler.Edit)
		r.Post("/answer/delete/{id}", answerHandler.Delete)
		r.Post("/answer/accept/{id}", answerHandler.Accept)

		r.Post("/vote", voteHandler.Cast)

		r.Get("/admin", adminHandler.Dashboard)
		r.Get("/admin/approve/{type}/{id}", adminHandler.Approve)

		r.Get("/notifications", notificationHandler.List)
		r.Get("/notifications/mark_read/{id}", notificationHandler.MarkRead)
	})
}

// seedDefaults creates the default categories and the admin account on
// first run. Re-running against an existing database is a no-op.
func (s *Server) seedDefaults(ctx context.Context) error {
	existing, err := s.db.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	if len(existing) == 0 {
		defaults := []model.Category{
			{Name: "General", Description: "General programming questions"},
			{Name: "Python", Description: "Python programming questions"},
			{Name: "JavaScript", Description: "JavaScript programming questions"},
			{Name: "Web Development", Description: "HTML, CSS, and web development"},
			{Name: "Database", Description: "Database related questions"},
			{Name: "Mobile Development", Description: "Mobile app development"},
		}
		for i := range defaults {
			if err := s.db.CreateCategory(ctx, &defaults[i]); err != nil {
				return fmt.Errorf("creating category %q: %w", defaults[i].Name, err)
			}
		}
		s.logger.Info("seeded default categories", slog.Int("count", len(defaults)))
	}

	if _, err := s.db.GetUserByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("looking up admin user: %w", err)
	}

	password := s.config.AdminPassword
	if password == "" {
		password = "admin123" // dev fallback, override with ADMIN_PASSWORD
		s.logger.Warn("ADMIN_PASSWORD not set, using default admin password")
	}
	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &model.User{
		Username:     "admin",
		Email:        "admin@stackit.com",
		PasswordHash: hash,
		IsAdmin:      true,
		Bio:          "System Administrator",
	}
	if err := s.db.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	s.logger.Info("seeded admin user", slog.String("userID", admin.ID))

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully and closes the database.
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

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
