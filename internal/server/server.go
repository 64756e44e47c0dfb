// Package server wires the application together and runs the HTTP server.
// It is the composition root: repositories, services, handlers, and
// middleware are all assembled here, and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Akshit358/Job-Tracker-CRM/internal/auth"
	"github.com/Akshit358/Job-Tracker-CRM/internal/config"
	"github.com/Akshit358/Job-Tracker-CRM/internal/handler"
	"github.com/Akshit358/Job-Tracker-CRM/internal/mailer"
	"github.com/Akshit358/Job-Tracker-CRM/internal/middleware"
	sqliteRepo "github.com/Akshit358/Job-Tracker-CRM/internal/repository/sqlite"
	"github.com/Akshit358/Job-Tracker-CRM/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds a fully wired Server from config. Each layer receives only
// what it needs: services get repository interfaces, handlers get
// services, and nothing below the handler layer sees HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     s.cfg.SMTPHost,
		Port:     s.cfg.SMTPPort,
		Username: s.cfg.SMTPUsername,
		Password: s.cfg.SMTPPassword,
		From:     s.cfg.EmailFrom,
	})
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}
	dispatcher := mailer.NewDispatcher(smtp, s.db.EmailLogs, s.logger)

	authService := service.NewAuthService(s.db.Users, dispatcher, tokens, s.logger, s.cfg.FrontendURL)
	appService := service.NewApplicationService(s.db.Applications, s.db.Activities, s.logger)
	analyticsService := service.NewAnalyticsService(s.db.Applications, s.db.Users, s.db.Analytics, s.logger)
	adminService := service.NewAdminService(s.db.Users, dispatcher, s.db.EmailLogs, s.logger)

	authHandler := handler.NewAuthHandler(authService)
	appHandler := handler.NewApplicationHandler(appService)
	adminHandler := handler.NewAdminHandler(adminService, analyticsService)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/verify-email", authHandler.HandleVerifyEmail)
			r.Post("/password-reset", authHandler.HandlePasswordResetRequest)
			r.Post("/password-reset/confirm", authHandler.HandlePasswordResetConfirm)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Get("/me", authHandler.HandleMe)
				r.Patch("/me", authHandler.HandleUpdateMe)
				r.Post("/password", authHandler.HandleChangePassword)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/", appHandler.HandleList)
			r.Post("/", appHandler.HandleCreate)
			r.Get("/statistics", appHandler.HandleStatistics)
			r.Get("/{id}", appHandler.HandleGet)
			r.Put("/{id}", appHandler.HandleUpdate)
			r.Patch("/{id}", appHandler.HandleUpdate)
			r.Get("/{id}/activities", appHandler.HandleActivities)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Use(auth.RequireAdmin())
			r.Get("/dashboard", adminHandler.HandleDashboard)
			r.Get("/users", adminHandler.HandleListUsers)
			r.Get("/users/{id}", adminHandler.HandleGetUser)
			r.Post("/users/{id}/deactivate", adminHandler.HandleDeactivateUser)
			r.Post("/users/{id}/activate", adminHandler.HandleActivateUser)
			r.Delete("/users/{id}", adminHandler.HandleDeleteUser)
			r.Post("/broadcast", adminHandler.HandleBroadcast)
			r.Get("/emails", adminHandler.HandleEmailLogs)
		})
	})

	return nil
}

// Start runs the server until a shutdown signal arrives, then drains
// in-flight requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
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
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
