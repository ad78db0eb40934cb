package main

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

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/authz"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/handler"
	"github.com/armahof/supportdesk/internal/infra"
	"github.com/armahof/supportdesk/internal/repository"
	"github.com/armahof/supportdesk/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Apply migrations
	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Repositories
	userRepo := repository.NewPgAdminUserRepository()
	roleRepo := repository.NewPgRoleRepository()
	sessionRepo := repository.NewPgSessionRepository()
	permRepo := repository.NewPgPermissionRepository()
	kvRepo := repository.NewPgKVStoreRepository()
	caseRepo := repository.NewPgSupportCaseRepository()
	vehicleRepo := repository.NewPgVehicleRepository()
	reflector := repository.NewReflector()

	// Core services
	checker := authz.NewService(pool, permRepo)
	sessions := auth.NewSessionManager(pool, sessionRepo, cfg.SessionTTL, cfg.SecureCookies)
	authSvc := service.NewAuthService(pool, userRepo)
	playerSvc := service.NewPlayerService(pool, pool, kvRepo, caseRepo, vehicleRepo, checker)

	// Handlers
	renderer, err := handler.NewRenderer(sessions, logger)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	authHandler := handler.NewAuthHandler(authSvc, sessions, renderer)
	tablesHandler := handler.NewTablesHandler(pool, reflector, checker, sessions, renderer)
	adminHandler := handler.NewAdminHandler(pool, pool, userRepo, roleRepo, permRepo, reflector, checker, sessions, renderer)
	playersHandler := handler.NewPlayersHandler(playerSvc, sessions, renderer)
	supportHandler := handler.NewSupportHandler(pool, caseRepo, kvRepo, sessions, renderer)
	vehiclesHandler := handler.NewVehiclesHandler(pool, vehicleRepo, sessions, renderer)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Public routes
	r.Get("/", authHandler.Home)
	r.Get("/login", authHandler.ShowLogin)
	r.Post("/login", authHandler.Login)

	// Session-gated routes
	r.Group(func(r chi.Router) {
		r.Use(handler.RequireUser(sessions, userRepo, pool))

		r.Post("/logout", authHandler.Logout)

		r.Get("/tables", tablesHandler.List)
		r.Route("/table/{name}", func(r chi.Router) {
			r.Get("/", tablesHandler.Show)
			r.Post("/create", tablesHandler.CreateRow)
			r.Post("/update", tablesHandler.UpdateRow)
			r.Post("/delete", tablesHandler.DeleteRow)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", adminHandler.Dashboard)

			r.Get("/users", adminHandler.Users)
			r.Post("/users/create", adminHandler.UserCreate)
			r.Post("/users/{id}/toggle", adminHandler.UserToggle)
			r.Post("/users/{id}/roles/add", adminHandler.UserRoleAdd)
			r.Post("/users/{id}/roles/remove", adminHandler.UserRoleRemove)

			r.Get("/roles", adminHandler.Roles)
			r.Post("/roles/create", adminHandler.RoleCreate)

			r.Get("/permissions", adminHandler.Permissions)
			r.Post("/permissions/save", adminHandler.PermissionsSave)

			r.Route("/players", func(r chi.Router) {
				r.Use(handler.RequirePanel(checker, renderer, domain.PanelAccess))

				r.Get("/", playersHandler.List)
				r.Route("/{uid}", func(r chi.Router) {
					r.Get("/", playersHandler.Detail)
					r.Post("/info/save/{side}", playersHandler.InfoSave)

					r.Post("/support/create", supportHandler.Create)
					r.Get("/support/{id}/edit", supportHandler.Edit)
					r.Post("/support/{id}/update", supportHandler.Update)
					r.Post("/support/{id}/toggle", supportHandler.ToggleStatus)
					r.Post("/support/{id}/delete", supportHandler.Delete)

					r.Get("/vehicles/{id}/edit", vehiclesHandler.Edit)
					r.Post("/vehicles/{id}/update", vehiclesHandler.Update)
					r.Post("/vehicles/{id}/qa/{action}", vehiclesHandler.QuickAction)
				})
			})
		})
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("console server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
