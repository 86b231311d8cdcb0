package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/msomdec/event-tracker/internal/config"
	"github.com/msomdec/event-tracker/internal/handler"
	"github.com/msomdec/event-tracker/internal/repository/sqlite"
	"github.com/msomdec/event-tracker/internal/service"
)

func main() {
	configPath := flag.String("config", "event-tracker.yaml", "path to the YAML config file")
	envPath := flag.String("env", ".env", "path to a .env file loaded before reading the environment")
	flag.Parse()

	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(*envPath); err != nil {
		slog.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		slog.Error("invalid environment", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	lvl, _ := cfg.Level()
	level.Set(lvl)
	loc, _ := cfg.Location()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	clk := clock.New()
	guard := service.NewLoginGuard(service.LockoutPolicy{
		MaxAttempts: cfg.Lockout.MaxAttempts,
		Duration:    cfg.Lockout.Duration,
	}, clk)
	notifier := service.NewNotifier(cfg.NotificationBuffer)
	reminderService := service.NewReminderService(db.Reminders(), notifier, clk, loc)
	authService := service.NewAuthService(db.Users(), guard, clk, cfg.JWTSecret, cfg.BcryptCost)
	eventService := service.NewEventService(db.Events(), reminderService, loc)
	authLimiter := service.NewTokenBucket(cfg.RateLimit.Rate, cfg.RateLimit.Capacity, clk)
	defer authLimiter.Stop()

	dispatcher, err := service.NewDispatcher(reminderService, cfg.DispatchSchedule)
	if err != nil {
		slog.Error("failed to create reminder dispatcher", "error", err)
		os.Exit(1)
	}
	dispatcher.Start()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:        authService,
		Events:      eventService,
		Reminders:   reminderService,
		Notifier:    notifier,
		AuthLimiter: authLimiter,
	}, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		slog.Error("dispatcher shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
