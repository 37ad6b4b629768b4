package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/settings"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logging.New(cfg.LogLevel, cfg.AppName)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound calls; each call also gets its own context deadline.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Settings persistence.
	backend, closeBackend, err := openSettingsBackend(cfg)
	if err != nil {
		lg.Fatal("failed to open settings backend", zap.String("backend", cfg.SettingsBackend), zap.Error(err))
	}
	defer closeBackend()
	settingsStore := settings.NewStore(ctx, backend, lg.Named("settings"))

	// Upstreams.
	geo := providers.NewMapsCoProvider(httpClient, cfg.GeocodeBaseURL, cfg.GeocodeAPIKey, cfg.GeocodeRPS)
	forecaster := providers.NewOpenMeteoProvider(httpClient, cfg.ForecastBaseURL)
	fetcher := weather.NewFetcher(geo, forecaster, cfg.HTTPTimeout, lg.Named("fetcher"))

	var searcher location.Searcher = geo
	if cfg.GoogleGeocoderAPIKey != "" {
		searcher = providers.NewGoogleSearchProvider(cfg.GoogleGeocoderAPIKey)
	}

	// Record history with configured retention.
	history := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// The fetch session owns the retry state machine.
	session := dashboard.NewSession(fetcher,
		dashboard.WithLogger(lg.Named("session")),
		dashboard.WithStore(history),
		dashboard.WithMaxRetries(cfg.MaxRetries),
		dashboard.WithRetryDelay(cfg.RetryBaseDelay),
	)
	defer session.Close()

	search := location.NewSearchBox(searcher, session.Load, lg.Named("search"))

	var positioner location.Positioner = location.NewStaticPositioner(cfg.Position)
	if cfg.PositionSource == "ip" {
		positioner = providers.NewIPPositioner(httpClient, cfg.PositionURL)
	}
	go func() {
		if err := session.Locate(ctx, positioner); err != nil {
			lg.Warn("startup positioning failed", zap.Error(err))
		}
	}()

	// Periodic refresh of the current coordinate.
	sched := scheduler.New(session, cfg.RefreshInterval, lg.Named("scheduler"))
	if err := sched.Start(); err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.AppName,
			"phase":   session.State().Phase,
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Session:  session,
		Search:   search,
		Settings: settingsStore,
		History:  history,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("fiber server stopped", zap.Error(err))
		}
	}()
	lg.Info("weather dashboard listening", zap.String("port", cfg.Port))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", zap.Error(err))
	}
}

func openSettingsBackend(cfg *config.AppConfig) (settings.Backend, func(), error) {
	switch cfg.SettingsBackend {
	case config.BackendSQLite:
		b, err := settings.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return b, closer(b), nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b := settings.NewRedisBackend(client, cfg.RedisKeyPrefix)
		return b, closer(b), nil
	case config.BackendFile:
		return settings.NewFileBackend(cfg.SettingsDir), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown settings backend %q", cfg.SettingsBackend)
	}
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}
