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

	"github.com/gofiber/fiber/v2"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	httpapi "github.com/i474232898/weather-records/internal/api/http"
	"github.com/i474232898/weather-records/internal/config"
	"github.com/i474232898/weather-records/internal/database"
	"github.com/i474232898/weather-records/internal/geocoding"
	"github.com/i474232898/weather-records/internal/records"
	"github.com/i474232898/weather-records/internal/scheduler"
	"github.com/i474232898/weather-records/internal/store"
	"github.com/i474232898/weather-records/internal/weather"
	"github.com/i474232898/weather-records/internal/weather/providers"
)

// loadConfig reads configuration and installs the JSON slog handler.
func loadConfig(c *cli.Command) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	return cfg, nil
}

// openStore returns a gorm-backed store when DATABASE_URL is set and the
// in-memory store otherwise. The returned db is nil for the memory store.
func openStore(ctx context.Context, cfg *config.AppConfig) (records.Store, *gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set; records are kept in memory only")
		return store.NewMemoryStore(), nil, nil
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	gs := store.NewGormStore(db)
	if err := gs.Migrate(ctx); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return gs, db, nil
}

func poolConfig(cfg *config.AppConfig) database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	}
}

func newGeocoder(cfg *config.AppConfig) geocoding.Geocoder {
	if cfg.GeocoderProvider == config.GeocoderGoogle {
		return geocoding.NewGoogle(cfg.GoogleAPIKey, cfg.GeocodeTimeout)
	}
	return geocoding.NewOpenMeteo(cfg.GeocodeURL, cfg.ReverseGeocodeURL, cfg.UserAgent, cfg.GeocodeTimeout)
}

func newWeatherProvider(cfg *config.AppConfig) weather.Provider {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.WeatherTimeout,
	}
	if cfg.WeatherProvider == config.WeatherOpenMeteo {
		return providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoURL, cfg.UserAgent)
	}
	return providers.NewMetNoProvider(httpClient, cfg.WeatherURL, cfg.UserAgent)
}

func serve(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	st, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	svc := records.NewService(st, newGeocoder(cfg), weather.NewService(newWeatherProvider(cfg)))

	sched := scheduler.New(svc, cfg.SearchRetention, cfg.PruneInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(svc, httpapi.Options{
		SearchListDefault: cfg.SearchListDefault,
		SearchListMax:     cfg.SearchListMax,
		RecordPageLimit:   cfg.RecordPageLimit,
		AccessLog:         true,
	})

	// Wait for termination signal
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServer(sigCtx, app, ":"+cfg.Port)
}

// runServer listens on addr until ctx is done, then shuts the app down. A
// listener that fails to start is returned immediately.
func runServer(ctx context.Context, app *fiber.App, addr string) error {
	listenErr := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", addr))
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", slog.String("error", err.Error()))
	}
	return nil
}

func migrate(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := store.NewGormStore(db).Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("schema up to date")
	return nil
}

func prune(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for prune")
	}

	st, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	retention := c.Duration("older-than")
	n, err := st.PruneSearches(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		return err
	}
	slog.Info("pruned searches", slog.Int64("deleted", n), slog.Duration("older_than", retention))
	return nil
}
