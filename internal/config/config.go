package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	GeocoderOpenMeteo = "openmeteo"
	GeocoderGoogle    = "google"

	WeatherMetNo     = "metno"
	WeatherOpenMeteo = "openmeteo"
)

type AppConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8080"`
	DatabaseURL string `yaml:"database-url" env:"DATABASE_URL"`

	// Postgres pool sizing; ignored by the in-memory store.
	DBMaxOpenConns    int           `yaml:"db-max-open-conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	DBMaxIdleConns    int           `yaml:"db-max-idle-conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	DBConnMaxLifetime time.Duration `yaml:"db-conn-max-lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	DBConnMaxIdleTime time.Duration `yaml:"db-conn-max-idle-time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"1m"`

	GeocoderProvider  string        `yaml:"geocoder-provider" env:"GEOCODER_PROVIDER" env-default:"openmeteo"`
	GoogleAPIKey      string        `yaml:"google-geocoder-api-key" env:"GOOGLE_GEOCODER_API_KEY"`
	GeocodeURL        string        `yaml:"geocode-url" env:"GEOCODE_URL" env-default:"https://geocoding-api.open-meteo.com/v1/search"`
	ReverseGeocodeURL string        `yaml:"reverse-geocode-url" env:"REVERSE_GEOCODE_URL" env-default:"https://geocoding-api.open-meteo.com/v1/reverse"`
	GeocodeTimeout    time.Duration `yaml:"geocode-timeout" env:"GEOCODE_TIMEOUT" env-default:"10s"`

	WeatherProvider   string        `yaml:"weather-provider" env:"WEATHER_PROVIDER" env-default:"metno"`
	WeatherURL        string        `yaml:"weather-url" env:"WEATHER_URL" env-default:"https://api.met.no/weatherapi/locationforecast/2.0/compact"`
	OpenMeteoURL      string        `yaml:"openmeteo-url" env:"OPENMETEO_URL" env-default:"https://api.open-meteo.com/v1/forecast"`
	WeatherTimeout    time.Duration `yaml:"weather-timeout" env:"WEATHER_TIMEOUT" env-default:"15s"`
	UserAgent         string        `yaml:"user-agent" env:"USER_AGENT" env-default:"WeatherApp/1.0 (https://example.com)"`

	// Point-search listing limits.
	SearchListDefault int `yaml:"search-list-default" env:"SEARCH_LIST_DEFAULT" env-default:"15"`
	SearchListMax     int `yaml:"search-list-max" env:"SEARCH_LIST_MAX" env-default:"100"`

	// RecordPageLimit is how many records the range form page lists.
	RecordPageLimit int `yaml:"record-page-limit" env:"RECORD_PAGE_LIMIT" env-default:"20"`

	// Search retention (0 = keep forever).
	SearchRetention time.Duration `yaml:"search-retention" env:"SEARCH_RETENTION" env-default:"0s"`
	PruneInterval   time.Duration `yaml:"prune-interval" env:"PRUNE_INTERVAL" env-default:"60m"`

	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from an optional .env, then from path (YAML,
// overridable by env) or from the environment alone when path is empty.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	cfg := &AppConfig{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints cleanenv cannot express.
func (c *AppConfig) Validate() error {
	if c.SearchListDefault <= 0 || c.SearchListMax <= 0 {
		return fmt.Errorf("SEARCH_LIST_DEFAULT and SEARCH_LIST_MAX must be positive")
	}
	if c.SearchListDefault > c.SearchListMax {
		return fmt.Errorf("SEARCH_LIST_DEFAULT (%d) exceeds SEARCH_LIST_MAX (%d)", c.SearchListDefault, c.SearchListMax)
	}
	if c.RecordPageLimit <= 0 {
		return fmt.Errorf("RECORD_PAGE_LIMIT must be positive")
	}
	if c.GeocodeTimeout <= 0 || c.WeatherTimeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT and WEATHER_TIMEOUT must be positive")
	}
	if c.DBMaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) must be between 0 and DB_MAX_OPEN_CONNS (%d)", c.DBMaxIdleConns, c.DBMaxOpenConns)
	}
	if c.DBConnMaxLifetime < 0 || c.DBConnMaxIdleTime < 0 {
		return fmt.Errorf("DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME must not be negative")
	}
	if c.SearchRetention < 0 {
		return fmt.Errorf("SEARCH_RETENTION must not be negative")
	}
	if c.SearchRetention > 0 && c.PruneInterval <= 0 {
		return fmt.Errorf("PRUNE_INTERVAL must be positive when SEARCH_RETENTION is set")
	}

	switch c.GeocoderProvider {
	case GeocoderOpenMeteo:
	case GeocoderGoogle:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_GEOCODER_API_KEY is required for the google geocoder")
		}
	default:
		return fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}

	switch c.WeatherProvider {
	case WeatherMetNo, WeatherOpenMeteo:
	default:
		return fmt.Errorf("unknown WEATHER_PROVIDER %q", c.WeatherProvider)
	}
	return nil
}

// SlogLevel maps LogLevel onto slog; unknown values mean info.
func (c *AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
