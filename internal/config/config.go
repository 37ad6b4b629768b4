package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Settings backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type AppConfig struct {
	AppName  string
	Port     string
	LogLevel string

	// HTTPTimeout bounds every upstream call.
	HTTPTimeout time.Duration

	ForecastBaseURL string
	GeocodeBaseURL  string
	GeocodeAPIKey   string
	GeocodeRPS      float64

	// GoogleGeocoderAPIKey switches location search to Google when set.
	GoogleGeocoderAPIKey string

	// PositionSource is "static" (Position, if set) or "ip" (lookup at PositionURL).
	Position       *weather.Coordinate
	PositionSource string
	PositionURL    string

	MaxRetries      int
	RetryBaseDelay  time.Duration
	RefreshInterval time.Duration

	SettingsBackend string
	SettingsDir     string
	SQLitePath      string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string

	// In-memory record history retention.
	StoreMaxHistory int           // max number of records per coordinate (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records (0 = unlimited)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APPLICATION_NAME", "weather-dashboard")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("GEOCODE_BASE_URL", "https://geocode.maps.co")
	v.SetDefault("GEOCODE_RPS", 1.0)
	v.SetDefault("POSITION_SOURCE", "static")
	v.SetDefault("IP_POSITION_URL", "http://ip-api.com/json/?fields=status,message,lat,lon")
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_BASE_DELAY", "2s")
	v.SetDefault("REFRESH_INTERVAL", "15m")
	v.SetDefault("SETTINGS_BACKEND", BackendFile)
	v.SetDefault("SETTINGS_DIR", ".weather-dashboard")
	v.SetDefault("SQLITE_PATH", "weather-dashboard.db")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "weather-dashboard:")
	v.SetDefault("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	v.SetDefault("STORE_MAX_AGE", "24h")
}

// Load reads configuration from the environment with sensible defaults.
// Callers load any .env file beforehand.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &AppConfig{
		AppName:              v.GetString("APPLICATION_NAME"),
		Port:                 v.GetString("PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		ForecastBaseURL:      v.GetString("FORECAST_BASE_URL"),
		GeocodeBaseURL:       v.GetString("GEOCODE_BASE_URL"),
		GeocodeAPIKey:        v.GetString("GEOCODE_API_KEY"),
		GeocodeRPS:           v.GetFloat64("GEOCODE_RPS"),
		GoogleGeocoderAPIKey: v.GetString("GOOGLE_GEOCODER_API_KEY"),
		PositionSource:       strings.ToLower(v.GetString("POSITION_SOURCE")),
		PositionURL:          v.GetString("IP_POSITION_URL"),
		MaxRetries:           v.GetInt("MAX_RETRIES"),
		SettingsBackend:      strings.ToLower(v.GetString("SETTINGS_BACKEND")),
		SettingsDir:          v.GetString("SETTINGS_DIR"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		RedisKeyPrefix:       v.GetString("REDIS_KEY_PREFIX"),
		StoreMaxHistory:      v.GetInt("STORE_MAX_HISTORY"),
	}

	var err error
	if cfg.HTTPTimeout, err = duration(v, "HTTP_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RetryBaseDelay, err = duration(v, "RETRY_BASE_DELAY"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = duration(v, "REFRESH_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = duration(v, "STORE_MAX_AGE"); err != nil {
		return nil, err
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid MAX_RETRIES: %d", cfg.MaxRetries)
	}

	switch cfg.SettingsBackend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid SETTINGS_BACKEND: %q", cfg.SettingsBackend)
	}

	switch cfg.PositionSource {
	case "static", "ip":
	default:
		return nil, fmt.Errorf("invalid POSITION_SOURCE: %q", cfg.PositionSource)
	}

	pos, err := loadPosition(v)
	if err != nil {
		return nil, err
	}
	cfg.Position = pos

	return cfg, nil
}

func loadPosition(v *viper.Viper) (*weather.Coordinate, error) {
	latSet, lonSet := v.IsSet("LOCATION_LAT"), v.IsSet("LOCATION_LON")
	if !latSet && !lonSet {
		return nil, nil
	}
	if latSet != lonSet {
		return nil, fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	var c weather.Coordinate
	if _, err := fmt.Sscan(v.GetString("LOCATION_LAT"), &c.Lat); err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LAT: %w", err)
	}
	if _, err := fmt.Sscan(v.GetString("LOCATION_LON"), &c.Lon); err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LON: %w", err)
	}
	return &c, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
