package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store kinds selectable with STORE.
const (
	StoreLocal  = "local"
	StoreSQL    = "sql"
	StoreRemote = "remote"
)

// Config keeps runtime settings for the server, the bot and the CLI.
type Config struct {
	Store          string
	DatabaseURL    string
	LocalPath      string
	RemoteURL      string
	APIKey         string
	Port           string
	TelegramToken  string
	ReportInterval time.Duration
	SweepAt        string
	Timezone       string
	Weather        Weather
	LogDebug       bool
	LogDir         string
}

// Weather is the location shown by the weather widget. Query, when set,
// is geocoded instead of using the coordinates.
type Weather struct {
	City      string
	Country   string
	Latitude  float64
	Longitude float64
	Query     string
}

// Load reads configuration from environment variables, after loading an
// optional .env file, with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Store:          strings.ToLower(env("STORE", StoreLocal)),
		DatabaseURL:    env("DATABASE_URL", "homeboard.db"),
		LocalPath:      env("LOCAL_STORE_PATH", "homeboard.json"),
		RemoteURL:      strings.TrimRight(env("REMOTE_API_URL", ""), "/"),
		APIKey:         env("API_KEY", ""),
		Port:           env("PORT", "8080"),
		TelegramToken:  env("TELEGRAM_TOKEN", ""),
		ReportInterval: parseInterval(env("REPORT_INTERVAL_HOURS", "")),
		SweepAt:        env("SWEEP_AT", "03:00"),
		Timezone:       env("TIMEZONE", "Local"),
		Weather: Weather{
			City:      env("WEATHER_CITY", "Paris"),
			Country:   env("WEATHER_COUNTRY", "France"),
			Latitude:  parseFloat(env("WEATHER_LAT", ""), 48.8566),
			Longitude: parseFloat(env("WEATHER_LON", ""), 2.3522),
			Query:     env("WEATHER_QUERY", ""),
		},
		LogDebug: parseBool(env("LOG_DEBUG", "")),
		LogDir:   env("LOG_DIR", ""),
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 12 * time.Hour
	}

	switch cfg.Store {
	case StoreLocal, StoreSQL:
	case StoreRemote:
		if cfg.RemoteURL == "" {
			return cfg, fmt.Errorf("REMOTE_API_URL is required when STORE=remote")
		}
	default:
		return cfg, fmt.Errorf("unknown STORE %q, expected local, sql or remote", cfg.Store)
	}

	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// RequireTelegram reports a missing bot token.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

// Location resolves Timezone; empty and "Local" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseFloat(raw string, def float64) float64 {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
