package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE", "DATABASE_URL", "LOCAL_STORE_PATH", "REMOTE_API_URL", "API_KEY", "PORT",
		"TELEGRAM_TOKEN", "REPORT_INTERVAL_HOURS", "SWEEP_AT", "TIMEZONE",
		"WEATHER_CITY", "WEATHER_COUNTRY", "WEATHER_LAT", "WEATHER_LON", "WEATHER_QUERY",
		"LOG_DEBUG", "LOG_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir()) // keep a developer .env out of the test
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreLocal, cfg.Store)
	assert.Equal(t, "homeboard.db", cfg.DatabaseURL)
	assert.Equal(t, "homeboard.json", cfg.LocalPath)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 12*time.Hour, cfg.ReportInterval)
	assert.Equal(t, "03:00", cfg.SweepAt)
	assert.Equal(t, "Paris", cfg.Weather.City)
	assert.InDelta(t, 48.8566, cfg.Weather.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, cfg.Weather.Longitude, 1e-9)
	assert.False(t, cfg.LogDebug)
	assert.Error(t, cfg.RequireTelegram())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE", "Remote")
	t.Setenv("REMOTE_API_URL", "http://nas.local:8080/")
	t.Setenv("API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("WEATHER_LAT", "45.75")
	t.Setenv("WEATHER_LON", "not-a-number")
	t.Setenv("LOG_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreRemote, cfg.Store)
	assert.Equal(t, "http://nas.local:8080", cfg.RemoteURL)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.NoError(t, cfg.RequireTelegram())
	assert.Equal(t, 6*time.Hour, cfg.ReportInterval)
	assert.InDelta(t, 45.75, cfg.Weather.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, cfg.Weather.Longitude, 1e-9)
	assert.True(t, cfg.LogDebug)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"STORE": "redis"}},
		{"remote without url", map[string]string{"STORE": "remote"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseInterval(""))
	assert.Equal(t, time.Duration(0), parseInterval("-2"))
	assert.Equal(t, time.Duration(0), parseInterval("abc"))
	assert.Equal(t, 90*time.Minute, parseInterval("1.5"))
}
