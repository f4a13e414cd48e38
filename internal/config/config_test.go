package config

import (
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "UTC", cfg.App.Timezone)
	assert.False(t, cfg.Attendance.CloseOutEnabled)
	assert.Equal(t, time.Hour, cfg.Attendance.CloseOutInterval)
	assert.NotEmpty(t, cfg.App.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"port":     {"APP_PORT": "eighty"},
		"timezone": {"APP_TIMEZONE": "Mars/Olympus"},
		"driver":   {"STORAGE_DRIVER": "sqlite"},
		"interval": {"ATTENDANCE_CLOSE_OUT_INTERVAL": "-5m"},
		"enabled":  {"ATTENDANCE_CLOSE_OUT_ENABLED": "maybe"},
		"loglevel": {"LOG_LEVEL": "loud"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("STORAGE_DRIVER", "memory")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "hr")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ATTENDANCE_CLOSE_OUT_ENABLED", "true")
	t.Setenv("ATTENDANCE_CLOSE_OUT_INTERVAL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://postgres:secret@db:5432/hr?sslmode=disable", cfg.DatabaseURL())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSAllowedOrigins)
	assert.Equal(t, "Asia/Jakarta", cfg.Location().String())
	assert.True(t, cfg.Attendance.CloseOutEnabled)
	assert.Equal(t, 30*time.Minute, cfg.Attendance.CloseOutInterval)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestDatabaseURL_EscapesCredentials(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_USER", "hr admin")
	t.Setenv("DB_PASSWORD", "p@ss/w:rd?#%")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "hr")

	cfg, err := Load()
	require.NoError(t, err)

	parsed, err := url.Parse(cfg.DatabaseURL())
	require.NoError(t, err)

	password, ok := parsed.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#%", password)
	assert.Equal(t, "hr admin", parsed.User.Username())
	assert.Equal(t, "db:5432", parsed.Host)
	assert.Equal(t, "/hr", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
}
