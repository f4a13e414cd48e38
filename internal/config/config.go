package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	Storage    StorageConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
}

// StorageConfig selects the backing store for roster and attendance data
type StorageConfig struct {
	Driver string
}

// AttendanceConfig holds the previous-day close-out job settings
type AttendanceConfig struct {
	CloseOutEnabled  bool
	CloseOutInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine, the process environment is used as-is.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrms_lite"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", "UTC"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.CORSAllowedOrigins) == 0 {
		config.App.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	config.Storage = StorageConfig{
		Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
	}

	// Attendance close-out job
	closeOutEnabled, err := strconv.ParseBool(getEnv("ATTENDANCE_CLOSE_OUT_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_CLOSE_OUT_ENABLED: %w", err)
	}
	closeOutInterval, err := time.ParseDuration(getEnv("ATTENDANCE_CLOSE_OUT_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_CLOSE_OUT_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		CloseOutEnabled:  closeOutEnabled,
		CloseOutInterval: closeOutInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.App.LogLevel, err)
	}

	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}

	if c.Attendance.CloseOutInterval <= 0 {
		return fmt.Errorf("ATTENDANCE_CLOSE_OUT_INTERVAL must be positive")
	}
	return nil
}

// Location returns the canonical timezone used to decide which calendar day is "today"
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel returns LOG_LEVEL as a slog level, info when unparsable
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DatabaseURL returns the PostgreSQL connection string. Credentials are
// percent-encoded so passwords may contain any character.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
