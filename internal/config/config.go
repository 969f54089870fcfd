package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Log     LogConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

// APIConfig addresses the practice-management backend. Every endpoint,
// notifications included, hangs off the single BaseURL; the historical
// second host for the notification service is gone.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
}

type SessionConfig struct {
	// Path of the file the session (token, role, id) is persisted to.
	// Empty means in-memory only.
	FilePath string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

func Load() (*Config, error) {
	// A missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "pfemedical"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:3000"),
			RequestTimeout: getEnvDuration("API_REQUEST_TIMEOUT", 15*time.Second),
			UserAgent:      getEnv("API_USER_AGENT", "pfemedical-go"),
		},
		Session: SessionConfig{
			FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stderr"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "pfemedical-client"),
			Endpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate:  getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.API.BaseURL == "" {
		errs = append(errs, "API_BASE_URL is required")
	}
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		errs = append(errs, "API_BASE_URL must be an http(s) URL")
	}
	if cfg.App.Environment == "production" && strings.HasPrefix(cfg.API.BaseURL, "http://") {
		errs = append(errs, "API_BASE_URL must use https in production")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".pfemedical-session.json"
	}
	return dir + string(os.PathSeparator) + "pfemedical" + string(os.PathSeparator) + "session.json"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
