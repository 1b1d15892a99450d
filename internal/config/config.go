// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"beercatalog/internal/infrastructure/storage"
)

// Config is the full set of service settings.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	BeerPath        string
	ShutdownTimeout time.Duration
	Storage         storage.Config
}

// Development reports whether pretty logs and gin debug mode are enabled.
func (c Config) Development() bool {
	return c.Env == "development"
}

// Load reads the environment. Only malformed values are errors; unset ones take defaults.
func Load() (Config, error) {
	driver, err := storage.ParseDriver(getEnv("STORAGE_DRIVER", string(storage.DriverMemory)))
	if err != nil {
		return Config{}, err
	}

	audit, err := getEnvBool("AUDIT_ENABLED", false)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:            getEnv("APP_PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		BeerPath:        getEnv("BEER_API_PATH", "/api/v1/beers"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Storage: storage.Config{
			Driver:      driver,
			PostgresDSN: os.Getenv("DATABASE_URL"),
			MySQLDSN:    os.Getenv("MYSQL_DSN"),
			MemoryFile:  os.Getenv("MEMORY_FILE"),
			MaxConns:    getEnvInt("DB_MAX_CONNS", 25),
			Audit:       audit,
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
