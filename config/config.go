package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Store        StoreConfig
	Bus          BusConfig
	Notification NotificationConfig
	Directory    DirectoryConfig
}

type ServerConfig struct {
	Port               string
	GinMode            string
	AllowedOrigins     []string
	RateLimitPerMinute int
}

type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type StoreConfig struct {
	Driver     string // memory, sqlite, postgres
	SQLitePath string
}

type BusConfig struct {
	Driver          string // local, postgres
	Channel         string
	RefreshInterval time.Duration
}

type NotificationConfig struct {
	Language      string
	NotifyOnStart bool
}

type DirectoryConfig struct {
	Seed bool
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			GinMode:            getEnv("GIN_MODE", "debug"),
			AllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DB_URL", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", "sqlite"),
			SQLitePath: getEnv("SQLITE_PATH", "juaconnect.db"),
		},
		Bus: BusConfig{
			Driver:          getEnv("BUS_DRIVER", "local"),
			Channel:         getEnv("BUS_CHANNEL", "juaconnect_channel"),
			RefreshInterval: getEnvAsDuration("REFRESH_INTERVAL", 5*time.Second),
		},
		Notification: NotificationConfig{
			Language:      getEnv("NOTIFICATION_LANGUAGE", "en"),
			NotifyOnStart: getEnvAsBool("NOTIFY_ON_START", false),
		},
		Directory: DirectoryConfig{
			Seed: getEnvAsBool("SEED_DIRECTORY", true),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
