package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DBDriver    string
	DatabaseDSN string
	Env         string
	LogLevel    string
	LogFormat   string
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DBDriver = getEnv("DB_DRIVER", "mysql")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "root:@tcp(localhost:3306)/carhome?charset=utf8mb4&parseTime=True&loc=Local")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
