package db

import (
	"fmt"
	"os"
	"strings"
)

// NormalizeDSN trims quotes/whitespace and supplements driver-specific
// defaults. For mysql an empty DSN is assembled from the discrete DB_*
// variables; for postgres a key=value list gets sslmode=disable appended
// when missing.
func NormalizeDSN(driver, raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	switch driver {
	case "postgres":
		return normalizePostgres(s)
	default:
		return normalizeMySQL(s)
	}
}

func normalizeMySQL(s string) string {
	if s != "" {
		if !strings.Contains(s, "parseTime") {
			sep := "?"
			if strings.Contains(s, "?") {
				sep = "&"
			}
			s += sep + "parseTime=True"
		}
		return s
	}
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "3306")
	user := envOr("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	name := envOr("DB_NAME", "carhome")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, pass, host, port, name)
}

func normalizePostgres(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	cleaned := strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
