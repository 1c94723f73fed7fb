// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries every environment-derived setting. Load validates the
// required credentials before any database or Redis connection is attempted,
// so a misconfigured deploy fails immediately instead of mid-run.
type Config struct {
	Port string

	PostgresUser     string
	PostgresPassword string
	PGHost           string
	PGPort           string
	PGDatabase       string

	RedisAddr string
	RedisDB   int

	// AutomationSecret authorizes scheduler-triggered runs via the
	// X-Automation-Secret header.
	AutomationSecret string

	// JWTPrivateKeyPath/JWTPublicKeyPath point at persisted ed25519 key
	// files. When unset, a fresh key pair is generated at startup and admin
	// sessions do not survive a restart.
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	// ScoreAPIURL is the base URL of the external compatibility oracle.
	ScoreAPIURL string

	// Group capacity policy shared by both allocation flows.
	GroupMin int
	GroupMax int
	// ChunkSize is the nominal group size the weekend chunker aims for.
	ChunkSize int

	// ScoreThreshold is the minimum acceptable compatibility score on the
	// oracle's scale; pairs below it are rejected.
	ScoreThreshold int
	// ScoreBatch bounds how many oracle calls run concurrently.
	ScoreBatch int
}

// Load reads the environment into a Config. It returns an error naming every
// missing required variable rather than stopping at the first.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		PostgresUser:      os.Getenv("POSTGRES_USER"),
		PostgresPassword:  os.Getenv("POSTGRES_PASSWORD"),
		PGHost:            getEnv("PG_HOST", "localhost"),
		PGPort:            getEnv("PG_PORT", "5432"),
		PGDatabase:        os.Getenv("PG_DATABASE"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AutomationSecret:  os.Getenv("AUTOMATION_SECRET"),
		JWTPrivateKeyPath: os.Getenv("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  os.Getenv("JWT_PUBLIC_KEY_PATH"),
		ScoreAPIURL:       os.Getenv("SCORE_API_URL"),
		GroupMin:          getEnvInt("GROUP_MIN_SIZE", 3),
		GroupMax:          getEnvInt("GROUP_MAX_SIZE", 5),
		ChunkSize:         getEnvInt("GROUP_CHUNK_SIZE", 4),
		ScoreThreshold:    getEnvInt("SCORE_THRESHOLD", 20),
		ScoreBatch:        getEnvInt("SCORE_BATCH_SIZE", 20),
	}

	var missing []string
	if cfg.PostgresUser == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.PostgresPassword == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.PGDatabase == "" {
		missing = append(missing, "PG_DATABASE")
	}
	if cfg.AutomationSecret == "" {
		missing = append(missing, "AUTOMATION_SECRET")
	}
	if cfg.ScoreAPIURL == "" {
		missing = append(missing, "SCORE_API_URL")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if (cfg.JWTPrivateKeyPath == "") != (cfg.JWTPublicKeyPath == "") {
		return nil, fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}

	if cfg.GroupMin < 2 || cfg.GroupMax < cfg.GroupMin {
		return nil, fmt.Errorf("invalid group size bounds: min=%d max=%d", cfg.GroupMin, cfg.GroupMax)
	}
	if cfg.ChunkSize < cfg.GroupMin || cfg.ChunkSize > cfg.GroupMax {
		return nil, fmt.Errorf("chunk size %d outside group bounds [%d, %d]", cfg.ChunkSize, cfg.GroupMin, cfg.GroupMax)
	}
	return cfg, nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
