package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	KFactor           float64
	InitialRating     int
	ImportWorkerCount int
	ImportQueueSize   int
	CORSOrigins       []string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "file:duelrank.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		KFactor:           envFloatOr("K_FACTOR", 32),
		InitialRating:     envIntOr("INITIAL_RATING", 1200),
		ImportWorkerCount: envIntOr("IMPORT_WORKER_COUNT", 1),
		ImportQueueSize:   envIntOr("IMPORT_QUEUE_SIZE", 16),
		CORSOrigins:       envListOr("CORS_ORIGINS", []string{"*"}),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	if math.IsNaN(c.KFactor) || math.IsInf(c.KFactor, 0) || c.KFactor < 0 {
		errs = append(errs, fmt.Errorf("K_FACTOR must be a finite number >= 0, got %g", c.KFactor))
	}
	if c.InitialRating <= 0 {
		errs = append(errs, fmt.Errorf("INITIAL_RATING must be positive, got %d", c.InitialRating))
	}
	if c.ImportWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("IMPORT_WORKER_COUNT must be at least 1, got %d", c.ImportWorkerCount))
	}
	if c.ImportQueueSize < 1 {
		errs = append(errs, fmt.Errorf("IMPORT_QUEUE_SIZE must be at least 1, got %d", c.ImportQueueSize))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
