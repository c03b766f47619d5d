package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage backend: memory, sqlite or postgres
	Backend string

	SQLiteDBPath string
	PostgresURL  string

	// Directory for uploaded import files before they are consumed
	UploadDir string

	// AMQP (optional; ledger writes succeed without a broker)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker only)
	SpreadsheetID string
	SheetName     string

	// Worker
	ConsumeTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		Backend:      getEnv("LEDGER_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledger.db"),
		PostgresURL:  getEnv("POSTGRES_URL", ""),

		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_transactions"),

		SpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		ConsumeTimeout: getEnvDuration("CONSUME_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the configuration and returns a combined error listing
// every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, "POSTGRES_URL is required when using postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid backend %q: must be one of [memory sqlite postgres]", c.Backend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.UploadDir == "" {
		errs = append(errs, "upload directory cannot be empty")
	}

	if c.ConsumeTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid consume timeout %v: must be at least 1 second", c.ConsumeTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
