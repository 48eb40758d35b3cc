package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"

	"github.com/Rhymond/go-money"
)

// Backends accepted in DATA_BACKEND.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// Display and logging
	Currency string
	LogLevel string

	// Sessions
	SessionCacheSize  int
	SessionTTL        time.Duration
	DefaultCardBudget string

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets, used by the worker
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", BackendCSV),
		DataDir:      getEnv("DATA_DIR", "./dados_financeiros"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/financas.db"),

		Currency: strings.ToUpper(getEnv("CURRENCY", core.DefaultCurrency)),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionCacheSize:  getEnvInt("SESSION_CACHE_SIZE", 100),
		SessionTTL:        getEnvDuration("SESSION_TTL", 30*time.Minute),
		DefaultCardBudget: getEnv("DEFAULT_CARD_BUDGET", "1500.00"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "financas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_books"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SyncTimeout: getEnvDuration("SYNC_TIMEOUT", 60*time.Second),
	}
}

// CardBudget is DEFAULT_CARD_BUDGET parsed as money. Invalid values are
// reported by Validate; here they read as zero, which disables seeding.
func (c *Config) CardBudget() core.Money {
	m, err := core.ParseMoney(c.DefaultCardBudget)
	if err != nil {
		return core.Money{}
	}
	return m
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	switch c.DataBackend {
	case BackendCSV:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using csv backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendCSV, BackendSQLite))
	}

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency code '%s'", c.Currency))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.SessionCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid session cache size %d: must be at least 1", c.SessionCacheSize))
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if _, err := core.ParseMoney(c.DefaultCardBudget); err != nil {
		errors = append(errors, fmt.Sprintf("invalid default card budget '%s': %v", c.DefaultCardBudget, err))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.SyncTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync timeout %v: must be at least 1 second", c.SyncTimeout))
	} else if c.SyncTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync timeout %v: must be at most 1 hour", c.SyncTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings the sync worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required by the worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required by the worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration invalid:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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
