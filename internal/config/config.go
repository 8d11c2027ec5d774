package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Sheets  SheetsConfig
	Audit   AuditConfig
	Notify  NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to export finance reports to
// Google Sheets. Export is disabled when the credentials path is empty.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// AuditConfig holds scheduler-related settings for the ledger audit and the
// snapshot export jobs.
type AuditConfig struct {
	CronSchedule       string
	ExportCronSchedule string
	Timezone           string
	LowStockThreshold  float64
}

// NotifyConfig holds the operations alert webhook. Alerts are disabled when
// the URL is empty.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	lowStock, err := getenvFloat("LOW_STOCK_THRESHOLD", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "agrocampo"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_FINANCE_ID"),
		},
		Audit: AuditConfig{
			CronSchedule:       getenvWithDefault("AUDIT_CRON_SCHEDULE", "0 6 * * *"),
			ExportCronSchedule: getenvWithDefault("EXPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:           getenvWithDefault("TIMEZONE", "America/Bogota"),
			LowStockThreshold:  lowStock,
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	// Sheets export is optional, but partial credentials are a mistake.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_FINANCE_ID must be provided together")
	}

	if c.Audit.CronSchedule == "" {
		return errors.New("AUDIT_CRON_SCHEDULE must be provided")
	}

	if c.Audit.ExportCronSchedule == "" {
		return errors.New("EXPORT_CRON_SCHEDULE must be provided")
	}

	if c.Audit.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Audit.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be numeric: %w", key, err)
	}
	return parsed, nil
}
