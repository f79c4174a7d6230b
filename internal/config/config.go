package config

import (
	"fmt"
	"os"
)

// Store drivers selectable via STORE_DRIVER.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port           string
	LogLevel       string
	StoreDriver    string
	DBConn         string
	DataDir        string
	StaticDir      string
	BackupSchedule string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		StoreDriver:    getEnv("STORE_DRIVER", DriverJSON),
		DBConn:         getEnv("DB_CONN", "todo.db"),
		DataDir:        getEnv("DATA_DIR", "data"),
		StaticDir:      getEnv("STATIC_DIR", "web/static"),
		BackupSchedule: getEnv("BACKUP_SCHEDULE", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "todo-service@localhost"),
	}

	switch cfg.StoreDriver {
	case DriverJSON, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverPostgres && os.Getenv("DB_CONN") == "" {
		return nil, fmt.Errorf("DB_CONN is required for the postgres driver")
	}

	return cfg, nil
}

// SMTPEnabled reports whether outgoing mail is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
