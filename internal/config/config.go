package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. It is built once at process
// start and passed explicitly into constructors; handlers never read ambient
// global state.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Email     EmailConfig     `yaml:"email"`
	Assistant AssistantConfig `yaml:"assistant"`
	Outbox    OutboxConfig    `yaml:"outbox"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// TelegramConfig contains bot credentials and the fixed owner identity
type TelegramConfig struct {
	Token   string `yaml:"token"`
	OwnerID int64  `yaml:"owner_id"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey   string `yaml:"api_key"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	// ValidatorURL is an optional external address-validation endpoint.
	ValidatorURL string `yaml:"validator_url"`
}

// AssistantConfig contains the external text-generation API settings
type AssistantConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// OutboxConfig contains notification retry settings
type OutboxConfig struct {
	SweepSchedule  string `yaml:"sweep_schedule"`
	DigestSchedule string `yaml:"digest_schedule"`
	PruneSchedule  string `yaml:"prune_schedule"`
	PruneAfterDays int    `yaml:"prune_after_days"`
	MaxAttempts    int    `yaml:"max_attempts"`
	BatchSize      int    `yaml:"batch_size"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Telegram
	if val := os.Getenv("TELEGRAM_BOT_TOKEN"); val != "" {
		c.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_OWNER_ID"); val != "" {
		fmt.Sscanf(val, "%d", &c.Telegram.OwnerID)
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.From = val
	}
	if val := os.Getenv("EMAIL_VALIDATOR_URL"); val != "" {
		c.Email.ValidatorURL = val
	}

	// Assistant
	if val := os.Getenv("ASSISTANT_BASE_URL"); val != "" {
		c.Assistant.BaseURL = val
	}
	if val := os.Getenv("ASSISTANT_API_KEY"); val != "" {
		c.Assistant.APIKey = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("FRONTEND_URL"); val != "" {
		c.Server.FrontendURL = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:5500"
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Telegram validation
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Telegram.OwnerID == 0 {
		return fmt.Errorf("telegram owner id is required")
	}

	// Email validation
	if c.Email.From == "" {
		return fmt.Errorf("email from address is required")
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Shadow Lurkers"
	}

	// Outbox defaults
	if c.Outbox.SweepSchedule == "" {
		c.Outbox.SweepSchedule = "0 */2 * * * *" // every 2 minutes
	}
	if c.Outbox.DigestSchedule == "" {
		c.Outbox.DigestSchedule = "0 0 9 * * *" // daily 09:00 UTC
	}
	if c.Outbox.PruneSchedule == "" {
		c.Outbox.PruneSchedule = "0 30 3 * * 0" // weekly, Sunday 03:30 UTC
	}
	if c.Outbox.PruneAfterDays == 0 {
		c.Outbox.PruneAfterDays = 30
	}
	if c.Outbox.MaxAttempts == 0 {
		c.Outbox.MaxAttempts = 5
	}
	if c.Outbox.BatchSize == 0 {
		c.Outbox.BatchSize = 100
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
