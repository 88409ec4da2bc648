package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Import    ImportConfig    `yaml:"import"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	GRPCPort    int    `yaml:"grpc_port"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

// DatabaseConfig selects the store. Connection fields apply to postgres only.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	// MigrateOnStart runs pending migrations before serving.
	MigrateOnStart bool   `yaml:"migrate_on_start"`
	MigrationsDir  string `yaml:"migrations_dir"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	TokenSecret   string `yaml:"token_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type ImportConfig struct {
	// Timezone is the IANA zone toll timestamps are recorded in.
	Timezone string `yaml:"timezone"`
}

type LedgerConfig struct {
	OutstandingThreshold string `yaml:"outstanding_threshold"`
}

// SchedulerConfig contains cron schedule settings (with seconds)
type SchedulerConfig struct {
	RematchUnmatchedTolls     string `yaml:"rematch_unmatched_tolls"`
	ReportOutstandingBalances string `yaml:"report_outstanding_balances"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML, applying env overrides and defaults.
func Parse(data []byte) (*Config, error) {
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
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
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

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if val := os.Getenv("AUTH_TOKEN_SECRET"); val != "" {
		c.Auth.TokenSecret = val
	}
	if val := os.Getenv("IMPORT_TIMEZONE"); val != "" {
		c.Import.Timezone = val
	}
}

// Validate checks the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 10
	}

	switch c.Database.Driver {
	case "":
		c.Database.Driver = DriverPostgres
		fallthrough
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
		if c.Database.MigrationsDir == "" {
			c.Database.MigrationsDir = "internal/migration"
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Auth.Enabled {
		if c.Auth.TokenSecret == "" {
			return fmt.Errorf("auth token secret is required")
		}
		if len(c.Auth.TokenSecret) < 32 {
			return fmt.Errorf("auth token secret must be at least 32 characters")
		}
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}

	if c.Import.Timezone == "" {
		c.Import.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Import.Timezone); err != nil {
		return fmt.Errorf("invalid import timezone %q: %w", c.Import.Timezone, err)
	}

	if c.Ledger.OutstandingThreshold == "" {
		c.Ledger.OutstandingThreshold = "0.01"
	}
	if _, err := decimal.NewFromString(c.Ledger.OutstandingThreshold); err != nil {
		return fmt.Errorf("invalid outstanding threshold %q: %w", c.Ledger.OutstandingThreshold, err)
	}

	if c.Scheduler.RematchUnmatchedTolls == "" {
		c.Scheduler.RematchUnmatchedTolls = "0 15 * * * *" // hourly at :15
	}
	if c.Scheduler.ReportOutstandingBalances == "" {
		c.Scheduler.ReportOutstandingBalances = "0 0 8 * * *" // daily 8 AM
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for name, spec := range map[string]string{
		"rematch_unmatched_tolls":     c.Scheduler.RematchUnmatchedTolls,
		"report_outstanding_balances": c.Scheduler.ReportOutstandingBalances,
	} {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid schedule %s: %w", name, err)
		}
	}

	return nil
}

// DatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) DatabaseConnectionString() string {
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

// ServerAddress returns the HTTP listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns the health server listen address, empty when disabled.
func (c *Config) GRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// ImportLocation returns the zone used to read CSV timestamps.
func (c *Config) ImportLocation() *time.Location {
	loc, err := time.LoadLocation(c.Import.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) OutstandingThreshold() decimal.Decimal {
	d, err := decimal.NewFromString(c.Ledger.OutstandingThreshold)
	if err != nil {
		return decimal.RequireFromString("0.01")
	}
	return d
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// MaxUploadBytes caps the size of an imported statement.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
