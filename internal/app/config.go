package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/eventra/eventra/internal/database"
)

// Config represents the runtime configuration for the eventra backend.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Reminders  RemindersConfig  `mapstructure:"reminders"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// RemindersConfig tunes the reminder poll engine and retention sweeper.
type RemindersConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Lookahead     time.Duration `mapstructure:"lookahead"`
	RetentionDays int           `mapstructure:"retention_days"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// MonitoringConfig enables metrics and health endpoints.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles the metrics endpoint.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles the health endpoint.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("EVENTRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// DatabaseOpenConfig converts the config section into connection options.
func (c *Config) DatabaseOpenConfig() database.Config {
	cfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Database.Driver)),
		Path:   strings.TrimSpace(c.Database.Path),
		DSN:    strings.TrimSpace(c.Database.DSN),
	}

	switch cfg.Driver {
	case "", "sqlite":
		cfg.Driver = "sqlite"
	case "postgres", "postgresql":
		cfg.Driver = "postgres"
		cfg.Host = strings.TrimSpace(c.Database.Postgres.Host)
		cfg.Port = c.Database.Postgres.Port
		cfg.Name = strings.TrimSpace(c.Database.Postgres.Database)
		cfg.User = strings.TrimSpace(c.Database.Postgres.Username)
		cfg.Password = strings.TrimSpace(c.Database.Postgres.Password)
	case "mysql":
		cfg.Host = strings.TrimSpace(c.Database.MySQL.Host)
		cfg.Port = c.Database.MySQL.Port
		cfg.Name = strings.TrimSpace(c.Database.MySQL.Database)
		cfg.User = strings.TrimSpace(c.Database.MySQL.Username)
		cfg.Password = strings.TrimSpace(c.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface the unsupported driver error on open.
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/eventra.sqlite")

	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.poll_interval", "1m")
	v.SetDefault("reminders.lookahead", "24h")
	v.SetDefault("reminders.retention_days", 7)
	v.SetDefault("reminders.sweep_schedule", "@hourly")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}
