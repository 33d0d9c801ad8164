package config

import (
	"os"
	"strconv"
	"time"

	"gostat/internal/errors"
	"gostat/internal/logging"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Sales     DatasetConfig
	Task      DatasetConfig
	Profiling ProfilingConfig
	// LoadTimeout bounds dataset loading at startup
	LoadTimeout time.Duration
	LogLevel    logging.Level
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds the optional postgres connection used as a dataset source
type DatabaseConfig struct {
	URL string
}

// DatasetConfig describes where a dataset comes from and which column is aggregated
type DatasetConfig struct {
	Name      string
	File      string
	Table     string
	Sheet     string
	Delimiter string
	Thousands string
	Target    string
}

// FromDatabase reports whether the dataset is loaded from a postgres table
func (d DatasetConfig) FromDatabase() bool {
	return d.Table != ""
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:      *loadServerConfig(),
		Database:    DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")},
		Sales:       *loadSalesConfig(),
		Task:        *loadTaskConfig(),
		Profiling:   *loadProfilingConfig(),
		LoadTimeout: getEnvDurationOrDefault("LOAD_TIMEOUT", 30*time.Second),
	}

	level, err := logging.ParseLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "5000"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadSalesConfig() *DatasetConfig {
	return &DatasetConfig{
		Name:      "sales",
		File:      getEnvOrDefault("SALES_FILE", "data/sales_data.csv"),
		Table:     getEnvOrDefault("SALES_TABLE", ""),
		Delimiter: getEnvOrDefault("SALES_DELIMITER", ";"),
		Thousands: getEnvOrDefault("SALES_THOUSANDS", ","),
		Target:    getEnvOrDefault("SALES_TARGET", "Sales"),
	}
}

func loadTaskConfig() *DatasetConfig {
	return &DatasetConfig{
		Name:      "task",
		File:      getEnvOrDefault("TASK_FILE", "data/task_data.xlsx"),
		Table:     getEnvOrDefault("TASK_TABLE", ""),
		Sheet:     getEnvOrDefault("TASK_SHEET", ""),
		Delimiter: getEnvOrDefault("TASK_DELIMITER", ","),
		Thousands: getEnvOrDefault("TASK_THOUSANDS", ""),
		Target:    getEnvOrDefault("TASK_TARGET", "Time_used"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Profiling.Enabled && config.Profiling.Port == "" {
		return errors.ConfigInvalid("PPROF_PORT is required when profiling is enabled")
	}
	if config.LoadTimeout <= 0 {
		return errors.ConfigInvalid("LOAD_TIMEOUT must be positive")
	}
	for _, ds := range []DatasetConfig{config.Sales, config.Task} {
		if err := validateDataset(ds, config.Database); err != nil {
			return err
		}
	}
	return nil
}

func validateDataset(ds DatasetConfig, db DatabaseConfig) error {
	if ds.Target == "" {
		return errors.ConfigInvalid(ds.Name + " target column is required")
	}
	if ds.FromDatabase() {
		if db.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when " + ds.Name + " is loaded from a table")
		}
		return nil
	}
	if ds.File == "" {
		return errors.ConfigInvalid(ds.Name + " requires a file or a table")
	}
	if len([]rune(ds.Delimiter)) != 1 {
		return errors.ConfigInvalid(ds.Name + " delimiter must be a single character")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
