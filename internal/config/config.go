// Package config loads configuration for the pricing tools from a config
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// SnapshotConfig locates the persisted term-structure snapshot.
type SnapshotConfig struct {
	CSVPath     string `mapstructure:"csv_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// ProviderConfig points at the external market-data endpoints.
type ProviderConfig struct {
	RatesURL  string `mapstructure:"rates_url"`
	EquityURL string `mapstructure:"equity_url"`
}

// SimulationConfig controls the Monte Carlo pricer defaults.
type SimulationConfig struct {
	Paths int   `mapstructure:"paths"`
	Seed  int64 `mapstructure:"seed"`
}

// ServerConfig configures the HTTP pricing server.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	FilePath string `mapstructure:"file_path"`
}

// Load reads the config file (optional) and environment overrides with
// prefix QUANTLIB_ (e.g. QUANTLIB_SNAPSHOT_CSV_PATH).
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("snapshot.csv_path", "data/yield_curve.csv")
	v.SetDefault("simulation.paths", 100_000)
	v.SetDefault("simulation.seed", 42)
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("QUANTLIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	} else {
		v.SetConfigName("quantlib")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/quantlib")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config.Load: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
