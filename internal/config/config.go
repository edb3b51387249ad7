package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable pointing at an optional YAML
// config file. Environment variables override values from the file.
const ConfigFileEnv = "COASTALWAVES_CONFIG"

type Config struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	DBPath         string `mapstructure:"db_path"`
	LogLevel       string `mapstructure:"log_level"`
	LogFile        string `mapstructure:"log_file"`
	ImportSheet    string `mapstructure:"import_sheet"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	// Currency is the ISO 4217 code used to format revenue.
	Currency string `mapstructure:"currency"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("db_path", "/data/coastalwaves.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("import_sheet", "Inventory")
	v.SetDefault("max_upload_bytes", 32<<20)
	v.SetDefault("currency", "USD")

	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Currency = strings.ToUpper(cfg.Currency)
	if money.GetCurrency(cfg.Currency) == nil {
		return nil, fmt.Errorf("unknown currency %q", cfg.Currency)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max_upload_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}
