// Package config loads option-pricer configuration from a YAML file, a .env
// file and OPTIONPRICER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "OPTIONPRICER"

// Config represents the complete application configuration.
type Config struct {
	Pricing PricingConfig `mapstructure:"pricing" yaml:"pricing"`
	Market  MarketConfig  `mapstructure:"market"  yaml:"market"`
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
}

// PricingConfig holds defaults applied to requests that omit them.
type PricingConfig struct {
	Rate      float64 `mapstructure:"rate"      yaml:"rate"`      // annual, decimal
	Precision int32   `mapstructure:"precision" yaml:"precision"` // decimal places in reports
}

// MarketConfig selects the spot price source.
type MarketConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // "synthetic", "massive", "csv"
	APIKey   string `mapstructure:"api_key"  yaml:"api_key"`
	CSVPath  string `mapstructure:"csv_path" yaml:"csv_path"`
	Seed     int64  `mapstructure:"seed"     yaml:"seed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host"                 yaml:"host"`
	Port               int    `mapstructure:"port"                 yaml:"port"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // "error", "warn", "info", "debug", "trace"
}

// OutputConfig controls how the price command renders results.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "text", "json", "csv"
	Dir    string `mapstructure:"dir"    yaml:"dir"`    // empty means stdout
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.option-pricer/config.yaml
//  3. /etc/option-pricer/config.yaml
//
// A .env file in the working directory is loaded first when present.
// Environment variables override config file values, e.g.
// OPTIONPRICER_PRICING_RATE=0.03.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".option-pricer"))
	v.AddConfigPath("/etc/option-pricer")

	// Config file not found is fine: defaults + env vars apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pricing.rate", 0.02)
	v.SetDefault("pricing.precision", 4)

	v.SetDefault("market.provider", "synthetic")
	v.SetDefault("market.api_key", "")
	v.SetDefault("market.csv_path", "")
	v.SetDefault("market.seed", 42)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_sec", 10)

	v.SetDefault("logging.level", "info")

	v.SetDefault("output.format", "text")
	v.SetDefault("output.dir", "")
}

// overrideFromEnv reads the market data key from the variables the data
// vendor documents, when the prefixed form is not set.
func overrideFromEnv(cfg *Config) {
	if cfg.Market.APIKey != "" {
		return
	}
	for _, name := range []string{"MASSIVE_API_KEY", "POLYGON_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			cfg.Market.APIKey = key
			return
		}
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
