package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for bibdoc
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	Parse ParseConfig `mapstructure:"parse"`
	Store StoreConfig `mapstructure:"store"`
	Dedup DedupConfig `mapstructure:"dedup"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ParseConfig holds parser configuration
type ParseConfig struct {
	// Macros are predefined @string macros, e.g. journal abbreviations.
	Macros map[string]string `mapstructure:"macros"`
}

// StoreConfig holds the SQLite index location
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// DedupConfig holds defaults for the dedup command
type DedupConfig struct {
	Fields    []string `mapstructure:"fields"`
	Threshold float64  `mapstructure:"threshold"`
}

// Load reads configuration from the global viper instance, which cobra flags
// are bound to.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration from bibdoc.yaml and BIBDOC_* environment
// variables into v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("bibdoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bibdoc"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("BIBDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Dedup.Threshold < 0 || cfg.Dedup.Threshold > 1 {
		return nil, fmt.Errorf("dedup.threshold must be between 0 and 1, got %v", cfg.Dedup.Threshold)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetDefault("store.path", "bibdoc.db")

	v.SetDefault("dedup.fields", []string{"year", "title"})
	v.SetDefault("dedup.threshold", 0.9)
}
