// Package config loads spiredeck settings from an optional file, the
// environment and defaults, in that order of precedence after flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the full set of settings shared by the binaries.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Decks   DecksConfig   `mapstructure:"decks"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Web     WebConfig     `mapstructure:"web"`
}

// LoggingConfig controls process logs.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or console
}

// DecksConfig points at an optional starting-deck table.
type DecksConfig struct {
	File string `mapstructure:"file"`
}

// ArchiveConfig points at the SQLite archive. Empty disables it.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

type WebConfig struct {
	Address string `mapstructure:"address"`
}

// EnvPrefix is prepended to environment overrides, e.g. SPIREDECK_LOGGING_LEVEL.
const EnvPrefix = "SPIREDECK"

// Load reads path when it is non-empty. Missing keys fall back to
// environment variables and then to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("decks.file", "")
	v.SetDefault("archive.path", "")
	v.SetDefault("web.address", ":8080")
}

// NewLogger builds a zap logger for the configured level and format.
func (c LoggingConfig) NewLogger() (*zap.Logger, error) {
	var level zapcore.Level
	switch c.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if c.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
