package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tatoflam/weave-digest/internal/digest"
)

// Config holds the full application configuration.
type Config struct {
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	Tiers TiersConfig `yaml:"tiers" mapstructure:"tiers"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// StoreConfig locates the digest stores on disk.
type StoreConfig struct {
	// BaseDir is the plugin-root directory holding the shared stores and,
	// by default, one subdirectory per tier.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
	// TierDirs overrides the directory for individual tiers.
	TierDirs map[string]string `yaml:"tier_dirs" mapstructure:"tier_dirs"`
}

// TiersConfig overrides per-tier finalization thresholds. A tier missing
// here keeps its built-in default.
type TiersConfig struct {
	Thresholds map[string]int `yaml:"thresholds" mapstructure:"thresholds"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from weave.yaml and the environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("weave")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.base_dir", "WeaveDigests")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Layout builds the on-disk layout from the store configuration.
func (c *Config) Layout() digest.Layout {
	return digest.Layout{BaseDir: c.Store.BaseDir, TierDirs: c.Store.TierDirs}
}

// Registry builds the tier registry with any configured threshold
// overrides applied.
func (c *Config) Registry() (*digest.Registry, error) {
	reg, err := digest.NewRegistry(c.Tiers.Thresholds)
	if err != nil {
		return nil, eris.Wrap(err, "config: tier thresholds")
	}
	return reg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
