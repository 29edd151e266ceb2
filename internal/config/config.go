// Package config loads the TOML configuration of the sceneworld tools.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Stress  StressConfig  `toml:"stress"`
	Logging LoggingConfig `toml:"logging"`
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration"`
	Entities       int           `toml:"entities"`
	HierarchyDepth int           `toml:"hierarchy_depth"`

	// TickRate of zero runs frames back to back.
	TickRate time.Duration `toml:"tick_rate"`

	// Parallelism sizes the worker pool; zero uses GOMAXPROCS.
	Parallelism int `toml:"parallelism"`

	// DuplicateEvery and RemoveEvery are frame intervals; zero disables them.
	DuplicateEvery int `toml:"duplicate_every"`
	RemoveEvery    int `toml:"remove_every"`

	// Snapshot is the scene file written at the end of the run.
	Snapshot       string `toml:"snapshot"`
	Profile        string `toml:"profile"` // "", "cpu" or "mem"
	GCPauseMetrics bool   `toml:"gc_pause_metrics"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, eris.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Stress: StressConfig{
			Duration:       10 * time.Second,
			Entities:       10000,
			HierarchyDepth: 3,
			DuplicateEvery: 60,
			RemoveEvery:    90,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	switch {
	case c.Stress.Duration <= 0:
		return eris.New("stress.duration must be positive")
	case c.Stress.Entities < 0:
		return eris.New("stress.entities must not be negative")
	case c.Stress.HierarchyDepth < 0:
		return eris.New("stress.hierarchy_depth must not be negative")
	case c.Stress.Parallelism < 0:
		return eris.New("stress.parallelism must not be negative")
	}

	switch c.Stress.Profile {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("stress.profile %q is not one of cpu, mem", c.Stress.Profile)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return eris.Errorf("logging.format %q is not one of json, console", c.Logging.Format)
	}
	return nil
}

// NewLogger builds a zap logger from the logging section. Unknown levels fall
// back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "failed to build logger")
	}
	return logger, nil
}
