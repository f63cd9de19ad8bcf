// Package config loads the settings of the tinydsa command-line tool.
//
// Settings come from an optional JSON or YAML file, then from TINYDSA_*
// environment variables, which take precedence. A .env file in the
// working directory is loaded into the environment first, if present.
package config

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pornin/go-tiny-dsa/tinydsa"
)

// Lowest accepted prime table bound.
const minPrimeBound = 1000

type Config struct {
	// Logging
	LogLevel  int    `json:"log_level" yaml:"log_level" env:"TINYDSA_LOG_LEVEL" env-default:"1"`
	LogFormat string `json:"log_format" yaml:"log_format" env:"TINYDSA_LOG_FORMAT" env-default:"console"`

	// Storage
	DBPath string `json:"db_path" yaml:"db_path" env:"TINYDSA_DB" env-default:"tinydsa.db"`

	// Generation
	MaxAttempts int    `json:"max_attempts" yaml:"max_attempts" env:"TINYDSA_MAX_ATTEMPTS" env-default:"65536"`
	PrimeBound  uint64 `json:"prime_bound" yaml:"prime_bound" env:"TINYDSA_PRIME_BOUND" env-default:"2097152"`
	MinIndex    int    `json:"min_index" yaml:"min_index" env:"TINYDSA_MIN_INDEX"`
	MaxIndex    int    `json:"max_index" yaml:"max_index" env:"TINYDSA_MAX_INDEX"`

	// Seed makes every random draw reproducible when set.
	Seed string `json:"seed" yaml:"seed" env:"TINYDSA_SEED"`

	// Stress runs
	Workers     int    `json:"workers" yaml:"workers" env:"TINYDSA_WORKERS" env-default:"4"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr" env:"TINYDSA_METRICS_ADDR"`
}

// Load reads the configuration. An empty path reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to read environment")
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files (or ./.env) into the process
// environment. Missing files are not an error; variables already set
// are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrapf(err, "failed to load %s", p)
		}
	}
	return nil
}

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return errors.New("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return errors.New("log format must be 'json' or 'console'")
	}

	if cfg.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if cfg.PrimeBound < minPrimeBound {
		return errors.Errorf("prime bound must be at least %d", minPrimeBound)
	}
	if cfg.MinIndex < 0 || cfg.MaxIndex < 0 {
		return errors.New("prime table indices must not be negative")
	}
	if cfg.MaxIndex != 0 && cfg.MinIndex >= cfg.MaxIndex {
		return errors.New("min index must be lower than max index")
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "tinydsa.db"
	}
	return nil
}

// Tiny returns the settings of the signature operations. The label
// separates the seeded streams of distinct operations run from the same
// seed.
func (c Config) Tiny(log *zerolog.Logger, label string) *tinydsa.Config {
	tc := &tinydsa.Config{
		MaxAttempts: c.MaxAttempts,
		Logger:      log,
	}
	if c.Seed != "" {
		tc = tc.WithSeed([]byte(c.Seed + "/" + label))
	}
	return tc
}
