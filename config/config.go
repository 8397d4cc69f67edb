// SPDX-License-Identifier: MIT

// Package config loads the vcest run configuration with viper.
//
// Sources, lowest to highest precedence:
//  1. defaults (SetDefaults)
//  2. an optional config file (TOML, YAML or JSON, picked by extension)
//  3. VCEST_* environment variables (VCEST_SOLVE_MAX_ITERATIONS, …)
//  4. command-line flags bound by the caller with BindPFlag
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/varcomp/estimate"
	"github.com/katalvlaran/varcomp/jackknife"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VCEST"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the resolved run configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log" toml:"log"`
	Solve     SolveConfig     `mapstructure:"solve" yaml:"solve" toml:"solve"`
	Jackknife JackknifeConfig `mapstructure:"jackknife" yaml:"jackknife" toml:"jackknife"`
	Simulate  SimulateConfig  `mapstructure:"simulate" yaml:"simulate" toml:"simulate"`
}

// LogConfig mirrors logging.Config.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" toml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json" toml:"json"`
}

// SolveConfig holds the optimiser settings passed to estimate.Solve.
type SolveConfig struct {
	MaxIterations     int     `mapstructure:"max_iterations" yaml:"max_iterations" toml:"max_iterations"`
	Memory            int     `mapstructure:"memory" yaml:"memory" toml:"memory"`
	GradientTolerance float64 `mapstructure:"gradient_tolerance" yaml:"gradient_tolerance" toml:"gradient_tolerance"`
	Factr             float64 `mapstructure:"factr" yaml:"factr" toml:"factr"`
	MaxLineSearch     int     `mapstructure:"max_line_search" yaml:"max_line_search" toml:"max_line_search"`
	Verbose           bool    `mapstructure:"verbose" yaml:"verbose" toml:"verbose"`
}

// JackknifeConfig holds the resampling settings.
type JackknifeConfig struct {
	BlockSize int `mapstructure:"block_size" yaml:"block_size" toml:"block_size"`
	// Workers ≤ 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers" toml:"workers"`
}

// SimulateConfig holds the generator settings.
type SimulateConfig struct {
	Seed  uint64  `mapstructure:"seed" yaml:"seed" toml:"seed"`
	N     int     `mapstructure:"n" yaml:"n" toml:"n"`
	Noise float64 `mapstructure:"noise" yaml:"noise" toml:"noise"`
}

// SetDefaults registers every key with its default. Keys must be registered
// for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "")
	v.SetDefault("log.json", false)

	v.SetDefault("solve.max_iterations", estimate.DefaultMaxIterations)
	v.SetDefault("solve.memory", estimate.DefaultMemory)
	v.SetDefault("solve.gradient_tolerance", estimate.DefaultGradientTolerance)
	v.SetDefault("solve.factr", estimate.DefaultFactr)
	v.SetDefault("solve.max_line_search", estimate.DefaultMaxLineSearch)
	v.SetDefault("solve.verbose", estimate.DefaultVerbose)

	v.SetDefault("jackknife.block_size", jackknife.DefaultBlockSize)
	v.SetDefault("jackknife.workers", 0)

	v.SetDefault("simulate.seed", 0)
	v.SetDefault("simulate.n", 1000)
	v.SetDefault("simulate.noise", 1.0)
}

// NewViper returns a viper instance with defaults, environment binding and,
// when path is non-empty, the given config file merged in.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate rejects values the option constructors would panic on.
func (c *Config) Validate() error {
	switch {
	case c.Solve.MaxIterations <= 0:
		return errors.Wrapf(ErrInvalid, "solve.max_iterations=%d", c.Solve.MaxIterations)
	case c.Solve.Memory <= 0:
		return errors.Wrapf(ErrInvalid, "solve.memory=%d", c.Solve.Memory)
	case !(c.Solve.GradientTolerance > 0):
		return errors.Wrapf(ErrInvalid, "solve.gradient_tolerance=%g", c.Solve.GradientTolerance)
	case !(c.Solve.Factr > 0):
		return errors.Wrapf(ErrInvalid, "solve.factr=%g", c.Solve.Factr)
	case c.Solve.MaxLineSearch <= 0:
		return errors.Wrapf(ErrInvalid, "solve.max_line_search=%d", c.Solve.MaxLineSearch)
	case c.Jackknife.BlockSize <= 0:
		return errors.Wrapf(ErrInvalid, "jackknife.block_size=%d", c.Jackknife.BlockSize)
	case c.Simulate.N <= 0:
		return errors.Wrapf(ErrInvalid, "simulate.n=%d", c.Simulate.N)
	case c.Simulate.Noise < 0:
		return errors.Wrapf(ErrInvalid, "simulate.noise=%g", c.Simulate.Noise)
	}

	return nil
}

// SolveOptions converts the solve section into estimate options.
func (c *Config) SolveOptions(log *zap.Logger) []estimate.Option {
	return []estimate.Option{
		estimate.WithLogger(log),
		estimate.WithVerbose(c.Solve.Verbose),
		estimate.WithMaxIterations(c.Solve.MaxIterations),
		estimate.WithMemory(c.Solve.Memory),
		estimate.WithGradientTolerance(c.Solve.GradientTolerance),
		estimate.WithFactr(c.Solve.Factr),
		estimate.WithMaxLineSearch(c.Solve.MaxLineSearch),
	}
}

// JackknifeOptions converts the jackknife section (plus the solve section for
// every replicate) into jackknife options.
func (c *Config) JackknifeOptions(log *zap.Logger) []jackknife.Option {
	opts := []jackknife.Option{
		jackknife.WithLogger(log),
		jackknife.WithBlockSize(c.Jackknife.BlockSize),
		jackknife.WithSolveOptions(c.SolveOptions(log.Named("solve"))...),
	}
	if c.Jackknife.Workers > 0 {
		opts = append(opts, jackknife.WithWorkers(c.Jackknife.Workers))
	}

	return opts
}
