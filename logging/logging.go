// SPDX-License-Identifier: MIT

// Package logging builds the zap loggers used by the vcest command. Library
// packages never build loggers themselves; they accept a *zap.Logger through
// their options and default to zap.NewNop().
package logging

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for the repeatable -v flag.
const (
	VerbosityUser  = 0 // warnings and errors only
	VerbosityInfo  = 1 // -v: fit summaries
	VerbosityDebug = 2 // -vv: per-iteration and per-replicate detail
)

// Config selects the encoder and minimum level.
type Config struct {
	// Level is a zap level name ("debug", "info", "warn", "error"). Empty
	// means the level implied by Verbosity.
	Level string

	// Verbosity is the -v count. Ignored when Level is set.
	Verbosity int

	// JSON switches from the console encoder to production JSON.
	JSON bool
}

// VerbosityToLevel maps a -v count to a zap level:
// 0 → warn, 1 → info, 2+ → debug.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch {
	case verbosity <= VerbosityUser:
		return zapcore.WarnLevel
	case verbosity == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// New returns a logger writing to stderr; stdout is reserved for results.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithSink(cfg, zapcore.Lock(os.Stderr))
}

// NewWithSink is New with an explicit destination.
func NewWithSink(cfg Config, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	var enc zapcore.Encoder
	if cfg.JSON {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(ec)
	}

	return zap.New(zapcore.NewCore(enc, sink, level)), nil
}

func (c Config) level() (zapcore.Level, error) {
	if strings.TrimSpace(c.Level) == "" {
		return VerbosityToLevel(c.Verbosity), nil
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level)))
	if err != nil {
		return 0, errors.Wrapf(err, "logging: level %q", c.Level)
	}

	return lvl, nil
}
