package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment controls the baseline logger profile.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
	EnvironmentLocal       Environment = "local"
)

// Options contains all logger initialization inputs.
type Options struct {
	Environment Environment
	Level       string
}

func (o Options) validate() error {
	switch o.Environment {
	case EnvironmentProduction, EnvironmentDevelopment, EnvironmentLocal:
		return nil
	default:
		return fmt.Errorf("invalid environment %q", o.Environment)
	}
}

// New builds a JSON logger writing to stderr.
func New(opts Options) (*zap.Logger, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid logger options: %w", err)
	}

	cfg := configFor(opts.Environment)

	level, err := resolveLevel(opts)
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func resolveLevel(opts Options) (zap.AtomicLevel, error) {
	if strings.TrimSpace(opts.Level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(opts.Level); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("invalid level %q: %w", opts.Level, err)
		}
		return zap.NewAtomicLevelAt(parsed), nil
	}

	if opts.Environment == EnvironmentDevelopment || opts.Environment == EnvironmentLocal {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	return zap.NewAtomicLevelAt(zapcore.InfoLevel), nil
}

func configFor(env Environment) zap.Config {
	var cfg zap.Config
	if env == EnvironmentDevelopment || env == EnvironmentLocal {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
