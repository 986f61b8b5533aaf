// Package observability provides logging and metrics for the calculator.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/risus/internal/config"
)

// logPresets maps logging.format to the zap preset it starts from.
var logPresets = map[string]func() zap.Config{
	"json":    zap.NewProductionConfig,
	"console": consolePreset,
}

func consolePreset() zap.Config {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	return c
}

// NewLogger builds the "risus" logger described by cfg. Every format writes to
// stderr; stdout is reserved for tables and failure listings.
//
// Postcondition: Returns a logger or an error naming the bad level or format.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	preset, ok := logPresets[cfg.Format]
	if !ok {
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	zc := preset()
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building %s logger: %w", cfg.Format, err)
	}
	return logger.Named("risus"), nil
}
