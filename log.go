package bramble

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logger is the package default used by components constructed without an
// explicit logger. Single-threaded engine: set it before starting the loop.
var logger = zap.NewNop()

// SetLogger replaces the package default logger. A nil logger disables
// logging.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Logger returns the package default logger.
func Logger() *zap.Logger {
	return logger
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return logger
}

// NewLogger builds a zap logger from cfg. Format "console" selects the
// development encoder; anything else writes JSON.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil && cfg.Level != "" {
		return nil, fmt.Errorf("bramble: log level %q: %w", cfg.Level, err)
	}
	if cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if cfg.Format == "console" {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Sampling {
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("bramble: build logger: %w", err)
	}
	return l.Named("bramble"), nil
}
