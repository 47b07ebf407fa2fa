package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/utakatalp/standings-simulator/internal/config"
)

// New builds the process logger. Every entry carries component so CLI and
// server output can be told apart when both write to the same sink.
func New(cfg config.LogConfig, component string) (*zap.Logger, error) {
	zc := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:       cfg.Development,
		Encoding:          encoding(cfg.Encoding),
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		EncoderConfig:     encoderConfig(encoding(cfg.Encoding)),
		// stdout is reserved for tables and CSV output
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if component != "" {
		zc.InitialFields = map[string]any{"component": component}
	}
	if cfg.Sampling {
		zc.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 100}
	}
	return zc.Build()
}

// parseLevel falls back to info for empty or unknown levels.
func parseLevel(s string) zapcore.Level {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(strings.TrimSpace(s))); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func encoding(s string) string {
	if strings.EqualFold(s, "json") {
		return "json"
	}
	return "console"
}

func encoderConfig(enc string) zapcore.EncoderConfig {
	if enc == "json" {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return ec
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return ec
}
