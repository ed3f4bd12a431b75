package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New builds the application's zap logger with the given level string
// ("debug", "info", "warn", "error"). Unknown levels default to info.
func New(levelStr string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(levelStr) {
	case "debug":
		level = zapcore.DebugLevel
	case "info", "":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		slog.Warn("Invalid log level string, defaulting to INFO", "input", levelStr)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return log, nil
}

// InitSlog routes the global slog logger through the given zap logger, so
// both logging styles end up in the same sink.
func InitSlog(zapLogger *zap.Logger) {
	handler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(handler))
}

// Debug logs a message at DebugLevel through the global slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs a message at InfoLevel through the global slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a message at WarnLevel through the global slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs a message at ErrorLevel through the global slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
