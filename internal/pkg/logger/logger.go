package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the process-wide zap logger.
// An unknown level falls back to info.
func NewZapLogger(level, encoding string) *zap.Logger {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
		fmt.Fprintf(os.Stderr, "Warning: failed to parse log level '%s', defaulting to 'info': %v\n", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if encoding == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	return zap.New(zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stdout),
		logLevel,
	), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// InstallSlog routes the default slog logger into zapLogger.
func InstallSlog(zapLogger *zap.Logger) {
	level := slog.LevelInfo
	if zapLogger.Core().Enabled(zapcore.DebugLevel) {
		level = slog.LevelDebug
	}
	handler := slogzap.Option{
		Level:  level,
		Logger: zapLogger,
	}.NewZapHandler()
	slog.SetDefault(slog.New(handler))
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	slog.Default().Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	slog.Default().Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	slog.Default().Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	slog.Default().Log(context.Background(), slog.LevelError, msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	slog.Default().Log(context.Background(), slog.LevelError, msg, args...)
	os.Exit(1)
}
