// Package logger provides structured logging for clmigrate using zap.
//
// A Logger carries two independent channels: the operational log (embedded
// SugaredLogger) and the failure log, which receives rejected payloads and
// remote response bodies for later review.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/clmigrate/internal/config"
)

// Logger wraps zap.SugaredLogger with context methods.
type Logger struct {
	*zap.SugaredLogger
	base     *zap.Logger
	failures *zap.SugaredLogger
}

// New creates a new Logger from configuration. An output file that cannot
// be opened is an error.
func New(cfg *config.LoggingConfig) (*Logger, error) {
	level := parseLevel(cfg.Level)
	encoder := buildEncoder(cfg.Format)
	writers, err := buildWriters(cfg.Output, true)
	if err != nil {
		return nil, err
	}
	failureWriters, err := buildWriters(cfg.FailureOutput, false)
	if err != nil {
		return nil, fmt.Errorf("failure log: %w", err)
	}

	core := zapcore.NewCore(encoder, writers, level)
	baseLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	// The failure channel is always JSON and never filtered by level.
	failureCore := zapcore.NewCore(buildEncoder("json"), failureWriters, zapcore.DebugLevel)
	failureLogger := zap.New(failureCore).Named("failures")

	return &Logger{
		SugaredLogger: baseLogger.Sugar(),
		base:          baseLogger,
		failures:      failureLogger.Sugar(),
	}, nil
}

// NewNop returns a Logger that discards everything on both channels.
func NewNop() *Logger {
	return &Logger{
		SugaredLogger: zap.NewNop().Sugar(),
		base:          zap.NewNop(),
		failures:      zap.NewNop().Sugar(),
	}
}

// NewWithCores builds a Logger from explicit cores. Tests use it with
// zaptest/observer to inspect what each channel received.
func NewWithCores(operational, failures zapcore.Core) *Logger {
	base := zap.New(operational)
	return &Logger{
		SugaredLogger: base.Sugar(),
		base:          base,
		failures:      zap.New(failures).Sugar(),
	}
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// buildEncoder creates the appropriate encoder based on format.
func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	// Text format with colored output
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// buildWriters creates the output writers based on configuration.
// When tee is set, file output is mirrored to stdout.
func buildWriters(output string, tee bool) (zapcore.WriteSyncer, error) {
	switch output {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		if !tee {
			return zapcore.AddSync(file), nil
		}
		return zapcore.NewMultiWriteSyncer(
			zapcore.AddSync(file),
			zapcore.AddSync(os.Stdout),
		), nil
	}
}

// Failures returns the failure/audit channel.
func (l *Logger) Failures() *zap.SugaredLogger {
	return l.failures
}

// WithResource returns a Logger with resource context on both channels.
func (l *Logger) WithResource(resource string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("resource", resource),
		base:          l.base,
		failures:      l.failures.With("resource", resource),
	}
}

// WithRun returns a Logger tagged with a run id on both channels.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With("run", runID),
		base:          l.base,
		failures:      l.failures.With("run", runID),
	}
}

// WithFields returns a Logger with additional operational fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		base:          l.base,
		failures:      l.failures,
	}
}

// Sync flushes any buffered log entries on both channels.
func (l *Logger) Sync() error {
	_ = l.failures.Sync()
	return l.base.Sync()
}
