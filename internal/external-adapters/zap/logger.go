// Package zap adapts go.uber.org/zap to the domain Logger interface.
package zap

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ochairo/golicense/internal/domain/interfaces"
)

// Format selects the log encoding
type Format string

const (
	// FormatJSON writes one JSON object per entry
	FormatJSON Format = "json"
	// FormatConsole writes human-readable lines
	FormatConsole Format = "console"
)

// Config contains logger initialization inputs
type Config struct {
	Level  string // debug, info, warn, error; empty selects info
	Format Format // empty selects console
}

// Logger implements interfaces.Logger over a zap logger
type Logger struct {
	logger *zap.Logger
}

// Ensure Logger implements the domain Logger interface
var _ interfaces.Logger = (*Logger)(nil)

// New creates a logger writing to w
func New(cfg Config, w io.Writer) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case FormatConsole, "":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return &Logger{logger: zap.New(core)}, nil
}

// Wrap adapts an existing zap logger
func Wrap(l *zap.Logger) *Logger {
	return &Logger{logger: l}
}

// ParseLevel converts a level name to a zap level; empty selects info
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}

	var parsed zapcore.Level
	if err := parsed.Set(strings.ToLower(strings.TrimSpace(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid level %q: %w", level, err)
	}
	return parsed, nil
}

func (l *Logger) must() *zap.Logger {
	if l == nil || l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.must().Debug(msg, toZap(fields)...)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.must().Info(msg, toZap(fields)...)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.must().Warn(msg, toZap(fields)...)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.must().Error(msg, toZap(fields)...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.must().Sync()
}

func toZap(fields []interfaces.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
