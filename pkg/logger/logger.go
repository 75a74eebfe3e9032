// Package logger is the process-wide leveled logger used by the duel client.
//
// Call sites use printf-style helpers (Infof, Debugf, ...) or a component
// logger returned by Named. Output is produced by zap with a console encoder.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the verbosity threshold used by the logger.
//
// Lower values are more verbose.
type Level int

const (
	// LevelTrace enables extremely verbose logs (wire frames, heartbeats,
	// reducer inputs).
	LevelTrace Level = iota
	// LevelDebug enables verbose logs intended for debugging.
	LevelDebug
	// LevelInfo enables informational logs (default).
	LevelInfo
	// LevelWarn enables only warnings and errors.
	LevelWarn
	// LevelError enables only error logs.
	LevelError
)

// traceLevel sits one step below zap's debug level.
const traceLevel = zapcore.DebugLevel - 1

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

func (l Level) toZap() zapcore.Level {
	switch l {
	case LevelTrace:
		return traceLevel
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel parses a log level string into a Level.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root  = build(os.Stderr)
)

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == traceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

func build(w io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = encodeLevel
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// SetOutput replaces the writer used by the global logger.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	root = build(w)
}

// SetLevel sets the global log level threshold.
func SetLevel(l Level) {
	level.SetLevel(l.toZap())
}

// Enabled reports whether a level would be emitted by the current configuration.
func Enabled(l Level) bool {
	return level.Enabled(l.toZap())
}

// Sync flushes buffered output.
func Sync() error {
	return current().Sync()
}

// Logger is a component-scoped logger. The zero value logs without a name.
type Logger struct {
	name string
}

// Named returns a logger whose lines are prefixed with name.
func Named(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) logf(lvl Level, format string, args ...any) {
	if !Enabled(lvl) {
		return
	}
	z := current()
	if l != nil && l.name != "" {
		z = z.Named(l.name)
	}
	if ce := z.Check(lvl.toZap(), fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// Tracef logs at TRACE level.
func (l *Logger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args...) }

// Debugf logs at DEBUG level.
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at INFO level.
func (l *Logger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at WARN level.
func (l *Logger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at ERROR level.
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

var std = &Logger{}

// Tracef logs at TRACE level.
func Tracef(format string, args ...any) { std.logf(LevelTrace, format, args...) }

// Debugf logs at DEBUG level.
func Debugf(format string, args ...any) { std.logf(LevelDebug, format, args...) }

// Infof logs at INFO level.
func Infof(format string, args ...any) { std.logf(LevelInfo, format, args...) }

// Warnf logs at WARN level.
func Warnf(format string, args ...any) { std.logf(LevelWarn, format, args...) }

// Errorf logs at ERROR level.
func Errorf(format string, args ...any) { std.logf(LevelError, format, args...) }
