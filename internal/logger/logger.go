// Package logger provides leveled, structured logging for the session
// library and its tools. It wraps log/slog with an atomically
// switchable level and format so long-lived daemons can be reconfigured
// without tearing down the logger.
//
// Two output formats are supported:
//
//   - "text": human-readable lines with optional ANSI colors when the
//     destination is a terminal
//   - "json": one JSON object per line for log aggregation pipelines
//
// The package-level functions (Debug, Info, Warn, Error and their Ctx
// and printf variants) are safe for concurrent use.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level represents a logging severity level.
type Level int

// Logging levels, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format selects the output encoding.
type Format string

// Supported output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config controls logger initialization.
type Config struct {
	// Level is the minimum severity to emit: "debug", "info", "warn"
	// or "error".
	Level string `mapstructure:"level" yaml:"level" json:"level"`

	// Format is the output encoding: "text" or "json".
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// Output is the destination: "stdout", "stderr" or a file path.
	Output string `mapstructure:"output" yaml:"output" json:"output"`
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // Format

	mu       sync.RWMutex
	slogger  *slog.Logger
	output   io.Writer
	useColor bool
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store(FormatText)
	output = os.Stderr
	useColor = isTerminal(os.Stderr)
	reconfigure()
}

// toSlogLevel maps a package Level onto the slog scale.
func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseLevel converts a config string to a Level. Unknown strings
// default to Info.
func parseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// reconfigure rebuilds the slog handler from the current output,
// format and color settings. Callers must hold mu.
func reconfigure() {
	levelVar := new(slog.LevelVar)
	levelVar.Set(toSlogLevel(Level(currentLevel.Load())))

	opts := &slog.HandlerOptions{Level: levelVar}

	var handler slog.Handler
	if currentFormat.Load().(Format) == FormatJSON {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = newTextHandler(output, opts, useColor)
	}
	slogger = slog.New(handler)
}

// Init configures the logger from cfg. Output may be "stdout",
// "stderr" or a file path; files are opened in append mode and never
// colored. Init replaces any previous configuration.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr)
	case "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", cfg.Output, err)
		}
		output = f
		useColor = false
	}

	currentLevel.Store(int32(parseLevel(cfg.Level)))

	format := FormatText
	if strings.EqualFold(strings.TrimSpace(cfg.Format), string(FormatJSON)) {
		format = FormatJSON
	}
	currentFormat.Store(format)

	reconfigure()
	return nil
}

// InitWithWriter configures the logger to write to w. Used by tests
// and by hosts that manage their own log sinks. Color is disabled.
func InitWithWriter(w io.Writer, level Level, format Format) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	useColor = false
	currentLevel.Store(int32(level))
	if format != FormatJSON {
		format = FormatText
	}
	currentFormat.Store(format)
	reconfigure()
}

// SetLevel changes the minimum severity at runtime. Invalid levels are
// ignored.
func SetLevel(l Level) {
	if l < LevelDebug || l > LevelError {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	currentLevel.Store(int32(l))
	reconfigure()
}

// GetLevel returns the current minimum severity.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

// SetFormat switches the output encoding at runtime. Invalid formats
// are ignored.
func SetFormat(f Format) {
	if f != FormatText && f != FormatJSON {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	currentFormat.Store(f)
	reconfigure()
}

// getLogger returns the active slog.Logger.
func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// enabled is a cheap pre-check that avoids building attributes for
// records below the current level.
func enabled(l Level) bool {
	return l >= Level(currentLevel.Load())
}

// Debug logs at debug level with structured key-value args.
func Debug(msg string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	getLogger().Debug(msg, args...)
}

// Info logs at info level with structured key-value args.
func Info(msg string, args ...any) {
	if !enabled(LevelInfo) {
		return
	}
	getLogger().Info(msg, args...)
}

// Warn logs at warn level with structured key-value args.
func Warn(msg string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	getLogger().Warn(msg, args...)
}

// Error logs at error level with structured key-value args.
func Error(msg string, args ...any) {
	if !enabled(LevelError) {
		return
	}
	getLogger().Error(msg, args...)
}

// appendContextFields prepends fields from the LogContext carried by
// ctx, so per-call args override nothing and grep order stays stable.
func appendContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	fields := lc.fields()
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	out = append(out, fields...)
	out = append(out, args...)
	return out
}

// DebugCtx logs at debug level, including fields from the LogContext
// carried by ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	getLogger().Debug(msg, appendContextFields(ctx, args)...)
}

// InfoCtx logs at info level, including fields from the LogContext
// carried by ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelInfo) {
		return
	}
	getLogger().Info(msg, appendContextFields(ctx, args)...)
}

// WarnCtx logs at warn level, including fields from the LogContext
// carried by ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	getLogger().Warn(msg, appendContextFields(ctx, args)...)
}

// ErrorCtx logs at error level, including fields from the LogContext
// carried by ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelError) {
		return
	}
	getLogger().Error(msg, appendContextFields(ctx, args)...)
}

// With returns a slog.Logger that always carries the given attributes.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Debugf logs a printf-formatted message at debug level.
func Debugf(format string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	getLogger().Debug(fmt.Sprintf(format, args...))
}

// Infof logs a printf-formatted message at info level.
func Infof(format string, args ...any) {
	if !enabled(LevelInfo) {
		return
	}
	getLogger().Info(fmt.Sprintf(format, args...))
}

// Warnf logs a printf-formatted message at warn level.
func Warnf(format string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	getLogger().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a printf-formatted message at error level.
func Errorf(format string, args ...any) {
	if !enabled(LevelError) {
		return
	}
	getLogger().Error(fmt.Sprintf(format, args...))
}
