package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// instance holds the process-wide logger. Callers use the package-level
// functions below rather than threading a logger value through every
// constructor, so this stays a global by design.
var (
	mu       sync.RWMutex
	instance *zap.Logger
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	instance = New(level)
}

// New builds a zap.Logger writing console-encoded entries to stderr at the
// given level. A nil level defaults to Info.
func New(lvl zapcore.LevelEnabler) *zap.Logger {
	if lvl == nil {
		lvl = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(os.Stderr)),
		lvl,
	)

	return zap.New(core)
}

// NewTee builds a zap.Logger writing console-encoded entries to stderr AND
// structured entries to fileSink, both gated by lvl. Nothing in this module
// calls it: the process-wide logger writes to stderr only, and no
// RotatingFile is opened.
func NewTee(lvl zapcore.LevelEnabler, fileSink zapcore.WriteSyncer) *zap.Logger {
	if lvl == nil {
		lvl = zapcore.InfoLevel
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	fileCfg := consoleCfg
	fileCfg.ConsoleSeparator = " "

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(os.Stderr)), lvl),
	}

	if fileSink != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.Lock(fileSink), lvl))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// ParseLogLevel parses a case-insensitive, whitespace-tolerant level name
// into a zapcore.Level. It returns (InfoLevel, false) when the input is not
// recognised.
func ParseLogLevel(input string) (zapcore.Level, bool) {
	var lvl zapcore.Level

	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return zapcore.InfoLevel, false
	}

	if err := lvl.UnmarshalText([]byte(trimmed)); err != nil {
		return zapcore.InfoLevel, false
	}

	return lvl, true
}

// Logger returns the process-wide zap.Logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()

	return instance
}

// SetLogger replaces the process-wide logger. Exposed mainly for tests.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()

	instance = l
}

// SetLevel changes the process-wide logger's minimum level.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// Level returns the process-wide logger's current minimum level.
func Level() zapcore.Level {
	return level.Level()
}

// Every function below takes a context.Context for call-site symmetry with
// the rest of the codebase (and to carry request-scoped fields in the
// future); none currently reads from it.

func Debug(_ context.Context, msg string)                            { Logger().Debug(msg) }
func Debugf(_ context.Context, format string, args ...any)           { Logger().Sugar().Debugf(format, args...) }
func DebugKV(_ context.Context, msg string, keysAndValues ...any)    { Logger().Sugar().Debugw(msg, keysAndValues...) }

func Info(_ context.Context, msg string)                         { Logger().Info(msg) }
func Infof(_ context.Context, format string, args ...any)        { Logger().Sugar().Infof(format, args...) }
func InfoKV(_ context.Context, msg string, keysAndValues ...any) { Logger().Sugar().Infow(msg, keysAndValues...) }

func Warn(_ context.Context, msg string)                         { Logger().Warn(msg) }
func Warnf(_ context.Context, format string, args ...any)        { Logger().Sugar().Warnf(format, args...) }
func WarnKV(_ context.Context, msg string, keysAndValues ...any) { Logger().Sugar().Warnw(msg, keysAndValues...) }

func Error(_ context.Context, msg string)                         { Logger().Error(msg) }
func Errorf(_ context.Context, format string, args ...any)        { Logger().Sugar().Errorf(format, args...) }
func ErrorKV(_ context.Context, msg string, keysAndValues ...any) { Logger().Sugar().Errorw(msg, keysAndValues...) }

func Fatalf(_ context.Context, format string, args ...any) { Logger().Sugar().Fatalf(format, args...) }
