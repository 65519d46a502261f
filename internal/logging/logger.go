// Package logging provides categorized file-based debug logging for the
// council pipeline. Each category writes to its own <dir>/<date>_<category>.log
// backed by a zap core. Logging is a silent no-op until Initialize is called
// with debug enabled.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryTransport Category = "transport" // HTTP calls, retries, backoff
	CategoryStage1    Category = "stage1"    // opinion gathering
	CategoryStage2    Category = "stage2"    // anonymized cross-review
	CategoryStage3    Category = "stage3"    // chairman synthesis
	CategoryRun       Category = "run"       // run coordination, timing
	CategoryReport    Category = "report"    // report rendering
)

// Logger writes to one category's log file. A Logger with a nil sugar is a
// no-op, which is what Get returns before Initialize or when debug is off.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	enabled   bool
	logLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Initialize sets up the logging directory. When debug is false all loggers
// are no-ops and no directory is created.
func Initialize(dir string, debug bool, level string) error {
	enabled = debug
	if !enabled {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("logs directory required")
	}

	switch level {
	case "debug":
		logLevel.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		logLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		logLevel.SetLevel(zapcore.ErrorLevel)
	default:
		logLevel.SetLevel(zapcore.InfoLevel)
	}

	logsDir = dir
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Get(CategoryRun).Info("=== council logging initialized (level=%s) ===", level)
	return nil
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled.
func Get(category Category) *Logger {
	if !enabled || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(file),
		logLevel,
	)

	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).Named(string(category)).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// CloseAll flushes and closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at info level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// Convenience functions. No-ops when logging is disabled.

// Transport logs to the transport category.
func Transport(format string, args ...interface{}) {
	Get(CategoryTransport).Info(format, args...)
}

// TransportDebug logs debug to the transport category.
func TransportDebug(format string, args ...interface{}) {
	Get(CategoryTransport).Debug(format, args...)
}

// TransportWarn logs warning to the transport category.
func TransportWarn(format string, args ...interface{}) {
	Get(CategoryTransport).Warn(format, args...)
}

// TransportError logs error to the transport category.
func TransportError(format string, args ...interface{}) {
	Get(CategoryTransport).Error(format, args...)
}

// Stage1 logs to the stage1 category.
func Stage1(format string, args ...interface{}) {
	Get(CategoryStage1).Info(format, args...)
}

// Stage1Error logs error to the stage1 category.
func Stage1Error(format string, args ...interface{}) {
	Get(CategoryStage1).Error(format, args...)
}

// Stage2 logs to the stage2 category.
func Stage2(format string, args ...interface{}) {
	Get(CategoryStage2).Info(format, args...)
}

// Stage2Warn logs warning to the stage2 category.
func Stage2Warn(format string, args ...interface{}) {
	Get(CategoryStage2).Warn(format, args...)
}

// Stage3 logs to the stage3 category.
func Stage3(format string, args ...interface{}) {
	Get(CategoryStage3).Info(format, args...)
}

// Stage3Warn logs warning to the stage3 category.
func Stage3Warn(format string, args ...interface{}) {
	Get(CategoryStage3).Warn(format, args...)
}

// Stage3Error logs error to the stage3 category.
func Stage3Error(format string, args ...interface{}) {
	Get(CategoryStage3).Error(format, args...)
}

// Run logs to the run category.
func Run(format string, args ...interface{}) {
	Get(CategoryRun).Info(format, args...)
}

// RunError logs error to the run category.
func RunError(format string, args ...interface{}) {
	Get(CategoryRun).Error(format, args...)
}

// Report logs to the report category.
func Report(format string, args ...interface{}) {
	Get(CategoryReport).Info(format, args...)
}
