package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/rx-intray/internal/colors"
)

// Logger is the structured logging interface every component logs through.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a child logger that adds args to every entry.
	With(args ...any) Logger
	// Shutdown closes the log file, if any. Children share the file.
	Shutdown() error
}

// logFile is the file shared by a logger and all of its children.
type logFile struct {
	f    *os.File
	path string
	once sync.Once
	err  error
}

func (lf *logFile) close() error {
	lf.once.Do(func() { lf.err = lf.f.Close() })
	return lf.err
}

// clogLogger adapts a charmbracelet logger to Logger. Key-value pairs are
// redacted before they reach the underlying logger.
type clogLogger struct {
	base *clog.Logger
	file *logFile
}

// Init opens a new log file for cfg and returns a JSON logger writing to it.
// When cfg.Enabled is false it returns a no-op logger. Old files beyond
// cfg.MaxFiles are removed first.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	dir, err := LogDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(dir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}

	path := filepath.Join(dir, logFileName(cfg, time.Now()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	base := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
	})
	base.SetFormatter(clog.JSONFormatter)
	return &clogLogger{
		base: base.With("pid", cfg.PID, "command", cfg.Command),
		file: &logFile{f: f, path: path},
	}, nil
}

// logFileName is "rx-intray_<timestamp>_PID<pid>_<command>.log".
func logFileName(cfg Config, now time.Time) string {
	command := strings.Map(func(r rune) rune {
		if r == ' ' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, cfg.Command)
	return fmt.Sprintf("%s%s_PID%d_%s%s", logFilePrefix, now.Format("20060102_150405"), cfg.PID, command, logFileExt)
}

// parseLevel converts a config level to a clog level. Unknown levels are info.
func parseLevel(level string) clog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

// NewWriter returns a Logger writing logfmt lines to w, for console
// diagnostics and tests.
func NewWriter(w io.Writer, level string) Logger {
	return &clogLogger{base: clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           parseLevel(level),
	})}
}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return noopLogger{}
}

func (l *clogLogger) Debug(msg string, args ...any) { l.base.Debug(msg, redact(args)...) }
func (l *clogLogger) Info(msg string, args ...any)  { l.base.Info(msg, redact(args)...) }
func (l *clogLogger) Warn(msg string, args ...any)  { l.base.Warn(msg, redact(args)...) }
func (l *clogLogger) Error(msg string, args ...any) { l.base.Error(msg, redact(args)...) }

func (l *clogLogger) With(args ...any) Logger {
	return &clogLogger{base: l.base.With(redact(args)...), file: l.file}
}

func (l *clogLogger) Shutdown() error {
	if l.file == nil {
		return nil
	}
	return l.file.close()
}

func (l *clogLogger) filePath() string {
	if l.file == nil {
		return ""
	}
	return l.file.path
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }
func (noopLogger) Shutdown() error      { return nil }

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// InitGlobal builds the process logger from the loaded configuration and
// mirrors console messages from the colors package into it. Later calls are
// no-ops once a logger is installed.
func InitGlobal() error {
	globalMu.Lock()
	if globalLogger != nil {
		globalMu.Unlock()
		return nil
	}
	l, err := Init(FromGlobalConfig())
	if err != nil {
		globalMu.Unlock()
		return err
	}
	globalLogger = l
	globalMu.Unlock()

	colors.SetLogger(l)
	if path := CurrentLogFile(); path != "" {
		colors.Debug("Logging to file:", path)
	}
	return nil
}

// GetGlobal returns the process logger, or a no-op logger before InitGlobal.
func GetGlobal() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// Debug logs through the process logger.
func Debug(msg string, args ...any) { GetGlobal().Debug(msg, args...) }

// Info logs through the process logger.
func Info(msg string, args ...any) { GetGlobal().Info(msg, args...) }

// Warn logs through the process logger.
func Warn(msg string, args ...any) { GetGlobal().Warn(msg, args...) }

// Error logs through the process logger.
func Error(msg string, args ...any) { GetGlobal().Error(msg, args...) }

// With returns a child of the process logger.
func With(args ...any) Logger { return GetGlobal().With(args...) }

// ShutdownGlobal closes the process logger and uninstalls it.
func ShutdownGlobal() error {
	globalMu.Lock()
	l := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	if l == nil {
		return nil
	}
	colors.SetLogger(nil)
	return l.Shutdown()
}

// CurrentLogFile returns the path of the process log file, or "" when file
// logging is off.
func CurrentLogFile() string {
	if l, ok := GetGlobal().(*clogLogger); ok {
		return l.filePath()
	}
	return ""
}
