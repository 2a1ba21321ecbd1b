package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RetentionDays is how long rotated log files are kept.
const RetentionDays = 7

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// DefaultLogger returns the process-wide logger used by packages without an
// injected one. It is the first logger created by New unless SetDefault
// replaced it, and nil before either ran.
func DefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault installs l as the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Config captures logging configuration options. An empty Dir disables the
// JSON file output.
type Config struct {
	Level    string
	Dir      string
	Filename string
	Console  io.Writer
}

// Logger writes every record twice: coloured text to the console and JSON to a
// daily rotated file.
type Logger struct {
	cfg         Config
	level       slog.Level
	jsonLogger  *slog.Logger
	textLogger  *slog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
	closed      bool
}

// ParseLevel maps a config level name onto slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a Logger and starts the rotation checker when file output is on.
func New(cfg Config) (*Logger, error) {
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.Filename == "" {
		cfg.Filename = "server.log"
	}
	level := ParseLevel(cfg.Level)

	l := &Logger{
		cfg:         cfg,
		level:       level,
		textLogger:  slog.New(NewTextHandler(cfg.Console, level)),
		jsonLogger:  slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: level})),
		currentDate: time.Now().Format("2006-01-02"),
		stopCh:      make(chan struct{}),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err := os.OpenFile(filepath.Join(cfg.Dir, cfg.Filename), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.logFile = file
		l.jsonLogger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
		l.startRotationChecker()
	}

	defaultMu.Lock()
	if defaultLogger == nil {
		defaultLogger = l
	}
	defaultMu.Unlock()
	return l, nil
}

// Discard returns a logger that drops everything. Handy for tests.
func Discard() *Logger {
	return &Logger{
		level:      slog.LevelError + 1,
		textLogger: slog.New(NewTextHandler(io.Discard, slog.LevelError+1)),
		jsonLogger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		stopCh:     make(chan struct{}),
	}
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				l.checkAndRotate(time.Now())
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) checkAndRotate(now time.Time) {
	today := now.Format("2006-01-02")
	l.mu.RLock()
	current, closed := l.currentDate, l.closed
	l.mu.RUnlock()
	if !closed && today != current {
		l.rotate(today)
		l.cleanOldLogs(now)
	}
}

// rotate renames server.log to server-<previous date>.log and reopens server.log.
func (l *Logger) rotate(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Close may have run while this rotation waited for the lock.
	if l.closed {
		return
	}
	if l.logFile != nil {
		l.logFile.Close()
	}

	currentPath := filepath.Join(l.cfg.Dir, l.cfg.Filename)
	ext := filepath.Ext(l.cfg.Filename)
	base := strings.TrimSuffix(l.cfg.Filename, ext)
	archivedPath := filepath.Join(l.cfg.Dir, fmt.Sprintf("%s-%s%s", base, l.currentDate, ext))

	if _, err := os.Stat(currentPath); err == nil {
		if err := os.Rename(currentPath, archivedPath); err != nil {
			l.textLogger.Error("rename log file failed", slog.String("error", err.Error()))
		}
	}

	file, err := os.OpenFile(currentPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.textLogger.Error("open new log file failed", slog.String("error", err.Error()))
		l.logFile = nil
		l.jsonLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return
	}

	l.logFile = file
	l.currentDate = newDate
	l.jsonLogger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: l.level}))
	l.textLogger.Info("log file rotated", slog.String("new_date", newDate))
}

func (l *Logger) cleanOldLogs(now time.Time) {
	entries, err := os.ReadDir(l.cfg.Dir)
	if err != nil {
		l.textLogger.Error("read log dir failed", slog.String("error", err.Error()))
		return
	}

	cutoff := now.AddDate(0, 0, -RetentionDays)
	ext := filepath.Ext(l.cfg.Filename)
	base := strings.TrimSuffix(l.cfg.Filename, ext)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, base+"-") || !strings.HasSuffix(name, ext) {
			continue
		}
		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, base+"-"), ext)
		fileDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil || !fileDate.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.cfg.Dir, name)); err != nil {
			l.textLogger.Error("remove old log failed", slog.String("file", name), slog.String("error", err.Error()))
		}
	}
}

// Close stops rotation and closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	var err error
	l.closeOnce.Do(func() {
		if l.ticker != nil {
			l.ticker.Stop()
		}
		close(l.stopCh)

		l.mu.Lock()
		defer l.mu.Unlock()
		l.closed = true
		if l.logFile != nil {
			err = l.logFile.Close()
			l.logFile = nil
			l.jsonLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		}
	})
	return err
}

func (l *Logger) log(level slog.Level, msg string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}

	var attrs []slog.Attr
	if len(args) > 0 && strings.Contains(msg, "%") {
		msg = fmt.Sprintf(msg, args...)
	} else if len(args) > 0 && args[0] != nil {
		if fields, ok := args[0].(map[string]interface{}); ok {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				attrs = append(attrs, slog.Any(k, fields[k]))
			}
		} else {
			attrs = append(attrs, slog.Any("fields", args[0]))
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	ctx := context.Background()
	l.jsonLogger.LogAttrs(ctx, level, msg, attrs...)
	l.textLogger.LogAttrs(ctx, level, msg, attrs...)
}

// Debug, Info, Warn and Error accept either printf arguments (when msg contains
// a verb) or a single map[string]interface{} of fields.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(slog.LevelDebug, msg, args...) }

func (l *Logger) Info(msg string, args ...interface{}) { l.log(slog.LevelInfo, msg, args...) }

func (l *Logger) Warn(msg string, args ...interface{}) { l.log(slog.LevelWarn, msg, args...) }

func (l *Logger) Error(msg string, args ...interface{}) { l.log(slog.LevelError, msg, args...) }

// FormatLog prefixes message with a single tag: FormatLog("HTTP", "ready") -> "[HTTP] ready".
// Messages that already start with "[" are returned unchanged.
func FormatLog(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" || strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}

func (l *Logger) DebugTag(tag, msg string, args ...interface{}) {
	l.log(slog.LevelDebug, FormatLog(tag, msg), args...)
}

func (l *Logger) InfoTag(tag, msg string, args ...interface{}) {
	l.log(slog.LevelInfo, FormatLog(tag, msg), args...)
}

func (l *Logger) WarnTag(tag, msg string, args ...interface{}) {
	l.log(slog.LevelWarn, FormatLog(tag, msg), args...)
}

func (l *Logger) ErrorTag(tag, msg string, args ...interface{}) {
	l.log(slog.LevelError, FormatLog(tag, msg), args...)
}

// Slog exposes the console logger for structured integrations.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(NewTextHandler(io.Discard, slog.LevelError+1))
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textLogger
}
