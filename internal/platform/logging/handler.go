package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// tagColors colours module-tagged messages ("[HTTP] ...") instead of the level.
var tagColors = map[string]string{
	"[Bootstrap]":     "\x1b[96m",
	"[HTTP]":          "\x1b[95m",
	"[Proxy]":         "\x1b[94m",
	"[Upstream]":      "\x1b[34m",
	"[Gallery]":       "\x1b[92m",
	"[Snapshot]":      "\x1b[97m",
	"[OBSERVABILITY]": "\x1b[90m",
}

// TextHandler is a console slog.Handler producing coloured single-line records.
type TextHandler struct {
	writer io.Writer
	level  slog.Level
	mu     *sync.Mutex
	attrs  []slog.Attr
}

func NewTextHandler(w io.Writer, level slog.Level) *TextHandler {
	return &TextHandler{writer: w, level: level, mu: &sync.Mutex{}}
}

func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006-01-02 15:04:05.000")
	msg := r.Message

	var b strings.Builder
	if color, ok := moduleColor(msg); ok {
		fmt.Fprintf(&b, "%s[%s]%s %s%s%s", colorTime, timeStr, colorReset, color, msg, colorReset)
	} else {
		levelStr, levelColor := levelLabel(r.Level)
		fmt.Fprintf(&b, "%s[%s]%s %s[%s]%s %s",
			colorTime, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			msg)
	}

	if len(h.attrs) > 0 || r.NumAttrs() > 0 {
		b.WriteString(" {")
		for _, a := range h.attrs {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		}
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
			return true
		})
		b.WriteString(" }")
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TextHandler{writer: h.writer, level: h.level, mu: h.mu, attrs: merged}
}

// WithGroup is not supported; groups are flattened.
func (h *TextHandler) WithGroup(string) slog.Handler {
	return h
}

func moduleColor(msg string) (string, bool) {
	if !strings.HasPrefix(msg, "[") {
		return "", false
	}
	end := strings.Index(msg, "]")
	if end < 0 {
		return "", false
	}
	color, ok := tagColors[msg[:end+1]]
	return color, ok
}

func levelLabel(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return "ERROR", colorError
	case level >= slog.LevelWarn:
		return "WARN", colorWarn
	case level >= slog.LevelInfo:
		return "INFO", colorInfo
	default:
		return "DEBUG", colorDebug
	}
}
