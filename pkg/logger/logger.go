// Package logger provides a colored slog console handler for interactive
// use. Log output goes to a writer (normally stderr) with levels
// highlighted by ANSI color; attributes render as key=value pairs.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ANSI color codes used by the handler.
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ColorHandler is a slog.Handler that writes colored, human-oriented log
// lines. It is not meant for machine parsing; use slog's JSON handler for
// that.
type ColorHandler struct {
	opts  slog.HandlerOptions
	attrs []slog.Attr
	group string

	mu  *sync.Mutex
	out io.Writer
}

// NewColorHandler creates a new ColorHandler writing to out.
func NewColorHandler(out io.Writer, opts *slog.HandlerOptions) *ColorHandler {
	h := &ColorHandler{
		out: out,
		mu:  &sync.Mutex{},
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// NewDefaultLogger returns a slog.Logger writing colored output to w at the
// given level.
func NewDefaultLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewColorHandler(w, &slog.HandlerOptions{Level: level}))
}

// Enabled implements slog.Handler.
func (h *ColorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level < slog.LevelInfo:
		return colorGray
	default:
		return colorCyan
	}
}

// Handle implements slog.Handler.
func (h *ColorHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	sb.WriteString(colorGray)
	sb.WriteString(r.Time.Format("15:04:05.000"))
	sb.WriteString(colorReset)
	sb.WriteByte(' ')

	sb.WriteString(levelColor(r.Level))
	sb.WriteString(fmt.Sprintf("%-5s", r.Level.String()))
	sb.WriteString(colorReset)
	sb.WriteByte(' ')

	sb.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		sb.WriteByte(' ')
		sb.WriteString(colorGray)
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(colorReset)
		sb.WriteString(fmt.Sprintf("%v", a.Value.Any()))
	}

	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColorHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}
