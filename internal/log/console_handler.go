package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\033[0m"
	ansiDim     = "\033[2m"
	ansiRed     = "\033[31m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
)

// consoleHandler renders one record per line for humans watching stderr:
//
//	INFO  10:30:45 server started port=8080
//
// The JSON format goes through slog's own handler; this one only backs the
// pretty format.
type consoleHandler struct {
	out    *lockedWriter
	min    slog.Leveler
	prefix string // group path, "a:b:"
	preset string // attrs bound via WithAttrs, rendered once
}

// lockedWriter serialises line writes from handlers that share a sink.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) writeLine(line string) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err := io.WriteString(lw.w, line)
	return err
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	var min slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		min = opts.Level
	}
	return &consoleHandler{
		out: &lockedWriter{w: w},
		min: min,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(128)

	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')

	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	b.WriteString(ansiDim)
	b.WriteString(when.Format("15:04:05"))
	b.WriteString(ansiReset)
	b.WriteByte(' ')

	b.WriteString(r.Message)
	b.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	return h.out.writeLine(b.String())
}

// WithAttrs renders the bound attributes up front; handlers derived from
// the same root share the writer and its lock.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.preset)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	next := *h
	next.preset = b.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + ":"
	return &next
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + "ERROR" + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + "WARN " + ansiReset
	case level >= slog.LevelInfo:
		return ansiBlue + "INFO " + ansiReset
	default:
		return ansiMagenta + "DEBUG" + ansiReset
	}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + ":"
		}
		for _, member := range a.Value.Group() {
			writeAttr(b, p, member)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(ansiDim)
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(ansiReset)
	b.WriteString(attrValue(a.Value))
}

func attrValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
