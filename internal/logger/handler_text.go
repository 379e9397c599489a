package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// textHandler is a slog.Handler that renders records as
// human-readable lines of the form:
//
//	[2025-01-02T15:04:05.000Z] [INFO ] message key=value key2=value2
//
// Colors are applied to the level tag when the destination is a
// terminal. Attribute values containing spaces are quoted so the
// output stays machine-greppable.
type textHandler struct {
	opts     slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	groups   []string
	useColor bool
}

// newTextHandler creates a textHandler writing to w. When useColor is
// true, level tags are wrapped in ANSI color escapes.
func newTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *textHandler {
	h := &textHandler{
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
	if opts != nil {
		h.opts = *opts
	}
	if h.opts.Level == nil {
		h.opts.Level = slog.LevelInfo
	}
	return h
}

// Enabled implements slog.Handler.
func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler. The record is formatted into a local
// buffer first; the handler mutex is held only for the final write.
func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = append(buf, '[')
	buf = r.Time.UTC().AppendFormat(buf, "2006-01-02T15:04:05.000Z")
	buf = append(buf, "] "...)

	buf = append(buf, h.formatLevel(r.Level)...)
	buf = append(buf, ' ')

	buf = append(buf, r.Message...)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		buf = h.appendAttr(buf, attr)
		return true
	})

	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// formatLevel returns the bracketed, padded level tag, colored when the
// handler writes to a terminal.
func (h *textHandler) formatLevel(level slog.Level) string {
	var tag, color string
	switch {
	case level >= slog.LevelError:
		tag, color = "ERROR", colorRed
	case level >= slog.LevelWarn:
		tag, color = "WARN ", colorYellow
	case level >= slog.LevelInfo:
		tag, color = "INFO ", colorGreen
	default:
		tag, color = "DEBUG", colorGray
	}
	if h.useColor {
		return "[" + color + tag + colorReset + "]"
	}
	return "[" + tag + "]"
}

// appendAttr appends one " key=value" segment, resolving LogValuer
// attributes and expanding groups with a dotted prefix.
func (h *textHandler) appendAttr(buf []byte, attr slog.Attr) []byte {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return buf
	}

	if attr.Value.Kind() == slog.KindGroup {
		prefix := attr.Key
		for _, sub := range attr.Value.Group() {
			if prefix != "" {
				sub.Key = prefix + "." + sub.Key
			}
			buf = h.appendAttr(buf, sub)
		}
		return buf
	}

	key := attr.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}

	buf = append(buf, ' ')
	if h.useColor {
		buf = append(buf, colorCyan...)
		buf = append(buf, key...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, key...)
	}
	buf = append(buf, '=')
	buf = append(buf, h.formatValue(attr.Value)...)
	return buf
}

// formatValue renders a slog.Value, quoting strings that contain
// whitespace or quotes so fields remain splittable on spaces.
func (h *textHandler) formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	default:
		s := fmt.Sprintf("%v", v.Any())
		if strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	}
}

// WithAttrs implements slog.Handler. The returned handler shares the
// write mutex so interleaved output stays line-atomic.
func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	nh.attrs = append(nh.attrs, attrs...)
	return &nh
}

// WithGroup implements slog.Handler.
func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = make([]string, 0, len(h.groups)+1)
	nh.groups = append(nh.groups, h.groups...)
	nh.groups = append(nh.groups, name)
	return &nh
}
