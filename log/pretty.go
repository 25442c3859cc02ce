package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles used by the pretty handlers. Colours follow the terminal's
// 16-colour palette so that they track the user's theme.
var (
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	nullStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func levelStyle(level slog.Level) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)

	switch {
	case level >= slog.LevelError:
		return s.Foreground(lipgloss.Color("1"))
	case level >= slog.LevelWarn:
		return s.Foreground(lipgloss.Color("3"))
	case level >= slog.LevelInfo:
		return s.Foreground(lipgloss.Color("2"))
	case level >= slog.LevelDebug:
		return s.Foreground(lipgloss.Color("4"))
	default:
		return s.Foreground(lipgloss.Color("5"))
	}
}

// prettyBase holds what both pretty handlers share: options, a writer
// guarded by a shared mutex, and attributes/groups added with WithAttrs and
// WithGroup.
type prettyBase struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	attrs      []slog.Attr
	groups     []string
}

func (h prettyBase) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

// prefixed qualifies a key with the handler's open groups.
func (h prettyBase) prefixed(key string) string {
	if len(h.groups) == 0 {
		return key
	}

	return strings.Join(h.groups, ".") + "." + key
}

// header returns the standard fields of a record in output order.
func (h prettyBase) header(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			attrs = append(attrs, slog.String(slog.TimeKey, ts))
		}
	}

	attrs = append(attrs, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			attrs = append(attrs,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	return append(attrs, slog.String(slog.MessageKey, r.Message))
}

// body returns the handler's and the record's attributes, keys qualified by
// open groups.
func (h prettyBase) body(r slog.Record) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefixed(a.Key)
		attrs = append(attrs, a)

		return true
	})

	return attrs
}

func (h prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	qualified := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(qualified, h.attrs)

	for _, a := range attrs {
		a.Key = h.prefixed(a.Key)
		qualified = append(qualified, a)
	}

	h.attrs = qualified

	return h
}

func (h prettyBase) withGroup(name string) prettyBase {
	if name != "" {
		h.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	}

	return h
}

// renderValue colours a value by kind. Groups render as {k=v ...}.
func renderValue(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())
	case slog.KindInt64:
		return numberStyle.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return numberStyle.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return numberStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")
	case slog.KindDuration:
		return durationStyle.Render(v.Duration().String())
	case slog.KindTime:
		return timeStyle.Render(v.Time().String())
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, keyStyle.Render(a.Key)+"="+renderValue(a.Value))
		}

		return "{" + strings.Join(parts, " ") + "}"
	}

	switch val := v.Any().(type) {
	case slog.Level:
		return levelStyle(val).Render(Level(val).String())
	case nil:
		return nullStyle.Render("null")
	default:
		return stringStyle.Render(fmt.Sprint(val))
	}
}

// prettyTextHandler writes one colourised key=value line per record.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{prettyBase{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	for _, a := range append(h.header(r), h.body(r)...) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(renderValue(a.Value))
	}

	return h.write(buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes each record as an indented, colourised object.
// Strings are unquoted; the output is meant for people, not parsers.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{prettyBase{
		opts:       *opts,
		formatTime: formatTime,
		mu:         &sync.Mutex{},
		w:          w,
	}}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{\n")

	for i, a := range append(h.header(r), h.body(r)...) {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(keyStyle.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(renderValue(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
