package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns an iterator over the names of all defined log levels, from
// most to least verbose.
func Levels() iter.Seq[string] { return names(levels) }

// ParseLevel parses a level name, case-insensitively. Besides the names
// of [Levels], anything [slog.Level.UnmarshalText] accepts is recognised,
// such as "warn+2". Unrecognised input yields [DefaultLevel].
func ParseLevel(s string) Level {
	if l, ok := lookup(levels, s); ok {
		return l
	}

	var l slog.Level
	if l.UnmarshalText([]byte(strings.TrimSpace(s))) != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatJSON

var formats = []Format{FormatJSON, FormatText}

// Formats returns an iterator over the names of all defined log formats.
func Formats() iter.Seq[string] { return names(formats) }

// ParseFormat parses a format name ("json" or "text"), case-insensitively.
// Unrecognised input yields [DefaultFormat].
func ParseFormat(s string) Format {
	if f, ok := lookup(formats, s); ok {
		return f
	}

	return DefaultFormat
}

func names[T fmt.Stringer](all []T) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range all {
			if !yield(v.String()) {
				return
			}
		}
	}
}

func lookup[T fmt.Stringer](all []T, name string) (T, bool) {
	name = strings.TrimSpace(name)

	for _, v := range all {
		if strings.EqualFold(v.String(), name) {
			return v, true
		}
	}

	var zero T

	return zero, false
}

// FormatTime defines a function that formats a time.Time value as a string.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the default used when no valid time layout is provided.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information
// in log output.
const DefaultCaller = false

// DefaultPretty is the default setting for pretty printing log output.
const DefaultPretty = true

// config holds the configuration options for a Logger.
type config struct {
	mutex      *sync.RWMutex
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option applies a configuration option to config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// makeConfig creates a new config with defaults applied, overridden by any
// provided options.
func makeConfig(w io.Writer, opts ...Option) config {
	var c config

	c.mutex = &sync.RWMutex{}

	return apply(apply(c, WithDefaults(w)), opts...)
}

// clone creates a copy of the config with a separate mutex and applies any
// provided options.
func (c config) clone(opts ...Option) config {
	c.mutex = &sync.RWMutex{}

	return apply(c, opts...)
}

// handler builds the slog.Handler described by the config, with opts
// applied on top.
func (c config) handler(opts ...Option) slog.Handler {
	cfg := apply(c, opts...)

	hopts := &slog.HandlerOptions{
		AddSource:   cfg.caller,
		Level:       slog.Level(cfg.level),
		ReplaceAttr: cfg.replaceAttr,
	}

	switch {
	case cfg.pretty && cfg.format == FormatJSON:
		return newPrettyJSONHandler(cfg.output, hopts, cfg.formatTime)
	case cfg.pretty && cfg.format == FormatText:
		return newPrettyTextHandler(cfg.output, hopts, cfg.formatTime)
	case cfg.format == FormatJSON:
		return slog.NewJSONHandler(cfg.output, hopts)
	case cfg.format == FormatText:
		return slog.NewTextHandler(cfg.output, hopts)
	default:
		return slog.DiscardHandler
	}
}

// replaceAttr formats timestamps with the configured layout and prints
// levels by name, so that trace records read "TRACE" rather than "DEBUG-4".
func (c config) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		if t, ok := a.Value.Any().(time.Time); ok {
			formatted := c.formatTime(t)
			if formatted == "" {
				return slog.Attr{}
			}

			a.Value = slog.StringValue(formatted)
		}

	case slog.LevelKey:
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
		}
	}

	return a
}

// WithDefaults returns a functional option that resets every setting to its
// default and directs output to w ([io.Discard] if w is nil).
func WithDefaults(w io.Writer) Option {
	return update(func(c *config) {
		c.output = orDiscard(w)
		c.formatTime = makeFormatTimeFunc(DefaultTimeLayout)
		c.level = DefaultLevel
		c.format = DefaultFormat
		c.caller = DefaultCaller
		c.pretty = DefaultPretty
	})
}

// WithOutput returns a functional option that sets the output [io.Writer].
// A nil writer discards all output.
func WithOutput(w io.Writer) Option {
	return update(func(c *config) { c.output = orDiscard(w) })
}

// WithLevel returns a functional option that sets the minimum log level.
func WithLevel(level Level) Option {
	return update(func(c *config) { c.level = level })
}

// WithFormat returns a functional option that sets the output format.
func WithFormat(format Format) Option {
	return update(func(c *config) { c.format = format })
}

// WithTimeLayout returns a functional option that sets the timestamp layout.
//
// Named layouts from the [time] package are matched case-insensitively
// ("RFC3339", "kitchen", "ms"); anything else is passed verbatim to
// [time.Time.Format]. A blank layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	format := makeFormatTimeFunc(layout)

	return update(func(c *config) { c.formatTime = format })
}

// WithCaller returns a functional option that controls whether the source
// location of the call is recorded.
func WithCaller(enable bool) Option {
	return update(func(c *config) { c.caller = enable })
}

// WithPretty returns a functional option that selects the colourised
// handlers.
func WithPretty(enable bool) Option {
	return update(func(c *config) { c.pretty = enable })
}

// update wraps a config mutation in the config's write lock.
func update(fn func(*config)) Option {
	return func(c config) config {
		if c.mutex == nil {
			c.mutex = &sync.RWMutex{}
		} else {
			c.mutex.Lock()
			defer c.mutex.Unlock()
		}

		fn(&c)

		return c
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

// timeLayout maps layout names, lowercased with everything but letters and
// digits removed, to [time] layouts.
var timeLayout = map[string]string{
	"none": "",

	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
}

func layoutKey(layout string) string {
	return strings.Map(
		func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}

			return -1
		},
		layout,
	)
}

// makeFormatTimeFunc resolves layout by name, or uses it verbatim as a
// [time.Time.Format] layout. A layout without letters or digits, or one
// named "none", disables timestamps.
func makeFormatTimeFunc(layout string) FormatTime {
	key := layoutKey(layout)

	if std, ok := timeLayout[key]; ok {
		layout = std
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
