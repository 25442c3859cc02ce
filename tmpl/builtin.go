package tmpl

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultDateLayout is the format_date layout used when none is given.
const DefaultDateLayout = "yyyy-MM-dd hh:mm:ss"

var builtins map[string]Func

func init() {
	builtins = map[string]Func{
		"default":      fnDefault,
		"empty":        fnEmpty,
		"case":         fnCase,
		"format_money": fnFormatMoney,
		"format_date":  fnFormatDate,
		"fixed":        fnFixed,
		"repeat":       fnRepeat,
		"range":        fnRange,
		"filter_html":  fnFilterHTML,
		"left":         fnLeft,
		"noFunc":       missing("noFunc"),
	}
}

// fnDefault yields args[1] when the value is blank.
func fnDefault(_ *Context, args ...any) any {
	if isBlank(arg(args, 0)) {
		return arg(args, 1)
	}

	return args[0]
}

// fnEmpty yields args[1] when the value is blank and args[2] otherwise.
func fnEmpty(_ *Context, args ...any) any {
	if isBlank(arg(args, 0)) {
		return arg(args, 1)
	}

	return arg(args, 2)
}

// fnCase compares the value against each candidate of the (candidate,
// result) pairs that follow it and yields the result of the first match.
// The last argument is the fallback.
func fnCase(_ *Context, args ...any) any {
	if len(args) == 0 {
		return nil
	}

	val := args[0]

	for i := 1; i+1 < len(args); i += 2 {
		if looseEqual(val, args[i]) {
			return args[i+1]
		}
	}

	return args[len(args)-1]
}

var numberPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// fnFormatMoney parses the leading number of the value's text.
func fnFormatMoney(_ *Context, args ...any) any {
	s := strings.TrimSpace(Stringify(arg(args, 0)))

	m := numberPrefix.FindString(s)
	switch strings.TrimLeft(m, "+-") {
	case "":
		return math.NaN()
	case "Infinity":
		if strings.HasPrefix(m, "-") {
			return math.Inf(-1)
		}

		return math.Inf(1)
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}

	return f
}

var dateFields = []struct {
	pattern *regexp.Regexp
	value   func(time.Time) int
}{
	{regexp.MustCompile(`M+`), func(t time.Time) int { return int(t.Month()) }},
	{regexp.MustCompile(`d+`), func(t time.Time) int { return t.Day() }},
	{regexp.MustCompile(`h+`), func(t time.Time) int { return t.Hour() }},
	{regexp.MustCompile(`m+`), func(t time.Time) int { return t.Minute() }},
	{regexp.MustCompile(`s+`), func(t time.Time) int { return t.Second() }},
	{regexp.MustCompile(`q+`), func(t time.Time) int { return (int(t.Month()) + 2) / 3 }},
	{regexp.MustCompile(`S`), func(t time.Time) int { return t.Nanosecond() / int(time.Millisecond) }},
}

var yearField = regexp.MustCompile(`y+`)

// fnFormatDate formats a time with a pattern of y, M, d, h, m, s, q and S
// runs. A value that is not a time is read as milliseconds since the Unix
// epoch. Runs of one letter are unpadded and longer runs are padded to two
// digits. Only the first run of each letter is replaced.
func fnFormatDate(_ *Context, args ...any) any {
	t, ok := asTime(arg(args, 0))
	if !ok {
		return "Invalid Date"
	}

	layout := Stringify(arg(args, 1))
	if layout == "" {
		layout = DefaultDateLayout
	}

	layout = replaceFirst(yearField, layout, func(run string) string {
		year := strconv.Itoa(t.Year())

		start := 4 - len(run)
		if start < 0 {
			start = max(len(year)+start, 0)
		}

		return year[min(start, len(year)):]
	})

	for _, f := range dateFields {
		v := f.value(t)

		layout = replaceFirst(f.pattern, layout, func(run string) string {
			s := strconv.Itoa(v)
			if len(run) == 1 {
				return s
			}

			return ("00" + s)[len(s):]
		})
	}

	return layout
}

func replaceFirst(re *regexp.Regexp, s string, repl func(string) string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}

	return s[:loc[0]] + repl(s[loc[0]:loc[1]]) + s[loc[1]:]
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case *time.Time:
		if val != nil {
			return *val, true
		}

		return time.Time{}, false
	}

	f := toNumber(v)
	if s, ok := v.(string); ok {
		f = parseLeadingInt(s)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}

	return time.UnixMilli(int64(f)), true
}

var intPrefix = regexp.MustCompile(`^[+-]?\d+`)

func parseLeadingInt(s string) float64 {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}

	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return math.NaN()
	}

	return float64(n)
}

// fnFixed formats a number with a fixed count of decimals (default zero).
// Values that are not numbers pass through unchanged.
func fnFixed(_ *Context, args ...any) any {
	val := arg(args, 0)
	if !isNumeric(val) {
		return val
	}

	digits := 0
	if c := arg(args, 1); c != nil {
		if f := toNumber(c); !math.IsNaN(f) {
			digits = int(f)
		}
	}

	digits = min(max(digits, 0), 100)

	f := toNumber(val)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatNumber(f)
	}

	return strconv.FormatFloat(f, 'f', digits, 64)
}

// fnRepeat concatenates args[1] as many times as the value says.
func fnRepeat(_ *Context, args ...any) any {
	n := toNumber(arg(args, 0))
	if math.IsNaN(n) || n <= 0 {
		return ""
	}

	return strings.Repeat(Stringify(arg(args, 1)), int(math.Ceil(n)))
}

var rangeBraces = strings.NewReplacer("(", "{", ")", "}")

// fnRange renders a sub-template once per element of a list and
// concatenates the results. The sub-template writes placeholders with
// parentheses, so "(id)" reads as "{id}". It is compiled through the cache
// under the "range" purpose, keyed by its text.
func fnRange(ctx *Context, args ...any) any {
	body := Stringify(arg(args, 1))
	if body == "" {
		return ""
	}

	body = Normalize(rangeBraces.Replace(body))

	t, _ := ctx.cache().Compile("range", body, body)
	if t == nil {
		return ""
	}

	var b strings.Builder

	for _, item := range Elements(arg(args, 0)) {
		b.WriteString(t.Render(ctx.With(item)))
	}

	return b.String()
}

// fnFilterHTML applies the escaping policy to the value.
func fnFilterHTML(_ *Context, args ...any) any {
	return escapeValue(arg(args, 0))
}

// fnLeft truncates text to a display width, counting runes above U+00FF as
// two columns. When truncation happens, the optional args[2] suffix is
// appended and its length counts toward the width.
func fnLeft(_ *Context, args ...any) any {
	str := Stringify(arg(args, 0))

	limit := toNumber(arg(args, 1))
	if math.IsNaN(limit) {
		return ""
	}

	var dot string
	if d := arg(args, 2); d != nil {
		dot = Stringify(d)
	}

	dotLen := utf8.RuneCountInString(dot)

	var (
		b     strings.Builder
		width int
	)

	for _, r := range str {
		if r > 0xff {
			width += 2
		} else {
			width++
		}

		if float64(width+dotLen) > limit {
			b.WriteString(dot)

			break
		}

		b.WriteRune(r)
	}

	return b.String()
}
