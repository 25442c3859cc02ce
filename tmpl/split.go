package tmpl

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
)

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// Segment is one piece of a template: either literal text or a placeholder
// expression.
type Segment struct {
	Node Node
	Text string
}

// Template is a compiled renderer. It is immutable and safe to render from
// many goroutines at once.
type Template struct {
	Purpose  string
	ID       string
	Source   string
	segments []Segment
}

// Segments returns the template's segments in order.
func (t *Template) Segments() []Segment {
	if t == nil {
		return nil
	}

	return t.segments
}

// Parse splits text into literal runs and placeholders and compiles each
// placeholder.
//
// A placeholder runs from '{' to the matching '}' found with the same
// quote-aware scan the tokenizer uses. A '{' with no matching '}' is kept as
// literal text along with the rest of the input. A placeholder whose trimmed
// interior starts with '!' is emitted raw, every other placeholder is
// escaped, and an empty placeholder emits nothing.
func Parse(text string) (*Template, error) {
	if text == "" {
		return nil, ErrEmptyTemplate
	}

	t := &Template{Source: text}

	for i := 0; i < len(text); {
		open := strings.IndexByte(text[i:], '{')
		if open < 0 {
			t.literal(text[i:])

			break
		}

		open += i

		end := scanClose(text, open, '}')
		if end < 0 {
			t.literal(text[i:])

			break
		}

		t.literal(text[i:open])

		expr := strings.TrimSpace(text[open+1 : end])

		n, err := parsePlaceholder(expr)
		if err != nil {
			return nil, WrapError(err).With(
				slog.String("expr", expr),
				slog.Int("offset", open),
			)
		}

		if n != nil {
			t.segments = append(t.segments, Segment{Node: n})
		}

		i = end + 1
	}

	return t, nil
}

func (t *Template) literal(s string) {
	if s == "" {
		return
	}

	// Merge adjacent runs left behind by empty placeholders.
	if n := len(t.segments); n > 0 && t.segments[n-1].Node == nil {
		t.segments[n-1].Text += s

		return
	}

	t.segments = append(t.segments, Segment{Text: s})
}

func parsePlaceholder(expr string) (Node, error) {
	raw := strings.HasPrefix(expr, "!")
	if raw {
		expr = expr[1:]
	}

	n, err := Build(Tokenize(expr))
	if err != nil || n == nil {
		return nil, err
	}

	if raw {
		return Raw{X: n}, nil
	}

	return Escaped{X: n}, nil
}

// Render produces the template output for ctx. A nil template renders
// nothing.
func (t *Template) Render(ctx *Context) string {
	if t == nil {
		return ""
	}

	buf, _ := bufPool.Get().(*bytes.Buffer)
	defer bufPool.Put(buf)

	buf.Reset()

	for _, seg := range t.segments {
		if seg.Node == nil {
			buf.WriteString(seg.Text)

			continue
		}

		buf.WriteString(Stringify(seg.Node.Eval(ctx)))
	}

	return buf.String()
}

// Execute renders the template against data using the default registry and
// cache.
func (t *Template) Execute(data any) string {
	return t.Render(&Context{Data: data})
}
