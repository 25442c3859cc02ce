package tmpl

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/xtpl/log"
)

func TestRegistry_PipeChainOrder(t *testing.T) {
	type call struct {
		name string
		args []any
	}

	var calls []call

	record := func(name string) Func {
		return func(_ *Context, args ...any) any {
			calls = append(calls, call{name: name, args: args})

			return name + "(" + Stringify(args) + ")"
		}
	}

	reg := NewRegistry()
	reg.Register("f", record("f"))
	reg.Register("g", record("g"))

	tmpl, err := Parse("{a|f,'@'|g,':)'}")
	if err != nil {
		t.Fatal(err)
	}

	ctx := quietContext(map[string]any{"a": "A"})
	ctx.Registry = reg

	if got, want := tmpl.Render(ctx), "g(f(A,@),:))"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if len(calls) != 2 || calls[0].name != "f" || calls[1].name != "g" {
		t.Fatalf("expected f then g, got %+v", calls)
	}

	if !slices.Equal(calls[0].args, []any{"A", "@"}) {
		t.Errorf("f args: got %v", calls[0].args)
	}

	if !slices.Equal(calls[1].args, []any{"f(A,@)", ":)"}) {
		t.Errorf("g args: got %v", calls[1].args)
	}
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Register("v", func(*Context, ...any) any { return 1 })
	reg.Register("v", func(*Context, ...any) any { return 2 })
	reg.Register("", func(*Context, ...any) any { return 3 })
	reg.Register("nil", nil)

	fn, ok := reg.Lookup("v")
	if !ok || fn(nil) != 2 {
		t.Errorf("expected last registration to win")
	}

	if _, ok := reg.Lookup(""); ok {
		t.Error("expected empty name to be ignored")
	}

	if _, ok := reg.Lookup("nil"); ok {
		t.Error("expected nil function to be ignored")
	}
}

func TestRegistry_ResolvedAtRender(t *testing.T) {
	reg := NewRegistry()

	tmpl, err := Parse("{x|late}")
	if err != nil {
		t.Fatal(err)
	}

	ctx := quietContext(map[string]any{"x": "v"})
	ctx.Registry = reg

	if got := tmpl.Render(ctx); got != NoHandler {
		t.Fatalf("got %q, want %q", got, NoHandler)
	}

	reg.Register("late", func(_ *Context, args ...any) any {
		return strings.ToUpper(Stringify(args[0]))
	})

	if got := tmpl.Render(ctx); got != "V" {
		t.Errorf("got %q, want %q", got, "V")
	}
}

func TestRegistry_Names(t *testing.T) {
	names := slices.Collect(NewRegistry().Names())

	for _, want := range []string{"case", "default", "fixed", "left", "range", "repeat"} {
		if !slices.Contains(names, want) {
			t.Errorf("expected %q in %v", want, names)
		}
	}

	if !slices.IsSorted(names) {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestMissingFunction_LogsWarning(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithPretty(false))

	tmpl, err := Parse("{x|nope}")
	if err != nil {
		t.Fatal(err)
	}

	got := tmpl.Render(&Context{Data: map[string]any{"x": 1}, Logger: &logger})
	if got != NoHandler {
		t.Errorf("got %q, want %q", got, NoHandler)
	}

	if out := buf.String(); !strings.Contains(out, `"func":"nope"`) ||
		!strings.Contains(out, "WARN") {
		t.Errorf("expected warning naming the function, got: %s", out)
	}
}

func TestPipe_RecoversPanic(t *testing.T) {
	reg := NewRegistry()
	reg.Register("boom", func(*Context, ...any) any { panic("kaboom") })

	tmpl, err := Parse("[{x|boom}]")
	if err != nil {
		t.Fatal(err)
	}

	ctx := quietContext(nil)
	ctx.Registry = reg

	if got := tmpl.Render(ctx); got != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}

func TestExternal(t *testing.T) {
	scope := Globals{
		"site": map[string]any{"title": "<em>Docs</em>"},
		"upper": func(s string) string {
			return strings.ToUpper(s)
		},
		"join": func(sep string, parts ...string) string {
			return strings.Join(parts, sep)
		},
		"half": func(n float64) float64 { return n / 2 },
		"fail": func(string) (string, error) { return "", errors.New("nope") },
		"ctx": Func(func(ctx *Context, args ...any) any {
			return fmt.Sprint(ctx.Data, args)
		}),
		"answer": 42,
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"value", "{#site.title}", "Docs"},
		{"raw value", "{!#site.title}", "<em>Docs</em>"},
		{"missing value", "[{#nope}]", "[]"},
		{"missing nested", "[{#site.nope}]", "[]"},
		{"string func", "{name|#upper}", "ADA"},
		{"variadic func", "{name|#join,'b','c'}", "bAdac"},
		{"numeric conversion", "{n|#half}", "5"},
		{"error result", "[{name|#fail}]", "[]"},
		{"context func", "{name|#ctx,1}", "map[n:10 name:Ada] [Ada 1]"},
		{"not callable", "[{name|#answer}]", "[]"},
		{"missing func", "[{name|#nope}]", "[]"},
		{"arithmetic with external", "{#answer+1}", "43"},
	}

	data := map[string]any{"name": "Ada", "n": 10}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Parse(tt.text)
			if err != nil {
				t.Fatal(err)
			}

			ctx := quietContext(data)
			ctx.Scope = scope

			if got := tmpl.Render(ctx); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("no scope", func(t *testing.T) {
		tmpl, err := Parse("[{#site.title}]")
		if err != nil {
			t.Fatal(err)
		}

		if got := tmpl.Render(quietContext(nil)); got != "[]" {
			t.Errorf("got %q, want %q", got, "[]")
		}
	})
}

func TestAsFunc(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		args []any
		want any
		ok   bool
	}{
		{"nil", nil, nil, nil, false},
		{"not a func", "x", nil, nil, false},
		{"any variadic", func(args ...any) any { return len(args) }, []any{1, 2}, 2, true},
		{"any unary", func(v any) any { return v }, []any{"x"}, "x", true},
		{"int params", func(a, b int) int { return a + b }, []any{"2", 3.0}, 5, true},
		{"missing args are zero", func(a, b int) int { return a + b }, []any{4}, 4, true},
		{"no results", func(int) {}, []any{1}, nil, true},
		{"only error", func() error { return nil }, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := AsFunc(tt.fn)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}

			if !ok {
				return
			}

			if got := fn(quietContext(nil), tt.args...); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
