package repl

import (
	"io"
	"slices"
	"testing"

	"github.com/ardnew/xtpl/globals"
	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

func testSession(t *testing.T) *Session {
	t.Helper()

	env, err := globals.New(
		globals.WithLogger(log.Make(io.Discard)),
		globals.WithValue("site", map[string]any{"name": "Docs", "url": "/"}),
	)
	if err != nil {
		t.Fatal(err)
	}

	return &Session{
		Data: map[string]any{
			"user": map[string]any{
				"name":    "Ada",
				"address": map[string]any{"city": "London", "zip": "N1"},
			},
			"items": []any{1, 2},
		},
		Globals: env,
		Logger:  log.Make(io.Discard),
	}
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "{foo", 4, "foo", 1, 4},
		{"dot separated", "{bar.baz", 8, "baz", 5, 8},
		{"after plus", "{a + fo", 7, "fo", 5, 7},
		{"after minus", "{a-fo", 5, "fo", 3, 5},
		{"after pipe", "{a|fo", 5, "fo", 3, 5},
		{"after comma", "{a|f,fo", 7, "fo", 5, 7},
		{"raw", "{!fo", 4, "fo", 2, 4},
		{"global", "{#us", 4, "#us", 1, 4},
		{"global member", "{#site.na", 9, "na", 7, 9},
		{"empty at boundary", "{a + ", 5, "", 5, 5},
		{"mid word", "{foobar}", 4, "foobar", 1, 7},
		{"underscore", "{a|format_da", 12, "format_da", 3, 12},
		{"empty after dot", "{user.", 6, "", 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top level", "{fo", 1, ""},
		{"simple chain", "{bar.baz.", 9, "bar.baz"},
		{"after operator", "{foo + bar.baz.", 15, "bar.baz"},
		{"after paren", "{(bar.baz.", 10, "bar.baz"},
		{"no chain", "{a + ", 5, ""},
		{"global chain", "{#site.", 7, "#site"},
		{"after pipe", "{a|#path.", 9, "#path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestPlaceholderStart(t *testing.T) {
	tests := []struct {
		input  string
		cursor int
		want   int
		ok     bool
	}{
		{"plain", 5, 0, false},
		{"a {b", 4, 3, true},
		{"a {b} c", 7, 0, false},
		{"{a} {b", 6, 5, true},
	}

	for _, tt := range tests {
		got, ok := placeholderStart(tt.input, tt.cursor)
		if got != tt.want || ok != tt.ok {
			t.Errorf("placeholderStart(%q, %d) = (%d, %v), want (%d, %v)",
				tt.input, tt.cursor, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSession_Candidates(t *testing.T) {
	s := testSession(t)

	tests := []struct {
		name    string
		word    string
		parent  string
		pipe    bool
		want    []string
		exclude []string
	}{
		{name: "data keys", want: []string{"items", "user"}},
		{name: "nested", parent: "user", want: []string{"address", "name"}},
		{name: "deep", parent: "user.address", want: []string{"city", "zip"}},
		{name: "missing", parent: "nope"},
		{name: "globals", word: "#s", want: []string{"#site", "#platform", "#path"}},
		{name: "global member", parent: "#site", want: []string{"name", "url"}},
		{name: "global struct", parent: "#platform", want: []string{"Arch", "OS"}},
		{
			name:    "functions",
			pipe:    true,
			want:    []string{"default", "range", "#cwd", "#env"},
			exclude: []string{"#site", "#hostname"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.candidates(tt.word, tt.parent, tt.pipe)

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("missing candidate %q in %v", w, got)
				}
			}

			for _, x := range tt.exclude {
				if slices.Contains(got, x) {
					t.Errorf("unexpected candidate %q", x)
				}
			}

			if tt.want == nil && got != nil {
				t.Errorf("expected no candidates, got %v", got)
			}
		})
	}
}

func TestSession_Render(t *testing.T) {
	s := testSession(t)
	s.Cache = tmpl.NewCache(tmpl.WithLogger(s.Logger))

	got, err := s.Render("{user.name} @ {#site.name}")
	if err != nil {
		t.Fatal(err)
	}

	if got != "Ada @ Docs" {
		t.Errorf("got %q", got)
	}

	if _, err := s.Render("{(1}"); err == nil {
		t.Error("expected compile error")
	}

	if _, ok := s.Cache.Lookup(purpose, "{user.name} @ {#site.name}"); !ok {
		t.Error("expected template cached under the repl purpose")
	}
}
