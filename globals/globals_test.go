package globals

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

func quiet(opts ...Option) (*Env, error) {
	return New(append([]Option{WithLogger(log.Make(io.Discard))}, opts...)...)
}

func TestNew_Builtins(t *testing.T) {
	env, err := quiet(WithProcessEnv([]string{"XTPL_NAME=demo"}))
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"target", "platform", "hostname", "user", "shell", "cwd", "file", "path", "mung", "env"} {
		if _, ok := env.Lookup(key); !ok {
			t.Errorf("missing built-in %q", key)
		}
	}

	v, _ := env.Lookup("env")

	fn, ok := v.(func(string) string)
	if !ok {
		t.Fatalf("env: unexpected type %T", v)
	}

	if got := fn("XTPL_NAME"); got != "demo" {
		t.Errorf("env(XTPL_NAME): got %q", got)
	}

	if got := fn("XTPL_UNSET"); got != "" {
		t.Errorf("env(XTPL_UNSET): got %q", got)
	}
}

func TestNew_Definitions(t *testing.T) {
	env, err := quiet(
		WithProcessEnv([]string{"HOME=/home/ada"}),
		WithValue("base", 40),
		WithDefinitions(map[string]string{
			"answer": "base + 2",
			"config": `path.cat(env("HOME"), ".config")`,
			"banner": `upper(name) + "!"`,
			"name":   `"xtpl"`,
		}),
	)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"answer", 42},
		{"config", filepath.Join("/home/ada", ".config")},
		{"name", "xtpl"},
		{"banner", "XTPL!"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := env.Lookup(tt.key)
			if !ok || got != tt.want {
				t.Errorf("got %v (%v), want %v", got, ok, tt.want)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		defs map[string]string
		want error
	}{
		{"syntax", map[string]string{"x": "1 +"}, ErrExprCompile},
		{"unknown", map[string]string{"x": "nope + 1"}, ErrExprCompile},
		{"cycle", map[string]string{"a": "b", "b": "a"}, ErrExprCompile},
		{"runtime", map[string]string{"x": "list[5]"}, ErrExprEvaluate},
		{"empty name", map[string]string{"": "1"}, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quiet(WithValue("list", []int{1}), WithDefinitions(tt.defs))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnv_Keys(t *testing.T) {
	env, err := quiet(WithValue("zz", 1))
	if err != nil {
		t.Fatal(err)
	}

	keys := env.Keys()
	if !slices.IsSorted(keys) || !slices.Contains(keys, "zz") {
		t.Errorf("unexpected keys: %v", keys)
	}

	m := env.Map()
	delete(m, "zz")

	if _, ok := env.Lookup("zz"); !ok {
		t.Error("Map must return a copy")
	}

	var nilEnv *Env
	if _, ok := nilEnv.Lookup("x"); ok || nilEnv.Keys() != nil {
		t.Error("nil Env must be empty")
	}
}

func TestEnv_Scope(t *testing.T) {
	dir := t.TempDir()

	env, err := quiet(WithValue("dir", dir), WithValue("version", "1.2"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		text string
		want string
	}{
		{"v{#version}", "v1.2"},
		{"{#platform.os}", runtime.GOOS},
		{"{#dir|#file.isDir}", "true"},
		{"{#dir|#path.base}", filepath.Base(dir)},
		{"{'/a'|#path.cat,'b','c'}", filepath.Join("/a", "b", "c")},
		{"{'/b'|#mung.prefix,'/a'}", "/a" + string(os.PathListSeparator) + "/b"},
		{"{#undefined}", ""},
	}

	cache := tmpl.NewCache(tmpl.WithLogger(log.Make(io.Discard)))

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tp, _ := cache.Compile("test", tt.text, tt.text)

			got := tp.Render(&tmpl.Context{Scope: env, Cache: cache})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTarget(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Target
	}{
		{"linux", "amd64", Target{"linux", "x86_64"}},
		{"linux", "arm64", Target{"linux", "aarch64"}},
		{"darwin", "arm64", Target{"darwin", "arm64"}},
		{"linux", "386", Target{"linux", "i386"}},
		{"linux", "mipsle", Target{"linux", "mipsel"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			t.Setenv("GOHOSTOS", tt.goos)
			t.Setenv("GOHOSTARCH", tt.goarch)

			if got := getTarget(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
