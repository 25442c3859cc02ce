package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Level   string            `default:"info"`
	Pretty  bool              `default:"true"`
	Count   int               `default:"3"`
	Delay   time.Duration     `default:"250ms"`
	Data    []string          `name:"data"`
	Define  map[string]string `name:"define"`
	Hidden  string            `default:"x"    hidden:""`
	Profile string            `default:"cpu"  name:"pprof-mode"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInit_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, path string)
		force   bool
		wantErr error
	}{
		{name: "create new config"},
		{
			name:  "overwrite existing with force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "fail without force",
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing"), 0o600); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			ctx := initContext(t, confPath, "--data=a.yaml", "--define=x=1")

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			b, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(b, &got); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, b)
			}

			want := map[string]any{
				"level":  "info",
				"pretty": true,
				"count":  uint64(3),
				"delay":  "250ms",
				"data":   []any{"a.yaml"},
				"define": map[string]any{"x": "1"},
			}

			for k, v := range want {
				if !equalYAML(got[k], v) {
					t.Errorf("%s: got %#v, want %#v", k, got[k], v)
				}
			}

			for _, k := range []string{"hidden", "pprof-mode", "help"} {
				if _, ok := got[k]; ok {
					t.Errorf("unexpected key %q", k)
				}
			}
		})
	}
}

func equalYAML(a, b any) bool {
	ya, errA := yaml.Marshal(a)
	yb, errB := yaml.Marshal(b)

	return errA == nil && errB == nil && string(ya) == string(yb)
}

func TestInit_InvalidPath(t *testing.T) {
	t.Parallel()

	ctx := initContext(t, "/nonexistent/directory/config.yaml")

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("expected ErrWriteConfig, got %v", err)
	}
}

func TestConfigValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"", nil},
		{"x", "x"},
		{[]string{}, nil},
		{map[string]string{}, nil},
		{true, true},
		{7, 7},
		{time.Second, "1s"},
	}

	for _, tt := range tests {
		if got := configValue(tt.in); !equalYAML(got, tt.want) {
			t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
