package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

const testConfig = `
log:
  level: debug
  caller: true
log_format: text
define:
  answer: 6 * 7
  name: "'xtpl'"
data: [a.yaml, b.yaml]
count: 3
`

func TestLoadYAML_Resolve(t *testing.T) {
	res, err := loadYAML(strings.NewReader(testConfig))
	if err != nil {
		t.Fatalf("loadYAML() error = %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-caller", true},
		{"log-format", "text"},
		{"define", "answer=6 * 7;name='xtpl'"},
		{"define-answer", "6 * 7"},
		{"data", "a.yaml,b.yaml"},
		{"count", "3"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := &kong.Flag{Value: &kong.Value{Name: tt.flag}}

			got, err := res.Resolve(nil, nil, flag)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	res, err := loadYAML(strings.NewReader("log: [unterminated"))
	if err != nil {
		t.Fatalf("loadYAML() error = %v", err)
	}

	if cfg, ok := res.(config); !ok || len(cfg) != 0 {
		t.Errorf("loadYAML(invalid) = %#v, want empty config", res)
	}
}

func TestLoadYAML_Parse(t *testing.T) {
	var cli struct {
		Log struct {
			Level  string `default:"info"`
			Format string `default:"json"`
			Caller bool
		} `embed:"" prefix:"log-"`

		Define map[string]string
		Data   []string
		Count  int
	}

	res, err := loadYAML(strings.NewReader(testConfig))
	if err != nil {
		t.Fatalf("loadYAML() error = %v", err)
	}

	parser, err := kong.New(&cli, kong.Resolvers(res), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	_, err = parser.Parse([]string{"--log-format=json"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cli.Log.Level != "debug" || !cli.Log.Caller {
		t.Errorf("log = %+v, want level debug with caller", cli.Log)
	}

	if cli.Log.Format != "json" {
		t.Errorf("log format = %q, command line should win", cli.Log.Format)
	}

	wantDefine := map[string]string{"answer": "6 * 7", "name": "'xtpl'"}
	if !reflect.DeepEqual(cli.Define, wantDefine) {
		t.Errorf("define = %v, want %v", cli.Define, wantDefine)
	}

	if !reflect.DeepEqual(cli.Data, []string{"a.yaml", "b.yaml"}) {
		t.Errorf("data = %v", cli.Data)
	}

	if cli.Count != 3 {
		t.Errorf("count = %d, want 3", cli.Count)
	}
}
