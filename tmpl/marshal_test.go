package tmpl

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTemplate_ToMap(t *testing.T) {
	tmpl, err := Parse("Hi {!name|upper,1}")
	if err != nil {
		t.Fatal(err)
	}

	b, err := json.Marshal(tmpl)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"segments":[{"text":"Hi "},{"raw":{"args":[{"lookup":"name"},{"const":1}],"pipe":"upper"}}]}`
	if got := string(b); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestNodeMap_Arith(t *testing.T) {
	n, err := Build(Tokenize("-a*#b"))
	if err != nil {
		t.Fatal(err)
	}

	b, err := json.Marshal(NodeMap(n))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{`"op":"*"`, `"op":"-"`, `"global":"b"`, `"lookup":"a"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("expected %s in %s", want, b)
		}
	}
}

func TestTokenMaps(t *testing.T) {
	got := TokenMaps(Tokenize("a|f"))

	if len(got) != 3 || got[1]["kind"] != "operator" || got[2]["text"] != "f" {
		t.Errorf("unexpected token maps: %v", got)
	}
}
