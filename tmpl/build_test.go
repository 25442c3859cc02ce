package tmpl

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestBuild_Tree(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Node
	}{
		{"empty", "", nil},
		{"lookup", "a.b", Lookup{Path: []string{"a", "b"}}},
		{"global", "#site.title", GlobalRef{Path: []string{"site", "title"}}},
		{"number", "42", Const{Value: 42.0}},
		{"hex number", "0x10", Const{Value: 16.0}},
		{"string", "'hi'", Const{Value: "hi"}},
		{
			"precedence",
			"n*3+1",
			Arith{
				Op:    '+',
				Left:  Arith{Op: '*', Left: Lookup{Path: []string{"n"}}, Right: Const{Value: 3.0}},
				Right: Const{Value: 1.0},
			},
		},
		{
			"parentheses",
			"(a+1)*2",
			Arith{
				Op:    '*',
				Left:  Arith{Op: '+', Left: Lookup{Path: []string{"a"}}, Right: Const{Value: 1.0}},
				Right: Const{Value: 2.0},
			},
		},
		{"unary minus", "-a", Arith{Op: '-', Right: Lookup{Path: []string{"a"}}}},
		{
			"pipe chain",
			"a|f,'@'|g,':)'",
			Pipe{
				Name: "g",
				Args: []Node{
					Pipe{Name: "f", Args: []Node{Lookup{Path: []string{"a"}}, Const{Value: "@"}}},
					Const{Value: ":)"},
				},
			},
		},
		{
			"tokens after the name extend the piped value",
			"a|f+1",
			Pipe{
				Name: "f",
				Args: []Node{Arith{Op: '+', Left: Lookup{Path: []string{"a"}}, Right: Const{Value: 1.0}}},
			},
		},
		{
			"arithmetic argument",
			"a|f,b*2",
			Pipe{
				Name: "f",
				Args: []Node{
					Lookup{Path: []string{"a"}},
					Arith{Op: '*', Left: Lookup{Path: []string{"b"}}, Right: Const{Value: 2.0}},
				},
			},
		},
		{
			"trailing comma",
			"a|f,1,",
			Pipe{Name: "f", Args: []Node{Lookup{Path: []string{"a"}}, Const{Value: 1.0}}},
		},
		{
			"external function",
			"a|#fmt.upper",
			Pipe{Name: "#fmt.upper", Args: []Node{Lookup{Path: []string{"a"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(Tokenize(tt.expr))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build(%q)\n got %#v\nwant %#v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"(a+b", ErrUnbalancedParen},
		{"a+b)", ErrUnbalancedParen},
		{"a+", ErrDanglingOperator},
		{"*", ErrDanglingOperator},
		{"a|", ErrDanglingOperator},
		{"3px", ErrInvalidNumber},
		{"1.2.3", ErrInvalidNumber},
		{"a'b'", ErrUnexpectedToken},
		{"a|f,,1", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Build(Tokenize(tt.expr))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestArith_Eval(t *testing.T) {
	data := map[string]any{
		"n":    3,
		"f":    1.5,
		"s":    "7",
		"word": "abc",
		"name": "Ada",
	}

	tests := []struct {
		expr string
		want any
	}{
		{"n*3+1", 10.0},
		{"n-1-1", 1.0},
		{"n/2", 1.5},
		{"f*2", 3.0},
		{"s*2", 14.0},
		{"s+1", "71"},
		{"'Hi '+name", "Hi Ada"},
		{"-n+10", 7.0},
		{"(n+1)*(n-1)", 8.0},
		{"1,2,n", 3},
		{"missing+1", "1"},
		{"missing*2", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			n, err := Build(Tokenize(tt.expr))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := n.Eval(&Context{Data: data}); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	t.Run("non-numeric", func(t *testing.T) {
		n, _ := Build(Tokenize("word*2"))

		got, ok := n.Eval(&Context{Data: data}).(float64)
		if !ok || !math.IsNaN(got) {
			t.Errorf("expected NaN, got %v", got)
		}
	})
}
