package repl

import (
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// builtinParams names the parameters of the built-in pipe functions. The
// first parameter is always the piped value.
var builtinParams = map[string][]string{
	"default":      {"value", "fallback"},
	"empty":        {"value", "ifBlank", "otherwise"},
	"case":         {"value", "...match, result", "fallback"},
	"format_money": {"value"},
	"format_date":  {"value", "layout"},
	"fixed":        {"value", "digits"},
	"repeat":       {"count", "text"},
	"range":        {"list", "body"},
	"filter_html":  {"value"},
	"left":         {"value", "width", "suffix"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// pipeCall describes the pipe stage the cursor is in.
type pipeCall struct {
	name     string // function name, with '#' for globals
	argIndex int    // parameter index; 0 is the piped value
	inCall   bool   // true once the cursor is past the name
}

// detectPipeCall finds the innermost pipe stage of the placeholder around
// cursor. The stage counts as a call once a ',' follows its name.
func detectPipeCall(input string, cursor int) pipeCall {
	cursor = min(cursor, len(input))

	start, ok := placeholderStart(input, cursor)
	if !ok {
		return pipeCall{}
	}

	text := input[start:cursor]

	var (
		pipe  = -1
		depth int
		quote byte
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|' && depth == 0:
			pipe = i
		}
	}

	if pipe < 0 {
		return pipeCall{}
	}

	stage := text[pipe+1:]

	name, rest, found := strings.Cut(stage, ",")
	if !found {
		return pipeCall{}
	}

	call := pipeCall{
		name:     strings.TrimSpace(name),
		argIndex: 1,
		inCall:   true,
	}

	depth, quote = 0, 0

	for i := 0; i < len(rest); i++ {
		switch c := rest[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			call.argIndex++
		}
	}

	return call
}

// signature returns the parameter names of a pipe function, built-in or
// global. Globals are described by their Go parameter types.
func (s *Session) signature(name string) ([]string, bool) {
	if ref, ok := strings.CutPrefix(name, "#"); ok {
		path := strings.Split(ref, ".")

		return funcParams(s.lookupGlobal(path))
	}

	if params, ok := builtinParams[name]; ok {
		return params, true
	}

	if _, ok := s.registry().Lookup(name); ok {
		return []string{"value", "...args"}, true
	}

	return nil, false
}

func funcParams(fn any) ([]string, bool) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return nil, false
	}

	params := make([]string, t.NumIn())

	for i := range params {
		in := t.In(i)

		if t.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + typeName(in.Elem())
		} else {
			params[i] = typeName(in)
		}
	}

	return params, true
}

// typeName converts a reflect.Type to a short parameter name.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "map"
	case reflect.Pointer:
		return typeName(t.Elem())
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders name(params) with the parameter at index
// current highlighted. A variadic parameter stays highlighted for every
// index at or past its own.
func renderSignatureHint(name string, params []string, current int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		if current == i || (variadic && current >= i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
