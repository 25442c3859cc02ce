package repl

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/xtpl/globals"
	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// purpose is the cache purpose of templates entered at the prompt.
const purpose = "repl"

// Session is what the REPL renders templates against.
type Session struct {
	Data     any
	Globals  *globals.Env
	Registry *tmpl.Registry
	Cache    *tmpl.Cache
	Logger   log.Logger
}

func (s *Session) registry() *tmpl.Registry {
	if s.Registry != nil {
		return s.Registry
	}

	return tmpl.DefaultRegistry()
}

func (s *Session) cache() *tmpl.Cache {
	if s.Cache == nil {
		s.Cache = tmpl.NewCache(tmpl.WithLogger(s.Logger), tmpl.WithRegistry(s.registry()))
	}

	return s.Cache
}

func (s *Session) globalKeys() []string { return s.Globals.Keys() }

func (s *Session) global(name string) any {
	v, _ := s.Globals.Lookup(name)

	return v
}

func (s *Session) lookupGlobal(path []string) any {
	if len(path) == 0 {
		return nil
	}

	v, _ := tmpl.LookupPath(s.global(path[0]), path[1:]...)

	return v
}

// Render compiles text, cached under its own text, and renders it against
// the session data.
func (s *Session) Render(text string) (string, error) {
	t, _, err := s.cache().CompileErr(purpose, text, text)
	if err != nil {
		return "", err
	}

	return t.Render(&tmpl.Context{
		Data:     s.Data,
		Scope:    s.Globals,
		Registry: s.registry(),
		Cache:    s.cache(),
		Logger:   &s.Logger,
	}), nil
}

// DataYAML returns the session data encoded as YAML.
func (s *Session) DataYAML() (string, error) {
	if s.Data == nil {
		return "", nil
	}

	b, err := yaml.Marshal(s.Data)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// preview summarizes a global value on one line.
func preview(v any) string {
	if v == nil {
		return "<nil>"
	}

	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Func:
		params, _ := funcParams(v)

		return renderSignatureHint("func", params, -1)

	case reflect.Map:
		return fmt.Sprintf("{ %d items }", rv.Len())
	}

	s := tmpl.Stringify(v)
	if len(s) > 40 {
		return s[:37] + "..."
	}

	return s
}
