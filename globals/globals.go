package globals

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/expr-lang/expr"

	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// Predefined errors (sentinel values).
var (
	ErrExprCompile  = tmpl.NewError("expression compilation failed")
	ErrExprEvaluate = tmpl.NewError("expression evaluation failed")
	ErrInvalidName  = tmpl.NewError("invalid definition name")
)

// Env is the set of values that '#' references resolve against. It holds
// the host built-ins, the process environment through env(name), and the
// results of user definitions. An Env is read-only once built and
// implements [tmpl.Scope].
type Env struct {
	values map[string]any
}

// Option configures [New].
type Option func(*options)

type options struct {
	values  map[string]any
	defs    map[string]string
	logger  *log.Logger
	environ []string
}

// WithProcessEnv replaces the process environment with "KEY=VALUE" entries.
func WithProcessEnv(environ []string) Option {
	return func(o *options) { o.environ = environ }
}

// WithValue binds name to v, shadowing any built-in of the same name.
func WithValue(name string, v any) Option {
	return func(o *options) { o.values[name] = v }
}

// WithDefinitions adds expr-lang expressions keyed by the name their result
// is bound to. An expression may refer to the built-ins and to any other
// definition, provided the references are not circular.
func WithDefinitions(defs map[string]string) Option {
	return func(o *options) { maps.Copy(o.defs, defs) }
}

// WithLogger sets the logger for definition evaluation.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// New builds an environment. Definitions are evaluated in name order; a
// definition that refers to one not yet evaluated is retried once the
// other is available.
func New(opts ...Option) (*Env, error) {
	o := options{
		values: make(map[string]any),
		defs:   make(map[string]string),
	}

	for _, opt := range opts {
		opt(&o)
	}

	logger := log.Default()
	if o.logger != nil {
		logger = *o.logger
	}

	env := Builtins()
	env["env"] = envFunc(processEnv(o.environ))

	maps.Copy(env, o.values)

	pending := slices.Sorted(maps.Keys(o.defs))

	for len(pending) > 0 {
		var (
			retry []string
			last  error
		)

		for _, name := range pending {
			if name == "" {
				return nil, ErrInvalidName
			}

			v, err := evaluate(o.defs[name], env)
			if err != nil {
				retry = append(retry, name)
				last = tmpl.WrapError(err).With(slog.String("name", name))

				continue
			}

			env[name] = v

			logger.Trace("definition evaluated", slog.String("name", name))
		}

		if len(retry) == len(pending) {
			return nil, last
		}

		pending = retry
	}

	return &Env{values: env}, nil
}

func evaluate(source string, env map[string]any) (any, error) {
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", source))
	}

	v, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", source))
	}

	return v, nil
}

// Lookup returns the value bound to name.
func (e *Env) Lookup(name string) (any, bool) {
	if e == nil {
		return nil, false
	}

	v, ok := e.values[name]

	return v, ok
}

// Keys returns the bound names in sorted order.
func (e *Env) Keys() []string {
	if e == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(e.values))
}

// Map returns a copy of the bindings.
func (e *Env) Map() map[string]any {
	if e == nil {
		return nil
	}

	return maps.Clone(e.values)
}

var _ tmpl.Scope = (*Env)(nil)
