package tmpl

import (
	"iter"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// NoHandler is the text rendered in place of a call to an unregistered
// function.
const NoHandler = "no handler found"

// Func is a template function. The first argument is the piped value.
type Func func(ctx *Context, args ...any) any

// Registry maps function names to implementations. It is safe for
// concurrent use. Registrations are additive and the last one for a name
// wins.
type Registry struct {
	funcs map[string]Func
	mutex sync.RWMutex
}

// NewRegistry returns a registry with the built-in functions registered.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func, len(builtins))}

	maps.Copy(r.funcs, builtins)

	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// DefaultRegistry returns the process-wide registry used when a [Context]
// does not name one.
func DefaultRegistry() *Registry { return defaultRegistry() }

// Register binds name to fn, replacing any previous binding. An empty name
// or nil function is ignored.
func (r *Registry) Register(name string, fn Func) {
	if name == "" || fn == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.funcs[name] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	fn, ok := r.funcs[name]

	return fn, ok
}

// Names returns an iterator over the registered names in sorted order.
func (r *Registry) Names() iter.Seq[string] {
	r.mutex.RLock()
	names := slices.Sorted(maps.Keys(r.funcs))
	r.mutex.RUnlock()

	return slices.Values(names)
}

// Resolve returns the callable for a pipe's function name. A name starting
// with '#' refers to a callable in the render context's [Scope], looked up
// when the function is called. Any other name not in the registry resolves
// to a function that renders [NoHandler].
func (r *Registry) Resolve(name string) Func {
	if ext, ok := strings.CutPrefix(name, "#"); ok {
		return external(ext)
	}

	if fn, ok := r.Lookup(name); ok {
		return fn
	}

	return missing(name)
}

func missing(name string) Func {
	return func(ctx *Context, _ ...any) any {
		ctx.logger().Warn(NoHandler, slog.String("func", name))

		return NoHandler
	}
}

func external(name string) Func {
	path := splitPath(name)

	return func(ctx *Context, args ...any) any {
		v, ok := ctx.external(path)
		if !ok {
			return nil
		}

		fn, ok := AsFunc(v)
		if !ok {
			ctx.logger().Debug(
				"external reference is not callable",
				slog.String("ref", name),
			)

			return nil
		}

		return fn(ctx, args...)
	}
}

// AsFunc adapts a Go function value to a [Func]. Functions with other
// signatures than the common ones below are called through reflection, with
// arguments converted to the parameter types where possible. A trailing
// error result that is non-nil makes the call yield nil.
func AsFunc(v any) (Func, bool) {
	switch fn := v.(type) {
	case nil:
		return nil, false
	case Func:
		return fn, true
	case func(*Context, ...any) any:
		return fn, true
	case func(...any) any:
		return func(_ *Context, args ...any) any { return fn(args...) }, true
	case func(any) any:
		return func(_ *Context, args ...any) any { return fn(arg(args, 0)) }, true
	case func(string) string:
		return func(_ *Context, args ...any) any {
			return fn(Stringify(arg(args, 0)))
		}, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func {
		return nil, false
	}

	return func(ctx *Context, args ...any) any {
		return callReflect(ctx, rv, args)
	}, true
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}

	return nil
}

func callReflect(ctx *Context, fn reflect.Value, args []any) any {
	typ := fn.Type()
	in := make([]reflect.Value, 0, len(args))

	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
	}

	for i := range fixed {
		in = append(in, convertArg(arg(args, i), typ.In(i)))
	}

	if typ.IsVariadic() {
		elem := typ.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			in = append(in, convertArg(args[i], elem))
		}
	}

	out := fn.Call(in)
	if len(out) == 0 {
		return nil
	}

	if last := out[len(out)-1]; last.Type().Implements(errorType) {
		if !last.IsNil() {
			ctx.logger().Debug(
				"external function failed",
				slog.Any("error", last.Interface()),
			)

			return nil
		}

		if len(out) == 1 {
			return nil
		}
	}

	return out[0].Interface()
}

var errorType = reflect.TypeFor[error]()

func convertArg(v any, to reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(to)
	}

	switch to.Kind() {
	case reflect.String:
		return reflect.ValueOf(Stringify(v)).Convert(to)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Float32, reflect.Float64:
		if f := toNumber(v); f == f {
			return reflect.ValueOf(f).Convert(to)
		}

		return reflect.Zero(to)
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(to):
		return rv
	case rv.Type().ConvertibleTo(to):
		return rv.Convert(to)
	default:
		return reflect.Zero(to)
	}
}
