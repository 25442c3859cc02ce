package tmpl

import (
	"log/slog"

	"github.com/ardnew/xtpl/log"
)

// Scope supplies the values and callables that '#' references resolve
// against.
type Scope interface {
	Lookup(name string) (any, bool)
}

// Globals is a [Scope] backed by a map.
type Globals map[string]any

// Lookup returns the value bound to name.
func (g Globals) Lookup(name string) (any, bool) {
	v, ok := g[name]

	return v, ok
}

// Context carries everything a template needs while rendering. A nil
// Registry or Logger falls back to the cache's, and a nil Cache to
// [DefaultCache].
type Context struct {
	Data     any
	Scope    Scope
	Registry *Registry
	Cache    *Cache
	Logger   *log.Logger
}

// With returns a copy of ctx rendering against data.
func (ctx *Context) With(data any) *Context {
	if ctx == nil {
		return &Context{Data: data}
	}

	c := *ctx
	c.Data = data

	return &c
}

func (ctx *Context) data() any {
	if ctx == nil {
		return nil
	}

	return ctx.Data
}

func (ctx *Context) registry() *Registry {
	if ctx != nil && ctx.Registry != nil {
		return ctx.Registry
	}

	if r := ctx.cache().registry; r != nil {
		return r
	}

	return DefaultRegistry()
}

func (ctx *Context) cache() *Cache {
	if ctx == nil || ctx.Cache == nil {
		return DefaultCache()
	}

	return ctx.Cache
}

func (ctx *Context) logger() log.Logger {
	if ctx != nil && ctx.Logger != nil {
		return *ctx.Logger
	}

	return ctx.cache().log()
}

// external resolves a '#' reference path against the scope.
func (ctx *Context) external(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}

	var scope Scope
	if ctx != nil {
		scope = ctx.Scope
	}

	if scope == nil {
		ctx.logger().Debug(
			"unresolved external reference",
			slog.String("ref", path[0]),
			slog.String("reason", "no scope"),
		)

		return nil, false
	}

	v, ok := scope.Lookup(path[0])
	if ok {
		v, ok = LookupPath(v, path[1:]...)
	}

	if !ok {
		ctx.logger().Debug(
			"unresolved external reference",
			slog.Any("ref", path),
		)

		return nil, false
	}

	return v, true
}
