package tmpl

import (
	"fmt"
	"log/slog"
	"strings"
)

// Node is a compiled placeholder expression.
type Node interface {
	Eval(ctx *Context) any
}

// Const is a literal number or string.
type Const struct {
	Value any
}

// Eval returns the literal value.
func (n Const) Eval(*Context) any { return n.Value }

// Lookup resolves a dotted path against the render data. A missing segment
// yields the empty string.
type Lookup struct {
	Path []string
}

// Eval walks the path from the context's data.
func (n Lookup) Eval(ctx *Context) any {
	v, ok := LookupPath(ctx.data(), n.Path...)
	if !ok || v == nil {
		return ""
	}

	return v
}

// GlobalRef resolves a dotted path against the context's [Scope] at render
// time. An unresolved reference yields the empty string.
type GlobalRef struct {
	Path []string
}

// Eval resolves the reference.
func (n GlobalRef) Eval(ctx *Context) any {
	v, ok := ctx.external(n.Path)
	if !ok || v == nil {
		return ""
	}

	return v
}

// Arith applies an infix operator. A nil Left makes a unary sign.
// The ',' operator evaluates both sides and yields Right.
type Arith struct {
	Left  Node
	Right Node
	Op    byte
}

// Eval evaluates both operands and applies the operator.
func (n Arith) Eval(ctx *Context) any {
	if n.Op == ',' {
		if n.Left != nil {
			n.Left.Eval(ctx)
		}

		return n.Right.Eval(ctx)
	}

	if n.Left == nil {
		v := toNumber(n.Right.Eval(ctx))
		if n.Op == '-' {
			return -v
		}

		return v
	}

	return arith(n.Op, n.Left.Eval(ctx), n.Right.Eval(ctx))
}

// Pipe calls a function with the piped value as its first argument followed
// by any extra arguments. The function is resolved when the pipe is
// evaluated, so registrations made after compiling are honoured.
type Pipe struct {
	Name string
	Args []Node
}

// Eval resolves and calls the function. A panic in the function is recovered
// and yields the empty string.
func (n Pipe) Eval(ctx *Context) (result any) {
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		if a != nil {
			args[i] = a.Eval(ctx)
		}
	}

	fn := ctx.registry().Resolve(n.Name)

	defer func() {
		if r := recover(); r != nil {
			ctx.logger().Error(
				"function panicked",
				slog.String("func", n.Name),
				slog.String("panic", fmt.Sprint(r)),
			)

			result = ""
		}
	}()

	if result = fn(ctx, args...); result == nil {
		result = ""
	}

	return result
}

// Raw emits its operand without escaping.
type Raw struct {
	X Node
}

// Eval returns the operand's value.
func (n Raw) Eval(ctx *Context) any { return n.X.Eval(ctx) }

// Escaped emits its operand through the escaping policy.
type Escaped struct {
	X Node
}

// Eval returns the escaped operand value.
func (n Escaped) Eval(ctx *Context) any { return escapeValue(n.X.Eval(ctx)) }

// splitPath splits a dotted reference into its segments.
func splitPath(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ".")
}
