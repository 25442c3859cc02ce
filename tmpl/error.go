package tmpl

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrEmptyTemplate    = NewError("empty template")
	ErrUnbalancedParen  = NewError("unbalanced parenthesis")
	ErrInvalidNumber    = NewError("invalid number literal")
	ErrDanglingOperator = NewError("operator missing operand")
	ErrUnexpectedToken  = NewError("unexpected token")
)

// Error is a template error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an [Error], returning err itself when it
// already is one.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface. The message and the wrapped cause
// are joined with ": ", omitting whichever is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an [Error] derived from the same sentinel,
// so that errors decorated with [Error.With] or [Error.Wrap] still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.msg == "" {
		return false
	}

	return e.msg == t.msg
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e carrying the additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: newAttrs}
}

// CompileError reports a template that could not be turned into a renderer.
// The cache never stores a template that failed with a CompileError.
type CompileError struct {
	Err     error
	Purpose string
	ID      string
	Source  string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder

	b.WriteString("compile")

	if e.Purpose != "" || e.ID != "" {
		b.WriteString(" " + e.Purpose + "/" + e.ID)
	}

	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying construction error.
func (e *CompileError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *CompileError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("purpose", e.Purpose),
		slog.String("id", e.ID),
		slog.Int("source_length", len(e.Source)),
	}

	if e.Err != nil {
		attrs = append(attrs, slog.Any("cause", e.Err))
	}

	return slog.GroupValue(attrs...)
}
