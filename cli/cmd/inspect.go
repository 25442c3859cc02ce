package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/xtpl/tmpl"
)

// Inspect prints the compiled form of a template, or the tokens and tree of
// a single expression.
type Inspect struct {
	TemplateSource `embed:""`

	Expr   bool   `help:"Treat the input as one expression without braces" short:"e"`
	Format string `default:"yaml"                                           enum:"yaml,json" help:"Output format" short:"o"`
	Indent int    `default:"2"                                              help:"Indent width"`
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	_, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := i.read()
	if err != nil {
		return err
	}

	out, err := i.describe(text)
	if err != nil {
		return ErrCompile.Wrap(err).With(slog.String("source", text))
	}

	return i.write(os.Stdout, out)
}

func (i *Inspect) describe(text string) (map[string]any, error) {
	if !i.Expr {
		t, err := tmpl.Parse(text)
		if err != nil {
			return nil, err
		}

		return t.ToMap(), nil
	}

	tokens := tmpl.Tokenize(strings.TrimSpace(text))

	node, err := tmpl.Build(tokens)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"tokens": tmpl.TokenMaps(tokens),
		"tree":   tmpl.NodeMap(node),
	}, nil
}

func (i *Inspect) write(w io.Writer, v any) error {
	switch i.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", i.Indent))

		if err := enc.Encode(v); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

	default:
		b, err := yaml.MarshalWithOptions(v, yaml.Indent(max(i.Indent, 1)))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		if _, err := w.Write(b); err != nil {
			return err
		}
	}

	return nil
}
