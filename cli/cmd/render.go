package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/xtpl/bind"
	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// Render renders a template once against the data.
type Render struct {
	TemplateSource `embed:""`

	Key string `help:"Data path to print when the template is empty" short:"k"`
	Raw bool   `help:"Do not strip tags from the --key fallback"     short:"r"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := r.read()
	if err != nil && (r.Key == "" || !errors.Is(err, ErrNoTemplate)) {
		return err
	}

	data, err := loadData(ctx)
	if err != nil {
		return err
	}

	env, err := loadGlobals(ctx)
	if err != nil {
		return err
	}

	b := bind.New(
		bind.WithCache(tmpl.NewCache(tmpl.WithLogger(log.Default()))),
		bind.WithScope(env),
		bind.WithLogger(log.Default()),
	)

	log.DebugContext(ctx, "render",
		slog.Int("template_length", len(text)),
		slog.String("key", r.Key),
	)

	_, err = fmt.Fprintln(os.Stdout, b.Value(r.Key, text, data, r.Raw))

	return err
}
