package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ardnew/xtpl/bind"
	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// Repeat renders a template once per element of a list in the data.
type Repeat struct {
	TemplateSource `embed:""`

	Path  string        `help:"Dotted data path of the list (default: the data itself)" short:"l"`
	Chunk int           `help:"Render this many items at a time"                        short:"n"`
	Delay time.Duration `default:"0s"                                                   help:"Minimum delay between chunks"`
}

// writerSlot is a [bind.Slot] that streams to a writer. Appends are
// written as they arrive, so there is nothing to reset.
type writerSlot struct {
	w   io.Writer
	err error
}

func (s *writerSlot) Set(text string) { s.Append(text) }

func (s *writerSlot) Append(text string) {
	if s.err == nil && text != "" {
		_, s.err = io.WriteString(s.w, text)
	}
}

// Run executes the repeat command.
func (r *Repeat) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := r.read()
	if err != nil {
		return err
	}

	data, err := loadData(ctx)
	if err != nil {
		return err
	}

	list := data
	if r.Path != "" {
		list, _ = tmpl.LookupPath(data, strings.Split(r.Path, ".")...)
	}

	if tmpl.Elements(list) == nil {
		return ErrNotList.With(slog.String("path", r.Path))
	}

	env, err := loadGlobals(ctx)
	if err != nil {
		return err
	}

	b := bind.New(
		bind.WithCache(tmpl.NewCache(tmpl.WithLogger(log.Default()))),
		bind.WithScope(env),
		bind.WithLogger(log.Default()),
		bind.WithChunkDelay(r.Chunk, r.Delay),
	)

	slot := &writerSlot{w: os.Stdout}

	err = b.Repeat(ctx, slot, "cli", text, list)
	if ce := (*tmpl.CompileError)(nil); errors.As(err, &ce) {
		return ErrCompile.Wrap(ce)
	}

	if err != nil {
		return err
	}

	if slot.err != nil {
		return slot.err
	}

	_, err = io.WriteString(os.Stdout, "\n")

	return err
}
