package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ardnew/xtpl/tmpl"
)

// Funcs lists the pipe functions and, optionally, the '#' globals.
type Funcs struct {
	Globals bool `help:"Also list '#' globals" short:"g"`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	for name := range tmpl.DefaultRegistry().Names() {
		fmt.Fprintf(w, "%s\tfunction\n", name)
	}

	if f.Globals {
		env, err := loadGlobals(ctx)
		if err != nil {
			return err
		}

		for _, key := range env.Keys() {
			v, _ := env.Lookup(key)

			kind := "value"
			if _, ok := tmpl.AsFunc(v); ok {
				kind = "function"
			}

			fmt.Fprintf(w, "#%s\t%s\n", key, kind)
		}
	}

	return w.Flush()
}
