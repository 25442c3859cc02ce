package cmd

import (
	"context"

	"github.com/ardnew/xtpl/cli/cmd/repl"
	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// Repl starts an interactive template renderer.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	data, err := loadData(ctx)
	if err != nil {
		return err
	}

	env, err := loadGlobals(ctx)
	if err != nil {
		return err
	}

	cacheDir := ""
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, &repl.Session{
		Data:    data,
		Globals: env,
		Cache:   tmpl.NewCache(tmpl.WithLogger(log.Default())),
		Logger:  log.Default(),
	}, cacheDir)
}
