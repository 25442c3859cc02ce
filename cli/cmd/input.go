package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/xtpl/globals"
	"github.com/ardnew/xtpl/log"
)

// loadData decodes every YAML (or JSON) document of the data files in ctx.
// Mappings are merged, later keys winning; any other document replaces
// what was read before it. No data files yield nil.
func loadData(ctx context.Context) (any, error) {
	files := dataFilesFrom(ctx)
	if files == nil {
		return nil, nil
	}

	var data any

	for i, r := range files.Readers() {
		err := decodeAll(r, func(doc any) {
			data = merge(data, doc)
		})
		if err != nil {
			return nil, ErrReadData.Wrap(err).With(slog.Int("file", i))
		}
	}

	log.TraceContext(ctx, "data loaded", slog.Bool("mapping", isMapping(data)))

	return data, nil
}

func decodeAll(r io.Reader, fn func(any)) error {
	ra := readahead.NewReader(r)
	defer ra.Close()

	dec := yaml.NewDecoder(ra)

	for {
		var doc any

		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		fn(doc)
	}
}

func isMapping(v any) bool {
	_, ok := v.(map[string]any)

	return ok
}

func merge(into, doc any) any {
	dst, ok := into.(map[string]any)
	src, isMap := doc.(map[string]any)

	if !ok || !isMap {
		return doc
	}

	out := maps.Clone(dst)
	maps.Copy(out, src)

	return out
}

// TemplateSource selects where a command reads its template from.
type TemplateSource struct {
	File string   `help:"Read the template from a file ('-' for stdin)" short:"t" type:"path"`
	Text []string `arg:""                                                            help:"Template text (joined with spaces)" optional:""`
}

// read returns the template text. A file takes precedence over arguments.
func (s TemplateSource) read() (string, error) {
	if s.File == "" {
		if len(s.Text) == 0 {
			return "", ErrNoTemplate
		}

		return strings.Join(s.Text, " "), nil
	}

	var r io.Reader = os.Stdin

	if s.File != stdinSource {
		f, err := os.Open(s.File)
		if err != nil {
			return "", ErrReadTemplate.Wrap(err).With(slog.String("file", s.File))
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return "", ErrReadTemplate.Wrap(err).With(slog.String("file", s.File))
	}

	return string(b), nil
}

// loadGlobals builds the '#' globals from the definitions in ctx.
func loadGlobals(ctx context.Context) (*globals.Env, error) {
	env, err := globals.New(
		globals.WithDefinitions(definitionsFrom(ctx)),
		globals.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, ErrGlobals.Wrap(err)
	}

	return env, nil
}
