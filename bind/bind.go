package bind

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ardnew/xtpl/tmpl"
)

// Binder renders templates into slots.
type Binder struct {
	locks sync.Map // Slot -> *sync.Mutex
	cfg   config
}

// Job describes one list render for [Binder.RepeatAll].
type Job struct {
	Slot  Slot
	Items any
	ID    string
	Text  string
}

// New returns a binder configured by opts.
func New(opts ...Option) *Binder {
	return &Binder{cfg: config{}.apply(opts)}
}

func (c config) context(data any) *tmpl.Context {
	return &tmpl.Context{
		Data:     data,
		Scope:    c.scope,
		Registry: c.registry,
		Cache:    c.cache,
		Logger:   c.logger,
	}
}

func (c config) compile(purpose, id, text string) (*tmpl.Template, bool, error) {
	if c.purpose != "" {
		purpose = c.purpose
	}

	cache := c.cache
	if cache == nil {
		cache = tmpl.DefaultCache()
	}

	return cache.CompileErr(purpose, id, text)
}

// Value renders the template text against data. The normalized text is
// also the cache id. When text yields no renderer, the value at key is
// returned instead, with tags stripped unless raw is set.
func (b *Binder) Value(key, text string, data any, raw bool) string {
	src := tmpl.Normalize(text)

	t, _, _ := b.cfg.compile(PurposeValue, src, src)
	if t != nil {
		return t.Render(b.cfg.context(data))
	}

	v, ok := tmpl.LookupPath(data, strings.Split(key, ".")...)
	if !ok {
		return ""
	}

	s := tmpl.Stringify(v)
	if _, isString := v.(string); isString && !raw {
		s = tmpl.StripTags(s)
	}

	return s
}

// Repeat renders text once per element of items into slot, in order. The
// template is cached under id. Options given here override those of the
// binder for this call only.
//
// With a chunk size configured, each chunk is appended only after the
// previous one, and the wait between chunks observes ctx.
func (b *Binder) Repeat(
	ctx context.Context,
	slot Slot,
	id, text string,
	items any,
	opts ...Option,
) error {
	cfg := b.cfg.apply(opts)
	src := tmpl.Normalize(text)

	t, first, err := cfg.compile(PurposeRepeat, id, src)
	if err != nil {
		if errors.Is(err, tmpl.ErrEmptyTemplate) {
			return nil
		}

		return err
	}

	unlock := b.lock(slot)
	defer unlock()

	if first || !cfg.append {
		slot.Set("")
	}

	list := tmpl.Elements(items)
	render := cfg.context(nil)

	size := cfg.chunk
	if size < 1 || size > len(list) {
		size = len(list)
	}

	var limit *rate.Limiter
	if cfg.chunk > 0 {
		limit = rate.NewLimiter(rate.Every(cfg.delay), 1)
	}

	chunks := 0

	for start := 0; start < len(list); start += size {
		if limit != nil {
			if err := limit.Wait(ctx); err != nil {
				return err
			}
		}

		var sb strings.Builder

		for _, item := range list[start:min(start+size, len(list))] {
			sb.WriteString(t.Render(render.With(item)))
		}

		slot.Append(sb.String())

		chunks++
	}

	cfg.log().Debug(
		"repeat rendered",
		slog.String("id", id),
		slog.Int("items", len(list)),
		slog.Int("chunks", chunks),
		slog.Bool("compiled", first),
	)

	return nil
}

// RepeatAll runs [Binder.Repeat] for every job concurrently. Each slot
// still receives its chunks in order. The first failure cancels the rest.
func (b *Binder) RepeatAll(ctx context.Context, jobs []Job, opts ...Option) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, job := range jobs {
		g.Go(func() error {
			return b.Repeat(ctx, job.Slot, job.ID, job.Text, job.Items, opts...)
		})
	}

	return g.Wait()
}

func (b *Binder) lock(slot Slot) func() {
	value, _ := b.locks.LoadOrStore(slot, new(sync.Mutex))
	mu, _ := value.(*sync.Mutex)

	mu.Lock()

	return mu.Unlock
}
