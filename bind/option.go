package bind

import (
	"time"

	"github.com/ardnew/xtpl/log"
	"github.com/ardnew/xtpl/tmpl"
)

// Default cache purposes.
const (
	PurposeValue  = "bind"
	PurposeRepeat = "repeat"
)

// Option configures a [Binder], or a single [Binder.Repeat] call.
type Option func(config) config

type config struct {
	cache    *tmpl.Cache
	registry *tmpl.Registry
	scope    tmpl.Scope
	logger   *log.Logger
	purpose  string
	delay    time.Duration
	chunk    int
	append   bool
}

func (c config) apply(opts []Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func (c config) log() log.Logger {
	if c.logger != nil {
		return *c.logger
	}

	return log.Default()
}

// WithCache compiles templates through cache instead of [tmpl.DefaultCache].
func WithCache(cache *tmpl.Cache) Option {
	return func(c config) config {
		c.cache = cache

		return c
	}
}

// WithRegistry resolves pipe functions through r.
func WithRegistry(r *tmpl.Registry) Option {
	return func(c config) config {
		c.registry = r

		return c
	}
}

// WithScope resolves '#' references through scope.
func WithScope(scope tmpl.Scope) Option {
	return func(c config) config {
		c.scope = scope

		return c
	}
}

// WithLogger sets the logger used for bind activity and rendering.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = &logger

		return c
	}
}

// WithPurpose overrides the cache purpose.
func WithPurpose(purpose string) Option {
	return func(c config) config {
		c.purpose = purpose

		return c
	}
}

// WithAppend keeps the existing slot content when a cached repeat template
// is rendered again. The first render of a template always resets the slot.
func WithAppend(keep bool) Option {
	return func(c config) config {
		c.append = keep

		return c
	}
}

// WithChunkDelay renders a list size items at a time, waiting at least
// delay between chunks. A size below one renders the whole list at once.
func WithChunkDelay(size int, delay time.Duration) Option {
	return func(c config) config {
		c.chunk, c.delay = size, delay

		return c
	}
}
