package tmpl

import (
	"sync"

	"github.com/ardnew/xtpl/log"
)

// Option configures a [Cache].
type Option func(*Cache)

// WithLogger sets the logger for cache activity and for render contexts
// that do not carry their own.
func WithLogger(logger log.Logger) Option {
	return func(c *Cache) { c.logger = &logger }
}

// WithShards sets the number of shards. Values below one are ignored.
func WithShards(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.shards = make([]sync.Map, n)
		}
	}
}

// WithRegistry sets the function registry for render contexts that use this
// cache and do not carry their own registry.
func WithRegistry(r *Registry) Option {
	return func(c *Cache) { c.registry = r }
}
