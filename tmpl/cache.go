package tmpl

import (
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/xtpl/log"
)

// DefaultShards is the number of shards a [Cache] spreads its entries over
// unless configured with [WithShards].
const DefaultShards = 16

// Key identifies a compiled template. The purpose is a namespace such as
// "bind", "repeat" or "range"; the id is chosen by the caller.
type Key struct {
	Purpose string
	ID      string
}

func (k Key) hash() uint64 {
	return xxh3.HashString(k.Purpose + "\x00" + k.ID)
}

// entry holds one compiled template. The template is built exactly once.
type entry struct {
	err  error
	tmpl atomic.Pointer[Template]
	once sync.Once
}

// Cache maps keys to compiled templates. Entries are never evicted. A Cache
// is safe for concurrent use.
type Cache struct {
	registry *Registry
	logger   *log.Logger
	shards   []sync.Map
}

// NewCache returns an empty cache configured by opts.
func NewCache(opts ...Option) *Cache {
	c := new(Cache)

	for _, opt := range opts {
		opt(c)
	}

	if len(c.shards) == 0 {
		c.shards = make([]sync.Map, DefaultShards)
	}

	return c
}

var defaultCache = sync.OnceValue(func() *Cache { return NewCache() })

// DefaultCache returns the process-wide cache used by [Compile] and by
// contexts that do not name a cache.
func DefaultCache() *Cache { return defaultCache() }

// Compile compiles text with the default cache. It returns nil when the
// text cannot be compiled.
func Compile(purpose, id, text string) *Template {
	t, _ := DefaultCache().Compile(purpose, id, text)

	return t
}

// ClearCache removes every entry from the default cache.
func ClearCache() { DefaultCache().Reset() }

// log returns the configured logger, or the package-level logger at the
// time of the call.
func (c *Cache) log() log.Logger {
	if c.logger != nil {
		return *c.logger
	}

	return log.Default()
}

func (c *Cache) shard(k Key) *sync.Map {
	return &c.shards[k.hash()%uint64(len(c.shards))]
}

// Compile returns the template cached under (purpose, id), compiling text
// on a miss. When an entry exists, text is ignored. The second result
// reports whether this call compiled the template. A failed compilation
// caches nothing and returns nil.
func (c *Cache) Compile(purpose, id, text string) (*Template, bool) {
	t, first, _ := c.CompileErr(purpose, id, text)

	return t, first
}

// CompileErr is [Cache.Compile] that also returns the compile failure,
// always a [*CompileError].
func (c *Cache) CompileErr(purpose, id, text string) (*Template, bool, error) {
	key := Key{Purpose: purpose, ID: id}
	sh := c.shard(key)

	value, hit := sh.LoadOrStore(key, new(entry))
	e, _ := value.(*entry)

	c.log().Trace(
		"cache lookup",
		slog.String("purpose", purpose),
		slog.String("key", strconv.FormatUint(key.hash(), 36)),
		slog.Bool("cache_hit", hit),
	)

	first := false

	e.once.Do(func() {
		first = true

		tmpl, err := Parse(text)
		if err != nil {
			e.err = &CompileError{
				Err:     err,
				Purpose: purpose,
				ID:      id,
				Source:  text,
			}

			return
		}

		tmpl.Purpose, tmpl.ID = purpose, id
		e.tmpl.Store(tmpl)
	})

	if e.err != nil {
		// Drop the failed entry so that a later call can try again.
		sh.CompareAndDelete(key, e)

		switch {
		case !first:
		case errors.Is(e.err, ErrEmptyTemplate):
			c.log().Debug("empty template", slog.String("purpose", purpose), slog.String("id", id))
		default:
			c.log().Warn("compile failed", slog.Any("error", e.err))
		}

		return nil, false, e.err
	}

	return e.tmpl.Load(), first, nil
}

// Lookup returns the template cached under (purpose, id) without compiling.
func (c *Cache) Lookup(purpose, id string) (*Template, bool) {
	key := Key{Purpose: purpose, ID: id}

	value, ok := c.shard(key).Load(key)
	if !ok {
		return nil, false
	}

	e, _ := value.(*entry)

	t := e.tmpl.Load()

	return t, t != nil
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	n := 0

	for i := range c.shards {
		c.shards[i].Range(func(_, value any) bool {
			if e, _ := value.(*entry); e.tmpl.Load() != nil {
				n++
			}

			return true
		})
	}

	return n
}

// Reset removes every entry.
func (c *Cache) Reset() {
	for i := range c.shards {
		c.shards[i].Clear()
	}
}
