package loadercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/strathub/strathub-service/log"
	"github.com/strathub/strathub-service/pkg/utils/cache"
)

type (
	Option[K comparable, V any] func(*config[K, V])
	item[T any]                 struct {
		data    T
		expires time.Time
	}
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (*V, error)
	config[K comparable, V any]     struct {
		expiration time.Duration
		loader     LoaderFunc[K, V]
		now        func() time.Time
		l          *log.Logger
	}
	loaderCache[K comparable, V any] struct {
		mutex  sync.Mutex
		items  map[K]item[*V]
		config *config[K, V]
		group  singleflight.Group
		// incremented by Invalidate and InvalidateAll. Loads started before
		// an invalidation return their value without caching it.
		gen uint64
	}
)

func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = lf
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

// WithClock replaces time.Now (used by tests)
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *config[K, V]) {
		c.now = now
	}
}

// New creates a cache which loads missing or expired entries with the
// configured loader. Failed loads are not cached.
func New[K comparable, V any](opts ...Option[K, V]) cache.Cache[K, V] {
	c := &config[K, V]{
		expiration: 5 * time.Minute,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &loaderCache[K, V]{
		items:  make(map[K]item[*V]),
		config: c,
	}
}

// Get returns the cached value of key or loads it.
// The lock is not held while loading, concurrent loads of a key are shared.
func (c *loaderCache[K, V]) Get(ctx context.Context, key K) (*V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	if c.config.loader == nil {
		return nil, cache.ErrCacheMiss
	}
	v, err, _ := c.group.Do(flightKey(key), func() (any, error) {
		return c.load(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	//nolint:forcetypeassert // load always returns *V
	return v.(*V), nil
}

func (c *loaderCache[K, V]) lookup(key K) (*V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	cacheItem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !cacheItem.expires.After(c.config.now()) {
		delete(c.items, key)
		return nil, false
	}
	return cacheItem.data, true
}

func (c *loaderCache[K, V]) load(ctx context.Context, key K) (*V, error) {
	// another load may have finished between lookup and joining the flight
	if v, ok := c.lookup(key); ok {
		return v, nil
	}
	c.mutex.Lock()
	gen := c.gen
	c.mutex.Unlock()

	v, err := c.config.loader(ctx, key)
	c.config.l.Debug("loaderCache.load", log.Any("key", key))
	if err != nil {
		c.config.l.Debug("error loading entry",
			log.Any("key", key), log.ErrorField(err))
		return nil, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if gen == c.gen {
		c.items[key] = item[*V]{data: v, expires: c.config.now().Add(c.config.expiration)}
	}
	return v, nil
}

func (c *loaderCache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.gen++
	delete(c.items, key)
	c.group.Forget(flightKey(key))
	c.config.l.Debug("Invalidate",
		log.Any("key", key),
		log.Int("remain items", len(c.items)))
}

func (c *loaderCache[K, V]) InvalidateAll(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.gen++
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	c.items = make(map[K]item[*V])
	for _, k := range keys {
		c.group.Forget(flightKey(k))
	}
	c.config.l.Debug("InvalidateAll")
}

// flightKey uses the Go-syntax representation, distinct keys stay distinct
func flightKey[K comparable](key K) string {
	return fmt.Sprintf("%T/%#v", key, key)
}
