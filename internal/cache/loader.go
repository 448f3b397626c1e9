package cache

import (
	"context"
	"strconv"

	"golang.org/x/sync/singleflight"
)

// Loader fills an LRUCache on demand. Concurrent misses for the same key
// share one load, and a load that overlaps an Invalidate is returned to its
// callers but never stored.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group
}

func NewLoader[T any](c *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: c}
}

// Load returns the cached value for key or calls fn to produce it.
func (l *Loader[T]) Load(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	gen := l.cache.Generation()
	flightKey := strconv.FormatUint(gen, 10) + ":" + key
	v, err, _ := l.group.Do(flightKey, func() (any, error) {
		data, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		l.cache.SetIfGeneration(key, data, gen)
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops all cached values and orphans in-flight loads.
func (l *Loader[T]) Invalidate() {
	l.cache.Clear()
}

// Cache exposes the underlying cache, e.g. for registration with a Manager.
func (l *Loader[T]) Cache() *LRUCache[T] {
	return l.cache
}
