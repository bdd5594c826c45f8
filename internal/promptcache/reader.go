package promptcache

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/labeveryday/strands-hub-mcp/internal/objstore"
)

// ReadThrough serves content reads from the cache and falls through to the
// gateway on a miss. Concurrent misses for one key are collapsed into a
// single store fetch.
type ReadThrough struct {
	store  objstore.Gateway
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewReadThrough decorates store with cache.
func NewReadThrough(store objstore.Gateway, cache *Cache, logger *slog.Logger) *ReadThrough {
	return &ReadThrough{store: store, cache: cache, logger: logger}
}

// Get returns the object, serving from cache when fresh.
func (r *ReadThrough) Get(ctx context.Context, key string) (objstore.Object, error) {
	if obj, ok := r.cache.lookup(key); ok {
		r.logger.Debug("promptcache: hit", "key", key)
		return obj, nil
	}
	return r.fill(ctx, key)
}

// Fetch bypasses the cache, reads from the store, and repopulates.
func (r *ReadThrough) Fetch(ctx context.Context, key string) (objstore.Object, error) {
	r.cache.invalidate(key)
	return r.fill(ctx, key)
}

func (r *ReadThrough) fill(ctx context.Context, key string) (objstore.Object, error) {
	v, err, shared := r.group.Do(key, func() (any, error) {
		obj, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		r.cache.store(obj)
		return obj, nil
	})
	if err != nil {
		return objstore.Object{}, err
	}
	r.logger.Debug("promptcache: filled", "key", key, "shared", shared)
	return v.(objstore.Object), nil
}

// Direct is the cache-less read path used when no cache is configured.
// Both methods go straight to the store.
type Direct struct {
	Store objstore.Gateway
}

// Get implements the content reader contract.
func (d Direct) Get(ctx context.Context, key string) (objstore.Object, error) {
	return d.Store.Get(ctx, key)
}

// Fetch implements the content reader contract.
func (d Direct) Fetch(ctx context.Context, key string) (objstore.Object, error) {
	return d.Store.Get(ctx, key)
}
