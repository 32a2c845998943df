package cacheapi

import (
	"context"
	"errors"
)

var (
	ErrCacheKeyNotExist = errors.New("cache key not exist")
)

type ICache[K comparable, V any] interface {
	Get(ctx context.Context, k K) (V, error)
	Set(ctx context.Context, k K, v V) error
	Del(ctx context.Context, k K) error
}

type LoadCacheCallbackFunc[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Load returns the cached value of k, on miss cb is called and its result stored.
// A failed Set is ignored, the loaded value is still returned.
func Load[K comparable, V any](ctx context.Context, c ICache[K, V], k K, cb LoadCacheCallbackFunc[K, V]) (V, error) {
	v, err := c.Get(ctx, k)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrCacheKeyNotExist) {
		return v, err
	}
	v, err = cb(ctx, k)
	if err != nil {
		return v, err
	}
	_ = c.Set(ctx, k, v)
	return v, nil
}

// Invalidate drops every given key, errors are ignored.
func Invalidate[K comparable, V any](ctx context.Context, c ICache[K, V], ks ...K) {
	for _, k := range ks {
		_ = c.Del(ctx, k)
	}
}

type nopCache[K comparable, V any] struct{}

func (nopCache[K, V]) Get(ctx context.Context, k K) (V, error) {
	var v V
	return v, ErrCacheKeyNotExist
}

func (nopCache[K, V]) Set(ctx context.Context, k K, v V) error {
	return nil
}

func (nopCache[K, V]) Del(ctx context.Context, k K) error {
	return nil
}

// Nop never stores anything, every Load goes to the callback.
func Nop[K comparable, V any]() ICache[K, V] {
	return nopCache[K, V]{}
}
