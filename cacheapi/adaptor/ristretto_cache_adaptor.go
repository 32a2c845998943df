package cachewrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/xxxsen/cardpub/cacheapi"
)

type LimitRistrettoKey interface {
	uint64 | string | byte | int | int32 | uint32 | int64
}

type ristrettoCacheWrap[K LimitRistrettoKey, V any] struct {
	c   *ristretto.Cache[K, V]
	ttl time.Duration
}

func (r *ristrettoCacheWrap[K, V]) Get(ctx context.Context, k K) (V, error) {
	v, ok := r.c.Get(k)
	if !ok {
		return v, cacheapi.ErrCacheKeyNotExist
	}
	return v, nil
}

func (r *ristrettoCacheWrap[K, V]) Set(ctx context.Context, k K, v V) error {
	if !r.c.SetWithTTL(k, v, 1, r.ttl) {
		return fmt.Errorf("ristretto set dropped")
	}
	// set是异步的, 等待写入完成, 否则紧接着的Get可能拿不到
	r.c.Wait()
	return nil
}

func (r *ristrettoCacheWrap[K, V]) Del(ctx context.Context, k K) error {
	r.c.Del(k)
	return nil
}

// WrapRistrettoCache stores every item with cost 1, ttl 0 means no expiry.
func WrapRistrettoCache[K LimitRistrettoKey, V any](c *ristretto.Cache[K, V], ttl time.Duration) cacheapi.ICache[K, V] {
	return &ristrettoCacheWrap[K, V]{c: c, ttl: ttl}
}

// NewRistrettoCache keeps about size items.
func NewRistrettoCache[K LimitRistrettoKey, V any](size int64, ttl time.Duration) (cacheapi.ICache[K, V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache failed, err:%w", err)
	}
	return WrapRistrettoCache(c, ttl), nil
}
