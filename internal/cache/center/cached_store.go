package center

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	memcache "ecoledger/internal/cache/memory"
	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/repository/record"
)

const centersKey = "all"

type CacheConfig struct {
	TTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 5 * time.Minute}
}

type MetricsSnapshot struct {
	Hits          uint64
	Misses        uint64
	OriginReads   uint64
	OriginReadErr uint64
	Invalidations uint64
}

type Metrics struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	originReads   atomic.Uint64
	originReadErr atomic.Uint64
	invalidations atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		OriginReads:   m.originReads.Load(),
		OriginReadErr: m.originReadErr.Load(),
		Invalidations: m.invalidations.Load(),
	}
}

// CachedStore serves ListAllCenters from memory for TTL. Every other call goes
// straight to the origin store.
type CachedStore struct {
	record.Store

	centers *memcache.LRUTTL[string, []entity.Center]
	metrics Metrics

	// gen advances on every invalidation. A refill that started under an older
	// generation is discarded.
	mu  sync.Mutex
	gen uint64
}

func NewCachedStore(origin record.Store, cfg CacheConfig) *CachedStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	return &CachedStore{
		Store:   origin,
		centers: memcache.NewLRUTTL[string, []entity.Center](1, 0, cfg.TTL),
	}
}

func (s *CachedStore) ListAllCenters(ctx context.Context) ([]entity.Center, error) {
	if cached, ok := s.centers.Get(centersKey); ok {
		s.metrics.hits.Add(1)
		return append([]entity.Center(nil), cached...), nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	list, err := s.Store.ListAllCenters(ctx)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]entity.Center(nil), list...)
	s.mu.Lock()
	if s.gen == gen {
		s.centers.Set(centersKey, copied, 0)
	}
	s.mu.Unlock()
	return append([]entity.Center(nil), copied...), nil
}

func (s *CachedStore) ReplaceCenters(ctx context.Context, centers []entity.Center) error {
	defer s.Invalidate()
	return s.Store.ReplaceCenters(ctx, centers)
}

// Invalidate drops the cached center list and any refill still in flight.
func (s *CachedStore) Invalidate() {
	s.metrics.invalidations.Add(1)
	s.mu.Lock()
	s.gen++
	s.centers.Delete(centersKey)
	s.mu.Unlock()
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
