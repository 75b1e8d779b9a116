package center

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/repository/record"
)

type fakeOriginStore struct {
	*record.MemoryStore

	mu        sync.Mutex
	listCalls int
	failList  bool
	// gate, when set, runs once after the origin read and before it returns.
	gate func()
}

func newFakeOriginStore(centers ...entity.Center) *fakeOriginStore {
	s := &fakeOriginStore{MemoryStore: record.NewMemoryStore()}
	_ = s.MemoryStore.ReplaceCenters(context.Background(), centers)
	return s
}

func (s *fakeOriginStore) ListAllCenters(ctx context.Context) ([]entity.Center, error) {
	s.mu.Lock()
	s.listCalls++
	fail := s.failList
	gate := s.gate
	s.gate = nil
	s.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("list failed")
	}
	list, err := s.MemoryStore.ListAllCenters(ctx)
	if gate != nil {
		gate()
	}
	return list, err
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	origin := newFakeOriginStore(entity.Center{Name: "A"}, entity.Center{Name: "B"})
	store := NewCachedStore(origin, CacheConfig{TTL: time.Minute})

	first, err := store.ListAllCenters(context.Background())
	if err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	second, err := store.ListAllCenters(context.Background())
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) || len(first) != 2 {
		t.Fatalf("unexpected centers: %#v %#v", first, second)
	}
	if origin.listCalls != 1 {
		t.Fatalf("expected one origin list call, got %d", origin.listCalls)
	}
	m := store.Metrics()
	if m.Hits != 1 || m.Misses != 1 || m.OriginReads != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}

	first[0].Name = "mutated"
	third, _ := store.ListAllCenters(context.Background())
	if third[0].Name != "A" {
		t.Fatalf("cache returned shared slice: %#v", third)
	}
}

func TestCachedStoreReplaceInvalidates(t *testing.T) {
	origin := newFakeOriginStore(entity.Center{Name: "A"})
	store := NewCachedStore(origin, DefaultCacheConfig())

	if _, err := store.ListAllCenters(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := store.ReplaceCenters(context.Background(), []entity.Center{{Name: "Z"}}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, err := store.ListAllCenters(context.Background())
	if err != nil {
		t.Fatalf("list after replace failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Z" {
		t.Fatalf("stale centers after replace: %#v", got)
	}
	if origin.listCalls != 2 {
		t.Fatalf("expected 2 origin list calls, got %d", origin.listCalls)
	}
	if store.Metrics().Invalidations != 1 {
		t.Fatalf("unexpected metrics: %+v", store.Metrics())
	}
}

func TestCachedStoreDropsRefillRacingReplace(t *testing.T) {
	origin := newFakeOriginStore(entity.Center{Name: "old"})
	entered := make(chan struct{})
	release := make(chan struct{})
	origin.gate = func() {
		close(entered)
		<-release
	}
	store := NewCachedStore(origin, CacheConfig{TTL: time.Hour})

	done := make(chan []entity.Center)
	go func() {
		got, _ := store.ListAllCenters(context.Background())
		done <- got
	}()
	<-entered
	if err := store.ReplaceCenters(context.Background(), []entity.Center{{Name: "new"}}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	close(release)
	if stale := <-done; len(stale) != 1 || stale[0].Name != "old" {
		t.Fatalf("in-flight read should see the old list, got %#v", stale)
	}

	got, err := store.ListAllCenters(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "new" {
		t.Fatalf("stale refill was cached: %#v", got)
	}
}

func TestCachedStoreDoesNotCacheErrors(t *testing.T) {
	origin := newFakeOriginStore(entity.Center{Name: "A"})
	origin.failList = true
	store := NewCachedStore(origin, DefaultCacheConfig())

	if _, err := store.ListAllCenters(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
	origin.failList = false
	got, err := store.ListAllCenters(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("expected recovery after error, got %#v %v", got, err)
	}
	if store.Metrics().OriginReadErr != 1 {
		t.Fatalf("unexpected metrics: %+v", store.Metrics())
	}
}

func TestCachedStoreTTL(t *testing.T) {
	origin := newFakeOriginStore(entity.Center{Name: "A"})
	store := NewCachedStore(origin, CacheConfig{TTL: 10 * time.Millisecond})

	if _, err := store.ListAllCenters(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := store.ListAllCenters(context.Background()); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if origin.listCalls != 2 {
		t.Fatalf("expected 2 origin reads after ttl expiry, got %d", origin.listCalls)
	}
}

func TestCachedStorePassesThroughLedgerCalls(t *testing.T) {
	origin := newFakeOriginStore()
	var store record.Store = NewCachedStore(origin, DefaultCacheConfig())

	if _, err := store.UpsertUserAccount(context.Background(), "u1", 2); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	acct, found, err := origin.FindUserAccount(context.Background(), "u1")
	if err != nil || !found || acct.TotalCO2Saved != 2 {
		t.Fatalf("origin not updated: %+v %v %v", acct, found, err)
	}
}
