package record

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"ecoledger/internal/gateway/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func entry(id string, user entity.UserID, category string, co2 float64, at time.Time) entity.ScanEntry {
	return entity.ScanEntry{
		ID:          id,
		UserID:      user,
		Category:    category,
		Quantity:    1,
		TotalWeight: co2 / 2,
		CO2Saved:    co2,
		Timestamp:   at,
	}
}

func ids(entries []entity.ScanEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("insert and query preserve insertion order", func(t *testing.T) {
		require.NoError(t, s.ResetLedger(ctx))
		// timestamps deliberately out of order
		in := []entity.ScanEntry{
			entry("e1", "u1", "plastic", 1, base.Add(2*time.Hour)),
			entry("e2", "u1", "paper", 2, base),
			entry("e3", "u2", "glass", 3, base),
			entry("e4", "u1", "plastic", 4, base.Add(time.Hour)),
		}
		for _, e := range in {
			id, err := s.InsertScanEntry(ctx, e)
			require.NoError(t, err)
			assert.Equal(t, e.ID, id)
		}

		all, err := s.QueryScanEntries(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"e1", "e2", "e4"}, ids(all))
		assert.Equal(t, "paper", all[1].Category)
		assert.True(t, base.Equal(all[1].Timestamp))

		since := base.Add(time.Hour)
		windowed, err := s.QueryScanEntries(ctx, "u1", &since)
		require.NoError(t, err)
		assert.Equal(t, []string{"e1", "e4"}, ids(windowed), "since is inclusive")

		none, err := s.QueryScanEntries(ctx, "nobody", nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("recent entries newest first with ties by reverse insertion", func(t *testing.T) {
		require.NoError(t, s.ResetLedger(ctx))
		for _, e := range []entity.ScanEntry{
			entry("a", "u1", "plastic", 1, base),
			entry("b", "u1", "plastic", 1, base.Add(time.Minute)),
			entry("c", "u1", "plastic", 1, base),
			entry("d", "u1", "plastic", 1, base.Add(-time.Minute)),
		} {
			_, err := s.InsertScanEntry(ctx, e)
			require.NoError(t, err)
		}
		recent, err := s.QueryRecentScanEntries(ctx, "u1", 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "a"}, ids(recent))

		all, err := s.QueryRecentScanEntries(ctx, "u1", 20)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("upsert creates then adds", func(t *testing.T) {
		require.NoError(t, s.ResetLedger(ctx))
		_, found, err := s.FindUserAccount(ctx, "u9")
		require.NoError(t, err)
		assert.False(t, found)

		acct, err := s.UpsertUserAccount(ctx, "u9", 0.525)
		require.NoError(t, err)
		assert.InDelta(t, 0.525, acct.TotalCO2Saved, 1e-12)
		assert.Equal(t, entity.UserID("u9"), acct.UserID)
		assert.False(t, acct.CreatedAt.IsZero())

		acct, err = s.UpsertUserAccount(ctx, "u9", 1.35)
		require.NoError(t, err)
		assert.InDelta(t, 1.875, acct.TotalCO2Saved, 1e-12)

		got, found, err := s.FindUserAccount(ctx, "u9")
		require.NoError(t, err)
		require.True(t, found)
		assert.InDelta(t, 1.875, got.TotalCO2Saved, 1e-12)
	})

	t.Run("concurrent upserts lose no delta", func(t *testing.T) {
		require.NoError(t, s.ResetLedger(ctx))
		const workers = 16
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.UpsertUserAccount(ctx, "hot", 0.5)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		acct, found, err := s.FindUserAccount(ctx, "hot")
		require.NoError(t, err)
		require.True(t, found)
		assert.InDelta(t, workers*0.5, acct.TotalCO2Saved, 1e-9)
	})

	t.Run("user ids with separators do not collide", func(t *testing.T) {
		require.NoError(t, s.ResetLedger(ctx))
		_, err := s.InsertScanEntry(ctx, entry("x1", "a/b", "paper", 1, base))
		require.NoError(t, err)
		_, err = s.InsertScanEntry(ctx, entry("x2", "a", "paper", 1, base))
		require.NoError(t, err)

		got, err := s.QueryScanEntries(ctx, "a", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"x2"}, ids(got))
	})

	t.Run("replace centers", func(t *testing.T) {
		first := []entity.Center{
			{Name: "A", City: "Ludhiana", Country: "India", Latitude: 31.2, Longitude: 75.6},
			{Name: "B", City: "Ludhiana", Country: "India", Latitude: 31.3, Longitude: 75.7},
		}
		require.NoError(t, s.ReplaceCenters(ctx, first))
		got, err := s.ListAllCenters(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		second := []entity.Center{{Name: "C", Latitude: 1, Longitude: 2}}
		require.NoError(t, s.ReplaceCenters(ctx, second))
		got, err = s.ListAllCenters(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, got)
	})

	t.Run("reset clears ledger but keeps centers", func(t *testing.T) {
		require.NoError(t, s.ReplaceCenters(ctx, []entity.Center{{Name: "keep"}}))
		_, err := s.InsertScanEntry(ctx, entry("r1", "u1", "paper", 1, base))
		require.NoError(t, err)
		_, err = s.UpsertUserAccount(ctx, "u1", 1)
		require.NoError(t, err)

		require.NoError(t, s.ResetLedger(ctx))
		_, found, err := s.FindUserAccount(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, found)
		entries, err := s.QueryScanEntries(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Empty(t, entries)
		centers, err := s.ListAllCenters(ctx)
		require.NoError(t, err)
		assert.Len(t, centers, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := s.FindUserAccount(cctx, "u1")
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.InsertScanEntry(ctx, entry(fmt.Sprintf("p%d", i), "u1", "paper", 1, base))
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.InsertScanEntry(ctx, entry("p3", "u1", "paper", 1, base))
	require.NoError(t, err)

	got, err := s.QueryScanEntries(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p0", "p1", "p2", "p3"}, ids(got))
}

func TestPostgresStoreLive(t *testing.T) {
	dsn := os.Getenv("ECOLEDGER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("ECOLEDGER_TEST_PG_DSN not set")
	}
	s, err := OpenPostgres(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}
