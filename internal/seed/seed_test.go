package seed

import (
	"context"
	"testing"
	"time"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/repository/record"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeder(t *testing.T, store record.Store) (*Seeder, time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s := New(store, emission.Default(), zerolog.Nop())
	s.now = func() time.Time { return now }
	return s, now
}

func TestSeedCenters(t *testing.T) {
	store := record.NewMemoryStore()
	s, _ := newSeeder(t, store)

	n, err := s.SeedCenters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	got, err := store.ListAllCenters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCenters(), got)
}

func TestSeedUsersPricesEntriesFromTable(t *testing.T) {
	ctx := context.Background()
	store := record.NewMemoryStore()
	s, now := newSeeder(t, store)

	rep, err := s.SeedUsers(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Users)
	assert.Equal(t, 19, rep.Entries)
	assert.InDelta(t, 2.403, rep.Totals["user001"], 1e-9)

	entries, err := store.QueryScanEntries(ctx, "user001", nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "plastic", entries[0].Category)
	assert.InDelta(t, 0.525, entries[0].CO2Saved, 1e-9)

	for _, e := range entries {
		assert.False(t, e.Timestamp.After(now))
		assert.True(t, e.Timestamp.After(now.Add(-spread)))
	}

	sum := 0.0
	for _, e := range entries {
		sum += e.CO2Saved
	}
	acct, found, err := store.FindUserAccount(ctx, "user001")
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, sum, acct.TotalCO2Saved, 1e-9)
}

func TestSeedUsersResetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := record.NewMemoryStore()
	s, _ := newSeeder(t, store)

	_, err := s.SeedUsers(ctx, false)
	require.NoError(t, err)
	_, err = s.SeedUsers(ctx, false)
	require.NoError(t, err)
	acct, _, err := store.FindUserAccount(ctx, "user003")
	require.NoError(t, err)
	assert.InDelta(t, 2*(0.6+0.27+0.252), acct.TotalCO2Saved, 1e-9)

	_, err = s.SeedUsers(ctx, true)
	require.NoError(t, err)
	acct, _, err = store.FindUserAccount(ctx, "user003")
	require.NoError(t, err)
	assert.InDelta(t, 0.6+0.27+0.252, acct.TotalCO2Saved, 1e-9)
}
