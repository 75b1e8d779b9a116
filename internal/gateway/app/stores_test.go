package app

import (
	"context"
	"testing"

	"ecoledger/internal/gateway/config"
	"ecoledger/internal/gateway/repository/record"
	"ecoledger/internal/gateway/repository/report"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRecordStoreSelection(t *testing.T) {
	ctx := context.Background()

	store, err := OpenRecordStore(ctx, &config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &record.MemoryStore{}, store)
	require.NoError(t, store.Close())

	store, err = OpenRecordStore(ctx, &config.Config{BadgerPath: t.TempDir()}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &record.BadgerStore{}, store)
	require.NoError(t, store.Close())
}

func TestInitStoresWrapsCentersAndFallsBackForReports(t *testing.T) {
	stores, err := initStores(context.Background(), &config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &report.MemoryStore{}, stores.reports)
	_, err = stores.records.ListAllCenters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stores.records.Metrics().Misses)
}
