package app

import (
	"context"
	"fmt"
	"strings"

	centercache "ecoledger/internal/cache/center"
	"ecoledger/internal/gateway/config"
	"ecoledger/internal/gateway/repository/record"
	"ecoledger/internal/gateway/repository/report"

	"github.com/rs/zerolog"
)

type gatewayStores struct {
	records *centercache.CachedStore
	reports report.Store
}

func (s *gatewayStores) Close() error {
	if s == nil || s.records == nil {
		return nil
	}
	return s.records.Close()
}

func initStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gatewayStores, error) {
	origin, err := OpenRecordStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	reports, err := chooseReportStore(cfg, log)
	if err != nil {
		_ = origin.Close()
		return nil, err
	}
	return &gatewayStores{
		records: centercache.NewCachedStore(origin, centercache.CacheConfig{TTL: cfg.CenterCacheTTL}),
		reports: reports,
	}, nil
}

// OpenRecordStore picks the ledger backend: postgres when DATABASE_URL is
// set, badger when BADGER_PATH is set, memory otherwise.
func OpenRecordStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (record.Store, error) {
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		store, err := record.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		log.Info().Str("backend", "postgres").Msg("record store ready")
		return store, nil
	}
	if path := strings.TrimSpace(cfg.BadgerPath); path != "" {
		storeLog := log.With().Str("component", "badger").Logger()
		store, err := record.OpenBadger(record.BadgerConfig{Path: path, SyncWrites: true, Logger: &storeLog})
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		log.Info().Str("backend", "badger").Str("path", path).Msg("record store ready")
		return store, nil
	}
	log.Warn().Str("backend", "memory").Msg("record store ready; data is lost on exit")
	return record.NewMemoryStore(), nil
}

func chooseReportStore(cfg *config.Config, log zerolog.Logger) (report.Store, error) {
	if !cfg.Report.CanUseS3() {
		log.Info().Str("backend", "memory").Msg("report store ready")
		return report.NewMemoryStore(), nil
	}
	s3Store, err := report.NewS3Store(report.S3Config{
		Endpoint:  cfg.Report.Endpoint,
		Region:    cfg.Report.Region,
		AccessKey: cfg.Report.AccessKey,
		SecretKey: cfg.Report.SecretKey,
		Bucket:    cfg.Report.Bucket,
		UseSSL:    cfg.Report.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report s3 store: %w", err)
	}
	log.Info().Str("backend", "s3").Str("bucket", cfg.Report.Bucket).Str("endpoint", cfg.Report.Endpoint).Msg("report store ready")
	return s3Store, nil
}
