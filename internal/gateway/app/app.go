package app

import (
	"context"
	"errors"
	"fmt"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/config"
	"ecoledger/internal/gateway/handler"
	"ecoledger/internal/gateway/handler/rpc"
	"ecoledger/internal/gateway/observability"
	"ecoledger/internal/gateway/server"
	"ecoledger/internal/gateway/service/center"
	"ecoledger/internal/gateway/service/export"
	"ecoledger/internal/gateway/service/insight"
	"ecoledger/internal/gateway/service/ledger"
	"ecoledger/internal/gateway/service/live"
	"ecoledger/internal/logging"

	"github.com/rs/zerolog"
)

const (
	liveBuffer       = 32
	insightCacheSize = 1024
)

type App struct {
	server *server.Server
	stores *gatewayStores
	log    zerolog.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log.Info().Str("env", cfg.Env).Msg("config loaded")

	table, err := emission.Load(cfg.EmissionTablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load emission table: %w", err)
	}

	// Dependencies
	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetrics()
	hub := live.NewHub(liveBuffer)

	ledgerSvc := ledger.New(stores.records, table, ledger.WithNotifier(hub), ledger.WithMetrics(metrics))
	centerSvc := center.New(stores.records, metrics)
	exportSvc := export.New(ledgerSvc, stores.reports)
	insightSvc, err := newInsightService(ctx, cfg, ledgerSvc, log)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	// Routing & Server
	mux := server.NewMux(server.Handlers{
		Carbon:      handler.NewCarbonHandler(ledgerSvc, exportSvc, insightSvc, log),
		Location:    handler.NewLocationHandler(centerSvc, log),
		Live:        handler.NewLiveHandler(hub, log),
		CarbonRPC:   rpc.NewCarbonHandler(ledgerSvc, log),
		LocationRPC: rpc.NewLocationHandler(centerSvc, log),
	}, server.MuxConfig{
		StoreTimeout:   cfg.StoreTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        metrics,
		Log:            log,
	})

	return &App{
		server: server.New(cfg.Port, mux, log),
		stores: stores,
		log:    log,
	}, nil
}

func newInsightService(ctx context.Context, cfg *config.Config, summaries insight.SummaryProvider, log zerolog.Logger) (*insight.Service, error) {
	var gen insight.Generator
	if cfg.Insight.Enabled() {
		g, err := insight.NewGeminiGenerator(ctx, cfg.Insight.APIKey, cfg.Insight.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		gen = g
		log.Info().Str("model", cfg.Insight.Model).Msg("insights enabled")
	}
	return insight.New(summaries, gen, insightCacheSize)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(a.server.Shutdown(ctx), a.stores.Close())
}

func (a *App) Logger() zerolog.Logger {
	return a.log
}
