package server

import (
	"net/http"
	"time"

	"ecoledger/internal/gateway/handler"
	"ecoledger/internal/gateway/handler/rpc"
	"ecoledger/internal/gateway/middleware"
	"ecoledger/internal/gateway/observability"

	"github.com/rs/zerolog"
)

type Handlers struct {
	Carbon      *handler.CarbonHandler
	Location    *handler.LocationHandler
	Live        *handler.LiveHandler
	CarbonRPC   *rpc.CarbonHandler
	LocationRPC *rpc.LocationHandler
}

type MuxConfig struct {
	StoreTimeout   time.Duration
	AllowedOrigins []string
	Metrics        *observability.Metrics
	Log            zerolog.Logger
}

func NewMux(h Handlers, cfg MuxConfig) http.Handler {
	mux := http.NewServeMux()
	bounded := middleware.StoreTimeout(cfg.StoreTimeout)

	// REST
	mux.Handle("POST /api/carbon/scan", bounded(http.HandlerFunc(h.Carbon.RecordScan)))
	mux.Handle("GET /api/carbon/summary/{userId}", bounded(http.HandlerFunc(h.Carbon.Summary)))
	mux.Handle("POST /api/carbon/summary/{userId}/export", bounded(http.HandlerFunc(h.Carbon.Export)))
	mux.Handle("GET /api/carbon/summary/{userId}/exports", bounded(http.HandlerFunc(h.Carbon.ListExports)))
	mux.Handle("GET /api/carbon/insight/{userId}", http.HandlerFunc(h.Carbon.Insight))
	mux.HandleFunc("GET /api/carbon/categories", h.Carbon.Categories)
	mux.Handle("POST /api/location/nearest", bounded(http.HandlerFunc(h.Location.Nearest)))

	// Streams
	mux.HandleFunc("GET /api/carbon/live/{userId}", h.Live.Stream)

	// RPC
	carbonPath, carbonRPC := rpc.NewCarbonServiceHandler(h.CarbonRPC)
	mux.Handle(carbonPath, bounded(carbonRPC))
	locationPath, locationRPC := rpc.NewLocationServiceHandler(h.LocationRPC)
	mux.Handle(locationPath, bounded(locationRPC))

	// Ops
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", cfg.Metrics.Handler())

	return middleware.RequestLog(cfg.Log, cfg.Metrics)(middleware.CORS(cfg.AllowedOrigins)(mux))
}
