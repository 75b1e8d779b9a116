package rpc

import (
	"context"
	"net/http"

	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/gateway/service/ledger"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	CarbonServiceName = "ecoledger.v1.CarbonService"

	CarbonServiceRecordScanProcedure = "/" + CarbonServiceName + "/RecordScan"
	CarbonServiceGetSummaryProcedure = "/" + CarbonServiceName + "/GetSummary"
)

// CarbonHandler serves the ledger over connect.
type CarbonHandler struct {
	ledger *ledger.Service
	log    zerolog.Logger
}

func NewCarbonHandler(l *ledger.Service, log zerolog.Logger) *CarbonHandler {
	return &CarbonHandler{ledger: l, log: log}
}

func (h *CarbonHandler) RecordScan(ctx context.Context, req *connect.Request[dto.ScanRequest]) (*connect.Response[dto.ScanResponse], error) {
	res, err := h.ledger.RecordScan(ctx, req.Msg.ToLedger())
	if err != nil {
		return nil, toConnectError(h.log, CarbonServiceRecordScanProcedure, err)
	}
	out := dto.FromScanResult(res)
	return connect.NewResponse(&out), nil
}

func (h *CarbonHandler) GetSummary(ctx context.Context, req *connect.Request[dto.SummaryRequest]) (*connect.Response[dto.SummaryResponse], error) {
	sum, err := h.ledger.GetSummary(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(h.log, CarbonServiceGetSummaryProcedure, err)
	}
	out := dto.FromSummary(sum)
	return connect.NewResponse(&out), nil
}

// NewCarbonServiceHandler returns the path prefix and handler to mount on a mux.
func NewCarbonServiceHandler(h *CarbonHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{CodecOption()}, opts...)
	recordScan := connect.NewUnaryHandler(CarbonServiceRecordScanProcedure, h.RecordScan, opts...)
	getSummary := connect.NewUnaryHandler(CarbonServiceGetSummaryProcedure, h.GetSummary, opts...)
	return "/" + CarbonServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CarbonServiceRecordScanProcedure:
			recordScan.ServeHTTP(w, r)
		case CarbonServiceGetSummaryProcedure:
			getSummary.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
