package handler

import (
	"errors"
	"net/http"

	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/gateway/service/export"
	"ecoledger/internal/gateway/service/insight"
	"ecoledger/internal/gateway/service/ledger"

	"github.com/rs/zerolog"
)

type CarbonHandler struct {
	ledger   *ledger.Service
	exports  *export.Service
	insights *insight.Service
	log      zerolog.Logger
}

func NewCarbonHandler(l *ledger.Service, exports *export.Service, insights *insight.Service, log zerolog.Logger) *CarbonHandler {
	return &CarbonHandler{ledger: l, exports: exports, insights: insights, log: log}
}

// RecordScan handles POST /api/carbon/scan.
func (h *CarbonHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	var req dto.ScanRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	res, err := h.ledger.RecordScan(r.Context(), req.ToLedger())
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromScanResult(res))
}

// Summary handles GET /api/carbon/summary/{userId}.
func (h *CarbonHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.ledger.GetSummary(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromSummary(sum))
}

func (h *CarbonHandler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.CategoriesResponse{Categories: h.ledger.Table().Factors()})
}

// Export handles POST /api/carbon/summary/{userId}/export.
func (h *CarbonHandler) Export(w http.ResponseWriter, r *http.Request) {
	res, err := h.exports.Export(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ExportResponse{Key: res.Key, URL: res.URL})
}

func (h *CarbonHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	names, err := h.exports.List(r.Context(), userID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, dto.ExportListResponse{UserID: userID, Exports: names})
}

// Insight handles GET /api/carbon/insight/{userId}.
func (h *CarbonHandler) Insight(w http.ResponseWriter, r *http.Request) {
	if !h.insights.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Insights are not configured"})
		return
	}
	out, err := h.insights.Insight(r.Context(), r.PathValue("userId"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dto.InsightResponse{UserID: out.UserID, Insight: out.Text})
	case errors.Is(err, insight.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Insights are not configured"})
	default:
		writeError(h.log, w, r, err)
	}
}
