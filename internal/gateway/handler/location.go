package handler

import (
	"net/http"

	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/gateway/service/center"

	"github.com/rs/zerolog"
)

type LocationHandler struct {
	centers *center.Service
	log     zerolog.Logger
}

func NewLocationHandler(centers *center.Service, log zerolog.Logger) *LocationHandler {
	return &LocationHandler{centers: centers, log: log}
}

// Nearest handles POST /api/location/nearest.
func (h *LocationHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	var req dto.NearestRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeFailure(h.log, w, r, err)
		return
	}
	q, err := req.ToQuery()
	if err != nil {
		writeFailure(h.log, w, r, err)
		return
	}
	ranked, err := h.centers.FindNearest(r.Context(), q)
	if err != nil {
		writeFailure(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromRanked(ranked))
}
