package rpc

import (
	"context"
	"net/http"

	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/gateway/service/center"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	LocationServiceName = "ecoledger.v1.LocationService"

	LocationServiceFindNearestProcedure = "/" + LocationServiceName + "/FindNearest"
)

type LocationHandler struct {
	centers *center.Service
	log     zerolog.Logger
}

func NewLocationHandler(centers *center.Service, log zerolog.Logger) *LocationHandler {
	return &LocationHandler{centers: centers, log: log}
}

func (h *LocationHandler) FindNearest(ctx context.Context, req *connect.Request[dto.NearestRequest]) (*connect.Response[dto.NearestResponse], error) {
	q, err := req.Msg.ToQuery()
	if err != nil {
		return nil, toConnectError(h.log, LocationServiceFindNearestProcedure, err)
	}
	ranked, err := h.centers.FindNearest(ctx, q)
	if err != nil {
		return nil, toConnectError(h.log, LocationServiceFindNearestProcedure, err)
	}
	out := dto.FromRanked(ranked)
	return connect.NewResponse(&out), nil
}

func NewLocationServiceHandler(h *LocationHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{CodecOption()}, opts...)
	findNearest := connect.NewUnaryHandler(LocationServiceFindNearestProcedure, h.FindNearest, opts...)
	return "/" + LocationServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LocationServiceFindNearestProcedure:
			findNearest.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
