package center

import (
	"context"
	"sort"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/observability"
	"ecoledger/internal/gateway/repository/record"
	"ecoledger/internal/gateway/service/validation"
	"ecoledger/internal/geo"
)

const DefaultLimit = 5

type NearestQuery struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Limit     *int    `json:"limit,omitempty" validate:"omitempty,min=1"`
}

type RankedCenter struct {
	entity.Center
	DistanceKm float64 `json:"distance_km"`
}

// CenterLister is the read side of record.Store the ranker needs.
type CenterLister interface {
	ListAllCenters(ctx context.Context) ([]entity.Center, error)
}

var _ CenterLister = (record.Store)(nil)

type Service struct {
	centers CenterLister
	metrics *observability.Metrics
}

func New(centers CenterLister, metrics *observability.Metrics) *Service {
	return &Service{centers: centers, metrics: metrics}
}

// FindNearest ranks every known center by great-circle distance from the
// query point and returns the closest Limit of them.
func (s *Service) FindNearest(ctx context.Context, q NearestQuery) ([]RankedCenter, error) {
	origin := geo.Point{Latitude: q.Latitude, Longitude: q.Longitude}
	if err := origin.Validate(); err != nil {
		return nil, entity.Invalid("%v", err)
	}
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	limit := DefaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}

	candidates, err := s.centers.ListAllCenters(ctx)
	if err != nil {
		s.metrics.StoreError("list_all_centers")
		return nil, entity.StoreFailure("list_all_centers", err)
	}
	s.metrics.NearestQueried()
	return rank(origin, candidates, limit), nil
}

func rank(origin geo.Point, candidates []entity.Center, limit int) []RankedCenter {
	type scored struct {
		center entity.Center
		km     float64
	}
	all := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		all = append(all, scored{
			center: c,
			km:     geo.DistanceKm(origin, geo.Point{Latitude: c.Latitude, Longitude: c.Longitude}),
		})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].km < all[j].km })

	if limit > len(all) {
		limit = len(all)
	}
	out := make([]RankedCenter, 0, limit)
	for _, sc := range all[:limit] {
		out = append(out, RankedCenter{Center: sc.center, DistanceKm: geo.Round(sc.km, 2)})
	}
	return out
}
