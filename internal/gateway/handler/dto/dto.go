// Package dto holds the JSON shapes shared by the REST and RPC transports and
// the CLI client.
package dto

import (
	"time"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/service/center"
	"ecoledger/internal/gateway/service/ledger"
)

type ScanRequest struct {
	UserID   string `json:"userId"`
	Category string `json:"category"`
	Quantity *int   `json:"quantity,omitempty"`
}

func (r ScanRequest) ToLedger() ledger.ScanRequest {
	return ledger.ScanRequest{UserID: r.UserID, Category: r.Category, Quantity: r.Quantity}
}

type Entry struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	TotalWeight float64   `json:"totalWeight"`
	CO2Saved    float64   `json:"co2Saved"`
	Timestamp   time.Time `json:"timestamp"`
}

func FromEntry(e entity.ScanEntry) Entry {
	return Entry{
		ID:          e.ID,
		Category:    e.Category,
		Quantity:    e.Quantity,
		TotalWeight: e.TotalWeight,
		CO2Saved:    e.CO2Saved,
		Timestamp:   e.Timestamp,
	}
}

type ScanResponse struct {
	Success       bool    `json:"success"`
	CO2Saved      float64 `json:"co2Saved"`
	TotalCO2Saved float64 `json:"totalCo2Saved"`
	Entry         Entry   `json:"entry"`
}

func FromScanResult(res ledger.ScanResult) ScanResponse {
	return ScanResponse{
		Success:       true,
		CO2Saved:      res.CO2Saved,
		TotalCO2Saved: res.TotalCO2Saved,
		Entry:         FromEntry(res.Entry),
	}
}

type SummaryRequest struct {
	UserID string `json:"userId"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	CO2Saved float64 `json:"co2Saved"`
}

type SummaryResponse struct {
	TotalCO2Saved float64         `json:"totalCo2Saved"`
	WeeklyCO2     float64         `json:"weeklyCo2"`
	PieChartData  []CategoryTotal `json:"pieChartData"`
	RecentEntries []Entry         `json:"recentEntries"`
}

func FromSummary(sum ledger.Summary) SummaryResponse {
	out := SummaryResponse{
		TotalCO2Saved: sum.TotalCO2Saved,
		WeeklyCO2:     sum.WeeklyCO2Saved,
		PieChartData:  make([]CategoryTotal, 0, len(sum.CategoryBreakdown)),
		RecentEntries: make([]Entry, 0, len(sum.RecentEntries)),
	}
	for _, c := range sum.CategoryBreakdown {
		out.PieChartData = append(out.PieChartData, CategoryTotal{Category: c.Category, CO2Saved: c.CO2Saved})
	}
	for _, e := range sum.RecentEntries {
		out.RecentEntries = append(out.RecentEntries, FromEntry(e))
	}
	return out
}

// NearestRequest uses pointers so a missing coordinate is distinguishable
// from the equator or the prime meridian.
type NearestRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Limit     *int     `json:"limit,omitempty"`
}

func (r NearestRequest) ToQuery() (center.NearestQuery, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return center.NearestQuery{}, entity.Invalid("latitude and longitude are required")
	}
	return center.NearestQuery{Latitude: *r.Latitude, Longitude: *r.Longitude, Limit: r.Limit}, nil
}

type NearestCenter struct {
	Name       string  `json:"name"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
}

type NearestResponse struct {
	Success        bool            `json:"success"`
	NearestCenters []NearestCenter `json:"nearestCenters"`
}

func FromRanked(ranked []center.RankedCenter) NearestResponse {
	out := NearestResponse{Success: true, NearestCenters: make([]NearestCenter, 0, len(ranked))}
	for _, c := range ranked {
		out.NearestCenters = append(out.NearestCenters, NearestCenter{
			Name:       c.Name,
			City:       c.City,
			Country:    c.Country,
			Latitude:   c.Latitude,
			Longitude:  c.Longitude,
			DistanceKm: c.DistanceKm,
		})
	}
	return out
}

type CategoriesResponse struct {
	Categories []entity.EmissionFactor `json:"categories"`
}

type ExportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type ExportListResponse struct {
	UserID  string   `json:"userId"`
	Exports []string `json:"exports"`
}

type InsightResponse struct {
	UserID  string `json:"userId"`
	Insight string `json:"insight"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse covers both error shapes: {error} for carbon routes and
// {success:false, message} for location routes.
type ErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
