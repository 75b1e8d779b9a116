package entity

import "time"

// EmissionFactor converts a recycled item count into kilograms and CO2 saved.
type EmissionFactor struct {
	Category      string  `json:"category" yaml:"-"`
	AverageWeight float64 `json:"averageWeight" yaml:"avg_weight"`
	RecycleFactor float64 `json:"recycleFactor" yaml:"ef_recycle"`
}

// ScanEntry is one immutable recycling record.
type ScanEntry struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	TotalWeight float64   `json:"totalWeight"`
	CO2Saved    float64   `json:"co2Saved"`
	Timestamp   time.Time `json:"timestamp"`
}
