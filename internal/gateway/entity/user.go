package entity

import (
	"strings"
	"time"
)

// UserID identifies the owner of scans and a running total. It is opaque;
// the only normalization applied is trimming surrounding whitespace.
type UserID string

func NormalizeUserID(raw string) UserID {
	return UserID(strings.TrimSpace(raw))
}

func (id UserID) String() string {
	return strings.TrimSpace(string(id))
}

func (id UserID) IsZero() bool {
	return id.String() == ""
}

// UserAccount holds the running CO2 total of one user. TotalCO2Saved is only
// ever changed by atomically adding the CO2Saved of a newly persisted entry.
type UserAccount struct {
	UserID        UserID    `json:"userId"`
	TotalCO2Saved float64   `json:"totalCo2Saved"`
	CreatedAt     time.Time `json:"createdAt"`
}
