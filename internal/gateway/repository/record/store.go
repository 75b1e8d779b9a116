package record

import (
	"context"
	"sort"
	"time"

	"ecoledger/internal/gateway/entity"
)

// Store persists scan entries, per-user running totals and the center list.
//
// QueryScanEntries returns entries in insertion order. QueryRecentScanEntries
// returns at most limit entries ordered by timestamp descending, ties broken by
// reverse insertion order. UpsertUserAccount creates the account with a zero
// total when absent and adds addDelta atomically.
type Store interface {
	InsertScanEntry(ctx context.Context, entry entity.ScanEntry) (string, error)
	FindUserAccount(ctx context.Context, userID entity.UserID) (entity.UserAccount, bool, error)
	UpsertUserAccount(ctx context.Context, userID entity.UserID, addDelta float64) (entity.UserAccount, error)
	QueryScanEntries(ctx context.Context, userID entity.UserID, since *time.Time) ([]entity.ScanEntry, error)
	QueryRecentScanEntries(ctx context.Context, userID entity.UserID, limit int) ([]entity.ScanEntry, error)
	ListAllCenters(ctx context.Context) ([]entity.Center, error)

	ReplaceCenters(ctx context.Context, centers []entity.Center) error
	ResetLedger(ctx context.Context) error
	Close() error
}

// mostRecent orders insertion-ordered entries newest first and truncates to limit.
func mostRecent(entries []entity.ScanEntry, limit int) []entity.ScanEntry {
	out := make([]entity.ScanEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
