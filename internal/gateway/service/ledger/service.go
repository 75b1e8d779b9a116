package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/observability"
	"ecoledger/internal/gateway/repository/record"
	"ecoledger/internal/gateway/service/live"
	"ecoledger/internal/gateway/service/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultQuantity   = 1
	RecentEntryLimit  = 20
	WeeklyWindow      = 7 * 24 * time.Hour
	displayPrecision4 = 1e4
)

// Notifier receives an event for every successfully recorded scan.
type Notifier interface {
	Publish(ev live.Event) int
}

type ScanRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity *int   `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

type ScanResult struct {
	CO2Saved      float64          `json:"co2Saved"`
	TotalCO2Saved float64          `json:"totalCo2Saved"`
	Entry         entity.ScanEntry `json:"entry"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	CO2Saved float64 `json:"co2Saved"`
}

type Summary struct {
	UserID            entity.UserID      `json:"userId"`
	TotalCO2Saved     float64            `json:"totalCo2Saved"`
	WeeklyCO2Saved    float64            `json:"weeklyCo2"`
	CategoryBreakdown []CategoryTotal    `json:"pieChartData"`
	RecentEntries     []entity.ScanEntry `json:"recentEntries"`
	EntryCount        int                `json:"entryCount"`
}

type Service struct {
	store    record.Store
	table    *emission.Table
	notifier Notifier
	metrics  *observability.Metrics
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func New(store record.Store, table *emission.Table, opts ...Option) *Service {
	s := &Service{
		store: store,
		table: table,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table exposes the emission table the ledger prices scans with.
func (s *Service) Table() *emission.Table {
	return s.table
}

// RecordScan prices a scan, persists it and adds its CO2 to the user's total.
// The total is only touched once the entry insert has succeeded.
func (s *Service) RecordScan(ctx context.Context, req ScanRequest) (ScanResult, error) {
	rawCategory := req.Category
	req.UserID = strings.TrimSpace(req.UserID)
	req.Category = emission.Normalize(req.Category)
	if err := validation.Struct(req); err != nil {
		return ScanResult{}, err
	}

	factor, ok := s.table.Lookup(req.Category)
	if !ok {
		return ScanResult{}, fmt.Errorf("%w: %s", entity.ErrUnknownCategory, rawCategory)
	}
	quantity := DefaultQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	totalWeight := factor.AverageWeight * float64(quantity)
	co2Saved := totalWeight * factor.RecycleFactor
	userID := entity.NormalizeUserID(req.UserID)
	entry := entity.ScanEntry{
		ID:          s.newID(),
		UserID:      userID,
		Category:    factor.Category,
		Quantity:    quantity,
		TotalWeight: totalWeight,
		CO2Saved:    co2Saved,
		Timestamp:   s.now().UTC(),
	}

	id, err := s.store.InsertScanEntry(ctx, entry)
	if err != nil {
		return ScanResult{}, s.storeFailure("insert_scan_entry", err)
	}
	entry.ID = id

	acct, err := s.store.UpsertUserAccount(ctx, userID, co2Saved)
	if err != nil {
		return ScanResult{}, s.storeFailure("upsert_user_account", err)
	}

	s.metrics.ScanRecorded(entry.Category, co2Saved)
	if s.notifier != nil {
		s.notifier.Publish(live.Event{
			Type:          live.EventScan,
			UserID:        userID,
			Category:      entry.Category,
			CO2Saved:      round4(co2Saved),
			TotalCO2Saved: round4(acct.TotalCO2Saved),
			Timestamp:     entry.Timestamp,
		})
	}

	return ScanResult{
		CO2Saved:      round4(co2Saved),
		TotalCO2Saved: round4(acct.TotalCO2Saved),
		Entry:         roundEntry(entry),
	}, nil
}

// GetSummary aggregates a user's running total, last-week CO2, per-category
// totals and most recent entries.
func (s *Service) GetSummary(ctx context.Context, rawUserID string) (Summary, error) {
	userID := entity.NormalizeUserID(rawUserID)
	if userID.IsZero() {
		return Summary{}, entity.Invalid("userId is required")
	}

	acct, found, err := s.store.FindUserAccount(ctx, userID)
	if err != nil {
		return Summary{}, s.storeFailure("find_user_account", err)
	}
	if !found {
		return Summary{}, fmt.Errorf("%w: %s", entity.ErrUserNotFound, userID)
	}

	since := s.now().Add(-WeeklyWindow)
	var weekly, all, recent []entity.ScanEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if weekly, err = s.store.QueryScanEntries(gctx, userID, &since); err != nil {
			return s.storeFailure("query_weekly_entries", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if all, err = s.store.QueryScanEntries(gctx, userID, nil); err != nil {
			return s.storeFailure("query_scan_entries", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recent, err = s.store.QueryRecentScanEntries(gctx, userID, RecentEntryLimit); err != nil {
			return s.storeFailure("query_recent_entries", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	weeklyCO2 := 0.0
	for _, e := range weekly {
		weeklyCO2 += e.CO2Saved
	}

	recentOut := make([]entity.ScanEntry, 0, len(recent))
	for _, e := range recent {
		recentOut = append(recentOut, roundEntry(e))
	}

	return Summary{
		UserID:            userID,
		TotalCO2Saved:     round4(acct.TotalCO2Saved),
		WeeklyCO2Saved:    round4(weeklyCO2),
		CategoryBreakdown: breakdown(all),
		RecentEntries:     recentOut,
		EntryCount:        len(all),
	}, nil
}

// breakdown sums CO2 per category in order of first appearance.
func breakdown(entries []entity.ScanEntry) []CategoryTotal {
	out := make([]CategoryTotal, 0, 8)
	index := make(map[string]int, 8)
	for _, e := range entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].CO2Saved += e.CO2Saved
	}
	for i := range out {
		out[i].CO2Saved = round4(out[i].CO2Saved)
	}
	return out
}

func (s *Service) storeFailure(op string, err error) error {
	s.metrics.StoreError(op)
	return entity.StoreFailure(op, err)
}

func roundEntry(e entity.ScanEntry) entity.ScanEntry {
	e.TotalWeight = round4(e.TotalWeight)
	e.CO2Saved = round4(e.CO2Saved)
	return e
}

func round4(v float64) float64 {
	return math.Round(v*displayPrecision4) / displayPrecision4
}
