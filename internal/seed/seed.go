// Package seed loads the campus drop-off centers and a handful of demo users
// into a record store.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"ecoledger/internal/emission"
	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/repository/record"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// spread is how far back sample entries are scattered.
const spread = 7 * 24 * time.Hour

func DefaultCenters() []entity.Center {
	return []entity.Center{
		{Name: "Near Hostel A", City: "Ludhiana", Country: "India", Latitude: 31.2266, Longitude: 75.6411},
		{Name: "Near TAN", City: "Ludhiana", Country: "India", Latitude: 31.2141, Longitude: 75.6590},
		{Name: "Near The COS", City: "Ludhiana", Country: "India", Latitude: 31.2459, Longitude: 75.6350},
		{Name: "Near The Hostel PG", City: "Ludhiana", Country: "India", Latitude: 31.2015, Longitude: 75.6180},
		{Name: "Near The Main Gate Parking", City: "Ludhiana", Country: "India", Latitude: 31.2893, Longitude: 75.6275},
	}
}

type SampleItem struct {
	Category string
	Quantity int
}

type SampleUser struct {
	UserID entity.UserID
	Items  []SampleItem
}

func SampleUsers() []SampleUser {
	return []SampleUser{
		{UserID: "user001", Items: []SampleItem{
			{"plastic", 5}, {"aluminum", 10}, {"paper", 20}, {"glass", 3}, {"cardboard", 8},
		}},
		{UserID: "user002", Items: []SampleItem{
			{"metal", 4}, {"plastic", 15}, {"battery", 6}, {"clothes", 2},
		}},
		{UserID: "user003", Items: []SampleItem{
			{"biological", 10}, {"paper", 30}, {"cardboard", 12},
		}},
		{UserID: "user004", Items: []SampleItem{
			{"aluminum", 25}, {"metal", 8}, {"plastic", 20}, {"glass", 10},
		}},
		{UserID: "user005", Items: []SampleItem{
			{"shoes", 3}, {"clothes", 4}, {"plastic", 8},
		}},
	}
}

// Report summarises one SeedUsers run.
type Report struct {
	Users   int
	Entries int
	Totals  map[entity.UserID]float64
}

type Seeder struct {
	store record.Store
	table *emission.Table
	log   zerolog.Logger
	now   func() time.Time
	rng   *rand.Rand
}

func New(store record.Store, table *emission.Table, log zerolog.Logger) *Seeder {
	return &Seeder{
		store: store,
		table: table,
		log:   log,
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(2024, 7)),
	}
}

// SeedCenters replaces every stored center with DefaultCenters.
func (s *Seeder) SeedCenters(ctx context.Context) (int, error) {
	centers := DefaultCenters()
	if err := s.store.ReplaceCenters(ctx, centers); err != nil {
		return 0, entity.StoreFailure("replace_centers", err)
	}
	s.log.Info().Int("centers", len(centers)).Msg("seeded centers")
	return len(centers), nil
}

// SeedUsers inserts SampleUsers. Each entry is priced with the emission table
// and stamped somewhere in the last week; account totals grow through the
// same add-delta path scans use. With reset the ledger is cleared first.
func (s *Seeder) SeedUsers(ctx context.Context, reset bool) (Report, error) {
	if reset {
		if err := s.store.ResetLedger(ctx); err != nil {
			return Report{}, entity.StoreFailure("reset_ledger", err)
		}
		s.log.Info().Msg("cleared existing ledger")
	}

	now := s.now().UTC()
	rep := Report{Totals: make(map[entity.UserID]float64)}
	for _, u := range SampleUsers() {
		for _, item := range u.Items {
			factor, ok := s.table.Lookup(item.Category)
			if !ok {
				return rep, fmt.Errorf("%w: %s", entity.ErrUnknownCategory, item.Category)
			}
			weight := factor.AverageWeight * float64(item.Quantity)
			co2 := weight * factor.RecycleFactor
			entry := entity.ScanEntry{
				ID:          uuid.NewString(),
				UserID:      u.UserID,
				Category:    factor.Category,
				Quantity:    item.Quantity,
				TotalWeight: weight,
				CO2Saved:    co2,
				Timestamp:   now.Add(-time.Duration(s.rng.Int64N(int64(spread)))),
			}
			if _, err := s.store.InsertScanEntry(ctx, entry); err != nil {
				return rep, entity.StoreFailure("insert_scan_entry", err)
			}
			acct, err := s.store.UpsertUserAccount(ctx, u.UserID, co2)
			if err != nil {
				return rep, entity.StoreFailure("upsert_user_account", err)
			}
			rep.Entries++
			rep.Totals[u.UserID] = acct.TotalCO2Saved
		}
		rep.Users++
		s.log.Info().
			Str("user", u.UserID.String()).
			Int("entries", len(u.Items)).
			Float64("total_co2_saved", rep.Totals[u.UserID]).
			Msg("seeded user")
	}
	return rep, nil
}
