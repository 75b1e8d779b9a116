package record

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecoledger/internal/gateway/entity"
)

type MemoryStore struct {
	mu       sync.RWMutex
	entries  []entity.ScanEntry
	byUser   map[entity.UserID][]int
	accounts map[entity.UserID]entity.UserAccount
	centers  []entity.Center
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:   make(map[entity.UserID][]int),
		accounts: make(map[entity.UserID]entity.UserAccount),
		now:      time.Now,
	}
}

func (s *MemoryStore) InsertScanEntry(ctx context.Context, e entity.ScanEntry) (string, error) {
	if s == nil {
		return "", fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.ID == "" {
		return "", fmt.Errorf("entry id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	s.byUser[e.UserID] = append(s.byUser[e.UserID], len(s.entries)-1)
	return e.ID, nil
}

func (s *MemoryStore) FindUserAccount(ctx context.Context, userID entity.UserID) (entity.UserAccount, bool, error) {
	if s == nil {
		return entity.UserAccount{}, false, fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return entity.UserAccount{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[userID]
	return acct, ok, nil
}

func (s *MemoryStore) UpsertUserAccount(ctx context.Context, userID entity.UserID, addDelta float64) (entity.UserAccount, error) {
	if s == nil {
		return entity.UserAccount{}, fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return entity.UserAccount{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		acct = entity.UserAccount{UserID: userID, CreatedAt: s.now().UTC()}
	}
	acct.TotalCO2Saved += addDelta
	s.accounts[userID] = acct
	return acct, nil
}

func (s *MemoryStore) QueryScanEntries(ctx context.Context, userID entity.UserID, since *time.Time) ([]entity.ScanEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byUser[userID]
	out := make([]entity.ScanEntry, 0, len(idx))
	for _, i := range idx {
		e := s.entries[i]
		if since != nil && e.Timestamp.Before(*since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *MemoryStore) QueryRecentScanEntries(ctx context.Context, userID entity.UserID, limit int) ([]entity.ScanEntry, error) {
	all, err := s.QueryScanEntries(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return mostRecent(all, limit), nil
}

func (s *MemoryStore) ListAllCenters(ctx context.Context) ([]entity.Center, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Center(nil), s.centers...), nil
}

func (s *MemoryStore) ReplaceCenters(ctx context.Context, centers []entity.Center) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centers = append([]entity.Center(nil), centers...)
	return nil
}

func (s *MemoryStore) ResetLedger(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byUser = make(map[entity.UserID][]int)
	s.accounts = make(map[entity.UserID]entity.UserAccount)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
