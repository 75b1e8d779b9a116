package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"ecoledger/internal/gateway/entity"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const (
	scanPrefix   = "scan/"
	acctPrefix   = "acct/"
	centerPrefix = "center/"
	scanSeqKey   = "seq/scan"

	maxConflictRetries = 16
)

type BadgerConfig struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *zerolog.Logger
}

// BadgerStore keeps the ledger in an embedded badger database. Scan keys carry
// a zero-padded sequence so a prefix scan yields insertion order.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	now func() time.Time
}

type badgerLogger struct {
	log *zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}

func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{log: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	seq, err := db.GetSequence([]byte(scanSeqKey), 128)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open scan sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq, now: time.Now}, nil
}

func userPrefix(userID entity.UserID) []byte {
	return []byte(scanPrefix + url.PathEscape(userID.String()) + "/")
}

func scanKey(userID entity.UserID, seq uint64) []byte {
	return append(userPrefix(userID), []byte(fmt.Sprintf("%020d", seq))...)
}

func acctKey(userID entity.UserID) []byte {
	return []byte(acctPrefix + url.PathEscape(userID.String()))
}

func centerKey(idx int) []byte {
	return []byte(fmt.Sprintf("%s%08d", centerPrefix, idx))
}

func (s *BadgerStore) InsertScanEntry(ctx context.Context, e entity.ScanEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.ID == "" {
		return "", fmt.Errorf("entry id is required")
	}
	n, err := s.seq.Next()
	if err != nil {
		return "", fmt.Errorf("next scan sequence: %w", err)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(scanKey(e.UserID, n), raw)
	}); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (s *BadgerStore) FindUserAccount(ctx context.Context, userID entity.UserID) (entity.UserAccount, bool, error) {
	if err := ctx.Err(); err != nil {
		return entity.UserAccount{}, false, err
	}
	var (
		acct  entity.UserAccount
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(acctKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &acct)
		})
	})
	if err != nil {
		return entity.UserAccount{}, false, err
	}
	return acct, found, nil
}

func (s *BadgerStore) UpsertUserAccount(ctx context.Context, userID entity.UserID, addDelta float64) (entity.UserAccount, error) {
	var acct entity.UserAccount
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return entity.UserAccount{}, err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			key := acctKey(userID)
			acct = entity.UserAccount{UserID: userID, CreatedAt: s.now().UTC()}
			item, err := txn.Get(key)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &acct)
				}); err != nil {
					return err
				}
			}
			acct.TotalCO2Saved += addDelta
			raw, err := json.Marshal(acct)
			if err != nil {
				return err
			}
			return txn.Set(key, raw)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return entity.UserAccount{}, err
		}
		return acct, nil
	}
	return entity.UserAccount{}, fmt.Errorf("upsert account %s: %w after %d attempts", userID, badger.ErrConflict, maxConflictRetries)
}

func (s *BadgerStore) QueryScanEntries(ctx context.Context, userID entity.UserID, since *time.Time) ([]entity.ScanEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := userPrefix(userID)
	out := make([]entity.ScanEntry, 0, 32)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e entity.ScanEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			if since != nil && e.Timestamp.Before(*since) {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) QueryRecentScanEntries(ctx context.Context, userID entity.UserID, limit int) ([]entity.ScanEntry, error) {
	all, err := s.QueryScanEntries(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return mostRecent(all, limit), nil
}

func (s *BadgerStore) ListAllCenters(ctx context.Context) ([]entity.Center, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(centerPrefix)
	var out []entity.Center
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var c entity.Center
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			}); err != nil {
				return err
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) ReplaceCenters(ctx context.Context, centers []entity.Center) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefix := []byte(centerPrefix)
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for i, c := range centers {
			raw, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := txn.Set(centerKey(i), raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) ResetLedger(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DropPrefix([]byte(scanPrefix), []byte(acctPrefix))
}

func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	var errs []error
	if s.seq != nil {
		errs = append(errs, s.seq.Release())
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}
