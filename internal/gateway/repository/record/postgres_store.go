package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ecoledger/internal/gateway/entity"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var entryColumns = []string{"id", "user_id", "category", "quantity", "total_weight", "co2_saved", "recorded_at"}

type PostgresStore struct {
	db         *sql.DB
	now        func() time.Time
	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres opens dsn with the pgx driver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS scan_entries (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    category TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity >= 1),
    total_weight DOUBLE PRECISION NOT NULL,
    co2_saved DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_scan_entries_user_recorded ON scan_entries (user_id, recorded_at);

CREATE TABLE IF NOT EXISTS user_accounts (
    user_id TEXT PRIMARY KEY,
    total_co2_saved DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS centers (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    city TEXT NOT NULL DEFAULT '',
    country TEXT NOT NULL DEFAULT '',
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL
);
`)
	})
	return s.schemaErr
}

func insertEntryQuery(e entity.ScanEntry) (string, []any) {
	return entsql.Dialect(dialect.Postgres).
		Insert("scan_entries").
		Columns(entryColumns...).
		Values(e.ID, e.UserID.String(), e.Category, e.Quantity, e.TotalWeight, e.CO2Saved, e.Timestamp.UTC()).
		Query()
}

func entriesQuery(userID entity.UserID, since *time.Time) (string, []any) {
	sel := entsql.Dialect(dialect.Postgres).
		Select(entryColumns...).
		From(entsql.Table("scan_entries")).
		Where(entsql.EQ("user_id", userID.String()))
	if since != nil {
		sel = sel.Where(entsql.GTE("recorded_at", since.UTC()))
	}
	return sel.OrderBy("seq").Query()
}

func recentEntriesQuery(userID entity.UserID, limit int) (string, []any) {
	return entsql.Dialect(dialect.Postgres).
		Select(entryColumns...).
		From(entsql.Table("scan_entries")).
		Where(entsql.EQ("user_id", userID.String())).
		OrderExpr(entsql.Expr("recorded_at DESC, seq DESC")).
		Limit(limit).
		Query()
}

func centersQuery() (string, []any) {
	return entsql.Dialect(dialect.Postgres).
		Select("name", "city", "country", "latitude", "longitude").
		From(entsql.Table("centers")).
		OrderBy("id").
		Query()
}

func insertCentersQuery(centers []entity.Center) (string, []any) {
	ins := entsql.Dialect(dialect.Postgres).
		Insert("centers").
		Columns("name", "city", "country", "latitude", "longitude")
	for _, c := range centers {
		ins = ins.Values(c.Name, c.City, c.Country, c.Latitude, c.Longitude)
	}
	return ins.Query()
}

const upsertAccountSQL = `
INSERT INTO user_accounts (user_id, total_co2_saved, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id)
DO UPDATE SET total_co2_saved = user_accounts.total_co2_saved + EXCLUDED.total_co2_saved
RETURNING user_id, total_co2_saved, created_at`

func (s *PostgresStore) InsertScanEntry(ctx context.Context, e entity.ScanEntry) (string, error) {
	if err := s.ensureSchema(); err != nil {
		return "", err
	}
	if e.ID == "" {
		return "", fmt.Errorf("entry id is required")
	}
	q, args := insertEntryQuery(e)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (s *PostgresStore) FindUserAccount(ctx context.Context, userID entity.UserID) (entity.UserAccount, bool, error) {
	if err := s.ensureSchema(); err != nil {
		return entity.UserAccount{}, false, err
	}
	var (
		acct entity.UserAccount
		uid  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, total_co2_saved, created_at FROM user_accounts WHERE user_id = $1`,
		userID.String(),
	).Scan(&uid, &acct.TotalCO2Saved, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.UserAccount{}, false, nil
	}
	if err != nil {
		return entity.UserAccount{}, false, err
	}
	acct.UserID = entity.UserID(uid)
	return acct, true, nil
}

func (s *PostgresStore) UpsertUserAccount(ctx context.Context, userID entity.UserID, addDelta float64) (entity.UserAccount, error) {
	if err := s.ensureSchema(); err != nil {
		return entity.UserAccount{}, err
	}
	var (
		acct entity.UserAccount
		uid  string
	)
	err := s.db.QueryRowContext(ctx, upsertAccountSQL, userID.String(), addDelta, s.now().UTC()).
		Scan(&uid, &acct.TotalCO2Saved, &acct.CreatedAt)
	if err != nil {
		return entity.UserAccount{}, err
	}
	acct.UserID = entity.UserID(uid)
	return acct, nil
}

func (s *PostgresStore) QueryScanEntries(ctx context.Context, userID entity.UserID, since *time.Time) ([]entity.ScanEntry, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	q, args := entriesQuery(userID, since)
	return s.queryEntries(ctx, q, args)
}

func (s *PostgresStore) QueryRecentScanEntries(ctx context.Context, userID entity.UserID, limit int) ([]entity.ScanEntry, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []entity.ScanEntry{}, nil
	}
	q, args := recentEntriesQuery(userID, limit)
	return s.queryEntries(ctx, q, args)
}

func (s *PostgresStore) queryEntries(ctx context.Context, q string, args []any) ([]entity.ScanEntry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.ScanEntry, 0, 32)
	for rows.Next() {
		var (
			e   entity.ScanEntry
			uid string
		)
		if err := rows.Scan(&e.ID, &uid, &e.Category, &e.Quantity, &e.TotalWeight, &e.CO2Saved, &e.Timestamp); err != nil {
			return nil, err
		}
		e.UserID = entity.UserID(uid)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ListAllCenters(ctx context.Context) ([]entity.Center, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	q, args := centersQuery()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Center
	for rows.Next() {
		var c entity.Center
		if err := rows.Scan(&c.Name, &c.City, &c.Country, &c.Latitude, &c.Longitude); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ReplaceCenters(ctx context.Context, centers []entity.Center) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `TRUNCATE centers RESTART IDENTITY`); err != nil {
		return err
	}
	if len(centers) > 0 {
		q, args := insertCentersQuery(centers)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ResetLedger(ctx context.Context) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `TRUNCATE scan_entries, user_accounts RESTART IDENTITY`)
	return err
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
