// Package export archives JSON snapshots of user summaries in the report store.
package export

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/repository/report"
	"ecoledger/internal/gateway/service/ledger"
	"ecoledger/internal/util/jsonutil"

	"github.com/google/uuid"
)

type SummaryProvider interface {
	GetSummary(ctx context.Context, userID string) (ledger.Summary, error)
}

type Result struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type document struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Summary    ledger.Summary `json:"summary"`
}

type Service struct {
	summaries SummaryProvider
	reports   report.Store
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func New(summaries SummaryProvider, reports report.Store, opts ...Option) *Service {
	s := &Service{
		summaries: summaries,
		reports:   reports,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export writes the current summary of userID under
// <userId>/summary-<unix>-<id>.json and returns its key and, when the backend
// supports it, a presigned download URL. The id suffix keeps exports made in
// the same second apart.
func (s *Service) Export(ctx context.Context, userID string) (Result, error) {
	sum, err := s.summaries.GetSummary(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	now := s.now().UTC()
	raw, err := jsonutil.MarshalNoEscapeIndent(document{ExportedAt: now, Summary: sum}, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode summary: %w", err)
	}

	owner := url.PathEscape(sum.UserID.String())
	name := fmt.Sprintf("summary-%d-%s.json", now.Unix(), s.newID())
	if err := s.reports.Put(ctx, owner, name, raw); err != nil {
		return Result{}, entity.StoreFailure("put_report", err)
	}
	link, err := s.reports.GetURL(ctx, owner, name)
	if err != nil {
		return Result{}, entity.StoreFailure("report_url", err)
	}
	return Result{Key: owner + "/" + name, URL: link}, nil
}

// List returns the names of archived exports for userID.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	id := entity.NormalizeUserID(userID)
	if id.IsZero() {
		return nil, entity.Invalid("userId is required")
	}
	names, err := s.reports.List(ctx, url.PathEscape(id.String()))
	if err != nil {
		return nil, entity.StoreFailure("list_reports", err)
	}
	return names, nil
}
