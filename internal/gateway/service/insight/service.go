// Package insight turns a user's recycling summary into a short motivational
// note produced by a text generator.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"ecoledger/internal/gateway/service/ledger"

	lru "github.com/hashicorp/golang-lru/v2"
)

const systemPrompt = "You are a friendly sustainability coach. Reply with two or three short sentences, no lists, no markdown."

// ErrUnavailable means no generator is configured.
var ErrUnavailable = errors.New("insight generator unavailable")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type SummaryProvider interface {
	GetSummary(ctx context.Context, userID string) (ledger.Summary, error)
}

type Insight struct {
	UserID string `json:"userId"`
	Text   string `json:"insight"`
	Cached bool   `json:"cached"`
}

type Service struct {
	summaries SummaryProvider
	gen       Generator
	cache     *lru.Cache[string, string]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New builds the service. gen may be nil, in which case Insight always
// returns ErrUnavailable.
func New(summaries SummaryProvider, gen Generator, cacheSize int) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{summaries: summaries, gen: gen, cache: cache}, nil
}

func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// Insight returns a note for userID. Notes are cached per summary state, so a
// new scan yields a fresh note while repeated reads reuse the old one.
func (s *Service) Insight(ctx context.Context, userID string) (Insight, error) {
	if !s.Enabled() {
		return Insight{}, ErrUnavailable
	}
	sum, err := s.summaries.GetSummary(ctx, userID)
	if err != nil {
		return Insight{}, err
	}

	key := cacheKey(sum)
	if txt, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return Insight{UserID: sum.UserID.String(), Text: txt, Cached: true}, nil
	}
	s.misses.Add(1)

	txt, err := s.gen.Generate(ctx, buildPrompt(sum))
	if err != nil {
		return Insight{}, fmt.Errorf("generate insight: %w", err)
	}
	s.cache.Add(key, txt)
	return Insight{UserID: sum.UserID.String(), Text: txt}, nil
}

// CacheStats reports hits and misses since start.
func (s *Service) CacheStats() (hits, misses uint64) {
	return s.hits.Load(), s.misses.Load()
}

func cacheKey(sum ledger.Summary) string {
	return fmt.Sprintf("%s|%d|%.4f", sum.UserID, sum.EntryCount, sum.TotalCO2Saved)
}

func buildPrompt(sum ledger.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A user has saved %.2f kg of CO2 by recycling in total", sum.TotalCO2Saved)
	fmt.Fprintf(&b, ", %.2f kg of it during the last seven days.\n", sum.WeeklyCO2Saved)
	if len(sum.CategoryBreakdown) > 0 {
		b.WriteString("Savings by category:\n")
		for _, c := range sum.CategoryBreakdown {
			fmt.Fprintf(&b, "- %s: %.2f kg\n", c.Category, c.CO2Saved)
		}
	}
	b.WriteString("Congratulate them and suggest one concrete way to recycle more next week.")
	return b.String()
}
