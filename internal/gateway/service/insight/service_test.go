package insight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/service/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaries struct {
	sum ledger.Summary
	err error
}

func (f *fakeSummaries) GetSummary(context.Context, string) (ledger.Summary, error) {
	return f.sum, f.err
}

type fakeGenerator struct {
	calls   int
	prompts []string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("note %d", g.calls), nil
}

func summary(count int, total float64) ledger.Summary {
	return ledger.Summary{
		UserID:         "u1",
		TotalCO2Saved:  total,
		WeeklyCO2Saved: total / 2,
		EntryCount:     count,
		CategoryBreakdown: []ledger.CategoryTotal{
			{Category: "plastic", CO2Saved: total},
		},
	}
}

func TestInsightCachesPerSummaryState(t *testing.T) {
	sums := &fakeSummaries{sum: summary(3, 1.5)}
	gen := &fakeGenerator{}
	svc, err := New(sums, gen, 8)
	require.NoError(t, err)

	first, err := svc.Insight(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "note 1", first.Text)
	assert.False(t, first.Cached)

	second, err := svc.Insight(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "note 1", second.Text)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, gen.calls)

	sums.sum = summary(4, 2.025)
	third, err := svc.Insight(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "note 2", third.Text)

	hits, misses := svc.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
	assert.Contains(t, gen.prompts[1], "2.02 kg of CO2")
	assert.Contains(t, gen.prompts[1], "- plastic:")
}

func TestInsightWithoutGenerator(t *testing.T) {
	svc, err := New(&fakeSummaries{}, nil, 0)
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	_, err = svc.Insight(context.Background(), "u1")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestInsightPropagatesErrors(t *testing.T) {
	svc, err := New(&fakeSummaries{err: entity.ErrUserNotFound}, &fakeGenerator{}, 4)
	require.NoError(t, err)
	_, err = svc.Insight(context.Background(), "ghost")
	assert.True(t, errors.Is(err, entity.ErrUserNotFound))

	gen := &fakeGenerator{err: fmt.Errorf("quota exceeded")}
	svc, err = New(&fakeSummaries{sum: summary(1, 1)}, gen, 4)
	require.NoError(t, err)
	_, err = svc.Insight(context.Background(), "u1")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), " ", "")
	assert.Error(t, err)
}
