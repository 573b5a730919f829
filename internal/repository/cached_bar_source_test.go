package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
	"StockCast/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	bars  []models.Bar
	err   error
	calls int
}

func (s *countingSource) GetBars(_ context.Context, _ string, _, _ time.Time) ([]models.Bar, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.bars, nil
}

func TestCachedBarSourceServesSecondReadFromCache(t *testing.T) {
	src := &countingSource{bars: []models.Bar{
		{Date: day(2), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Date: day(3), Open: 2, High: math.NaN(), Low: 1, Close: 2.5, Volume: 11},
	}}
	cached := NewCachedBarSource(src, cache.NewMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	first, err := cached.GetBars(ctx, "GS", time.Time{}, day(10))
	require.NoError(t, err)
	second, err := cached.GetBars(ctx, "GS", time.Time{}, day(10))
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second, 2)
	assert.True(t, first[0].Equal(second[0]))
	assert.True(t, second[1].Equal(first[1]), "NaN must survive the cache")
	assert.True(t, math.IsNaN(second[1].High))
}

func TestCachedBarSourceHitAndMissCleanAlike(t *testing.T) {
	var bars []models.Bar
	for i := 1; i <= 20; i++ {
		c := 100 + float64(i)
		bars = append(bars, models.Bar{Date: day(i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000 + float64(i)})
	}
	bars[7].Close = math.Inf(1)
	bars[12].Volume = math.Inf(-1)

	src := &countingSource{bars: bars}
	cached := NewCachedBarSource(src, cache.NewMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	miss, err := cached.GetBars(ctx, "GS", time.Time{}, day(30))
	require.NoError(t, err)
	hit, err := cached.GetBars(ctx, "GS", time.Time{}, day(30))
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	cleanMiss, cleanHit := features.Clean(miss), features.Clean(hit)
	require.Len(t, cleanMiss, 18)
	require.Len(t, cleanHit, len(cleanMiss))
	for i := range cleanMiss {
		assert.True(t, cleanMiss[i].Equal(cleanHit[i]), "row %d", i)
	}
}

func TestCachedBarSourceKeysByRange(t *testing.T) {
	src := &countingSource{bars: []models.Bar{{Date: day(2), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}}}
	cached := NewCachedBarSource(src, cache.NewMemoryCache(), time.Minute, nil)
	ctx := context.Background()

	_, err := cached.GetBars(ctx, "GS", day(1), day(5))
	require.NoError(t, err)
	_, err = cached.GetBars(ctx, "GS", day(1), day(6))
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedBarSourcePropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	cached := NewCachedBarSource(&countingSource{err: boom}, cache.NewMemoryCache(), time.Minute, nil)
	_, err := cached.GetBars(context.Background(), "GS", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, boom)
}

func TestBarsCacheKey(t *testing.T) {
	assert.Equal(t, "bars:GS:*:2024-01-05", barsCacheKey("GS", time.Time{}, day(5)))
}
