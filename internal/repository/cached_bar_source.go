package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
)

const cacheDateLayout = "2006-01-02"

// CachedBarSource serves GetBars from a cache and falls back to the wrapped
// source on a miss. Cache failures never fail a read.
type CachedBarSource struct {
	next domrepo.BarSource
	c    cache.Service
	ttl  time.Duration
	l    *applogger.Logger
}

// NewCachedBarSource wraps next with c.
func NewCachedBarSource(next domrepo.BarSource, c cache.Service, ttl time.Duration, l *applogger.Logger) *CachedBarSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedBarSource{next: next, c: c, ttl: ttl, l: l}
}

// cachedBar is the JSON form of a bar; missing values are null since JSON has no NaN.
type cachedBar struct {
	Date   time.Time `json:"d"`
	Open   *float64  `json:"o"`
	High   *float64  `json:"h"`
	Low    *float64  `json:"l"`
	Close  *float64  `json:"c"`
	Volume *float64  `json:"v"`
}

func (s *CachedBarSource) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	key := barsCacheKey(symbol, from, to)

	var hit []cachedBar
	err := s.c.Get(ctx, key, &hit)
	switch {
	case err == nil:
		s.l.Debug("bars cache hit", applogger.String("key", key), applogger.Int("rows", len(hit)))
		return decodeBars(hit), nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.l.Warn("bars cache get failed", applogger.String("key", key), applogger.Error(err))
	}

	bars, err := s.next.GetBars(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if err := s.c.Set(ctx, key, encodeBars(bars), s.ttl); err != nil {
		s.l.Warn("bars cache set failed", applogger.String("key", key), applogger.Error(err))
	}
	return bars, nil
}

func barsCacheKey(symbol string, from, to time.Time) string {
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.UTC().Format(cacheDateLayout)
	}
	return cache.Key("bars", symbol, bound(from), bound(to))
}

func encodeBars(bars []models.Bar) []cachedBar {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{
			Date:   b.Date,
			Open:   finitePtr(b.Open),
			High:   finitePtr(b.High),
			Low:    finitePtr(b.Low),
			Close:  finitePtr(b.Close),
			Volume: finitePtr(b.Volume),
		}
	}
	return out
}

func decodeBars(in []cachedBar) []models.Bar {
	out := make([]models.Bar, len(in))
	for i, c := range in {
		out[i] = models.Bar{
			Date:   c.Date,
			Open:   valueOrNaN(c.Open),
			High:   valueOrNaN(c.High),
			Low:    valueOrNaN(c.Low),
			Close:  valueOrNaN(c.Close),
			Volume: valueOrNaN(c.Volume),
		}
	}
	return out
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func valueOrNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
