package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/util"
)

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

// CSVBarSource reads daily bars for a single symbol from a CSV file with a
// Date,Open,High,Low,Close,Volume header. Extra columns are ignored, empty
// cells become NaN. The symbol argument of GetBars is not used.
type CSVBarSource struct {
	path string
	l    *applogger.Logger
}

// NewCSVBarSource creates a source reading path on every call.
func NewCSVBarSource(path string, l *applogger.Logger) *CSVBarSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CSVBarSource{path: path, l: l}
}

func (s *CSVBarSource) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	out := bars[:0]
	for _, b := range bars {
		if util.InRange(b.Date, from, to) {
			out = append(out, b)
		}
	}
	s.l.Info("csv bars loaded",
		applogger.String("path", s.path),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
	)
	return out, nil
}

// ReadBarsCSV parses bars from r and returns them sorted ascending by date.
// Rows with an unparseable date or number are rejected with the line number.
func ReadBarsCSV(r io.Reader) ([]models.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var bars []models.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		b, err := parseBar(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return idx, nil
}

func parseBar(rec []string, idx map[string]int) (models.Bar, error) {
	cell := func(name string) string {
		i := idx[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var b models.Bar
	if ds := cell("date"); ds != "" {
		t, ok := util.ParseTime(ds)
		if !ok {
			return b, fmt.Errorf("invalid date %q", ds)
		}
		b.Date = t
	}

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &b.Open},
		{"high", &b.High},
		{"low", &b.Low},
		{"close", &b.Close},
		{"volume", &b.Volume},
	}
	for _, f := range fields {
		v, err := parseCell(cell(f.name))
		if err != nil {
			return b, fmt.Errorf("column %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return b, nil
}

func parseCell(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if math.IsInf(v, 0) && (err == nil || errors.Is(err, strconv.ErrRange)) {
		// infinities and overflowing literals are treated as missing cells
		return math.NaN(), nil
	}
	return v, err
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
