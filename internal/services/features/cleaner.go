package features

import "StockCast/internal/domain/models"

// CleanStats counts what Clean removed.
type CleanStats struct {
	Input      int
	Duplicates int
	Conflicts  int
	Incomplete int
	Output     int
}

// Clean removes incomplete bars and duplicated dates, keeping the first
// occurrence and the relative order of the survivors.
func Clean(bars []models.Bar) []models.Bar {
	out, _ := CleanWithStats(bars)
	return out
}

// CleanWithStats is Clean plus a breakdown of the removed rows.
// A later bar with the same date as a kept one counts as a duplicate when
// it is identical and as a conflict otherwise; both are dropped.
func CleanWithStats(bars []models.Bar) ([]models.Bar, CleanStats) {
	st := CleanStats{Input: len(bars)}
	out := make([]models.Bar, 0, len(bars))
	seen := make(map[int64]int, len(bars))
	for _, b := range bars {
		if !b.Complete() {
			st.Incomplete++
			continue
		}
		key := b.Date.UnixNano()
		if idx, ok := seen[key]; ok {
			if out[idx].Equal(b) {
				st.Duplicates++
			} else {
				st.Conflicts++
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, b)
	}
	st.Output = len(out)
	return out, st
}
