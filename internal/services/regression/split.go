package regression

import (
	"fmt"
	"math"

	"StockCast/internal/domain/models"
)

// DefaultTestFraction is the share of the most recent rows held out for testing.
const DefaultTestFraction = 0.2

// TrainSize returns ceil((1-testFraction)*n), guarding against float noise
// such as 0.8*10 evaluating to 8.000000000000002.
func TrainSize(n int, testFraction float64) int {
	raw := float64(n) * (1 - testFraction)
	size := int(math.Ceil(raw - 1e-9))
	if size < 0 {
		return 0
	}
	if size > n {
		return n
	}
	return size
}

// ChronologicalSplit partitions ds into a train prefix and a test suffix
// without shuffling.
func ChronologicalSplit(ds models.Dataset, testFraction float64) (models.Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return models.Split{}, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}
	n := len(ds)
	if n < MinDatasetRows {
		return models.Split{}, &InsufficientDataError{Stage: "split", Got: n, Need: MinDatasetRows}
	}
	k := TrainSize(n, testFraction)
	if k == 0 || k == n {
		return models.Split{}, &InsufficientDataError{Stage: "split", Got: n, Need: minRowsFor(testFraction)}
	}
	return models.Split{Train: ds[:k:k], Test: ds[k:]}, nil
}

// minRowsFor is the smallest n with a non-empty train and test side.
func minRowsFor(testFraction float64) int {
	for n := MinDatasetRows; ; n++ {
		if k := TrainSize(n, testFraction); k > 0 && k < n {
			return n
		}
	}
}
