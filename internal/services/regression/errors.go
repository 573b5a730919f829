package regression

import "fmt"

// MinDatasetRows is the floor below which Split rejects a dataset outright.
// Whether a larger dataset leaves a row on both sides depends on the test
// fraction; at 0.2 the smallest such dataset has 5 rows.
const MinDatasetRows = 2

// InsufficientDataError reports that a stage did not have enough rows to
// proceed. It is never masked; callers check it with errors.As.
type InsufficientDataError struct {
	Stage string
	Got   int
	Need  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: got %d rows, need at least %d", e.Stage, e.Got, e.Need)
}

// DegenerateMetricWarning flags a metric that could not be computed.
// It is attached to the evaluation rather than returned as an error.
type DegenerateMetricWarning struct {
	Metric string
	Reason string
}

func (w DegenerateMetricWarning) String() string {
	return fmt.Sprintf("%s undefined: %s", w.Metric, w.Reason)
}
