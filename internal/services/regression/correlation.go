package regression

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// Correlation is a labelled Pearson correlation matrix. Entries involving a
// constant column are NaN.
type Correlation struct {
	Columns []string
	Values  [][]float64
}

// At returns the correlation between columns i and j.
func (c Correlation) At(i, j int) float64 { return c.Values[i][j] }

// CorrelationMatrix computes pairwise correlations of the named columns.
func CorrelationMatrix(ds models.Dataset, columns []string) (Correlation, error) {
	out := Correlation{Columns: append([]string(nil), columns...)}
	if len(ds) < 2 || len(columns) == 0 {
		return out, &InsufficientDataError{Stage: "correlation", Got: len(ds), Need: 2}
	}

	data := mat.NewDense(len(ds), len(columns), nil)
	for j, name := range columns {
		vals, err := ds.Column(name)
		if err != nil {
			return out, err
		}
		data.SetCol(j, vals)
	}

	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, data, nil)
	out.Values = make([][]float64, len(columns))
	for i := range columns {
		out.Values[i] = make([]float64, len(columns))
		for j := range columns {
			out.Values[i][j] = sym.At(i, j)
		}
	}
	return out, nil
}
