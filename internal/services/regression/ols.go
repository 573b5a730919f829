package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StockCast/internal/domain/models"
)

// rcond is the relative singular value cutoff below which a direction of
// the design matrix is treated as null.
const rcond = 1e-12

// FitOLS fits y ≈ X·w + b by ordinary least squares. The columns are
// centred on their means so the intercept is unpenalised, then the
// minimum-norm solution is taken through a thin SVD. Constant or
// collinear features therefore get weight zero instead of failing.
func FitOLS(x [][]float64, y []float64, features []string) (*models.Model, error) {
	n := len(x)
	if n == 0 {
		return nil, &InsufficientDataError{Stage: "fit", Got: 0, Need: 1}
	}
	if len(y) != n {
		return nil, fmt.Errorf("%w: %d rows, %d targets", models.ErrDimensionMismatch, n, len(y))
	}
	p := len(features)
	for i, row := range x {
		if len(row) != p {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", models.ErrDimensionMismatch, i, len(row), p)
		}
	}

	yMean := stat.Mean(y, nil)
	if p == 0 {
		return models.NewModel(features, nil, yMean)
	}

	xMeans := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		xMeans[j] = stat.Mean(col, nil)
	}

	a := mat.NewDense(n, p, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range x {
		for j, v := range row {
			a.Set(i, j, v-xMeans[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	w, err := minNormSolve(a, b)
	if err != nil {
		return nil, err
	}

	intercept := yMean
	for j := 0; j < p; j++ {
		intercept -= w[j] * xMeans[j]
	}
	return models.NewModel(features, w, intercept)
}

// minNormSolve returns argmin ||w|| over argmin ||a·w - b||.
func minNormSolve(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	_, p := a.Dims()
	w := make([]float64, p)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("ols: svd factorization failed")
	}
	s := svd.Values(nil)
	if len(s) == 0 || s[0] == 0 {
		return w, nil
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	// w = V · diag(1/s) · Uᵀ · b over the retained singular values
	var utb mat.VecDense
	utb.MulVec(u.T(), b)
	cutoff := rcond * s[0]
	for k, sk := range s {
		if sk <= cutoff {
			continue
		}
		c := utb.AtVec(k) / sk
		for j := 0; j < p; j++ {
			w[j] += v.At(j, k) * c
		}
	}
	return w, nil
}
