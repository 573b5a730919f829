package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/regression"
)

// WriteText renders the evaluation summary, coefficients and, when corr is
// non-nil, the correlation matrix.
func WriteText(w io.Writer, r *models.ForecastReport, corr *regression.Correlation) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Forecast %s (%s)\n", r.Symbol, r.ID)
	fmt.Fprintf(&b, "Rows: raw=%d clean=%d dataset=%d train=%d test=%d\n",
		r.RawRows, r.CleanRows, r.DatasetRows, r.TrainSize, r.TestSize)
	if r.R2 != nil {
		fmt.Fprintf(&b, "R² Score: %.4f\n", *r.R2)
	} else {
		b.WriteString("R² Score: undefined\n")
	}
	fmt.Fprintf(&b, "Mean Squared Error: %.4f\n", r.MSE)
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warn)
	}

	b.WriteString("\nFeature Coefficients:\n")
	for _, c := range r.Coefficients {
		fmt.Fprintf(&b, "  %s: %.6f\n", c.Feature, c.Weight)
	}
	fmt.Fprintf(&b, "  (intercept): %.6f\n", r.Intercept)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if corr == nil {
		return nil
	}
	if _, err := io.WriteString(w, "\nFeature Correlation:\n"); err != nil {
		return err
	}
	return writeCorrelation(w, *corr)
}

func writeCorrelation(w io.Writer, c regression.Correlation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(c.Columns, "\t"))
	for i, name := range c.Columns {
		cells := make([]string, len(c.Columns))
		for j := range c.Columns {
			cells[j] = formatCorr(c.At(i, j))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", name, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
