package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"StockCast/internal/domain/models"
)

const csvDateLayout = "2006-01-02"

// WritePredictionsCSV writes FeatureDate,Actual,Predicted rows in test order.
// FeatureDate is the day whose features produced the estimate; Actual is the
// close of the following trading day.
func WritePredictionsCSV(w io.Writer, preds []models.Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"FeatureDate", "Actual", "Predicted"}); err != nil {
		return err
	}
	for _, p := range preds {
		rec := []string{
			p.Date.Format(csvDateLayout),
			strconv.FormatFloat(p.Actual, 'f', -1, 64),
			strconv.FormatFloat(p.Predicted, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePredictionsFile writes the predictions CSV to path, replacing it.
func WritePredictionsFile(path string, preds []models.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePredictionsCSV(f, preds); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
