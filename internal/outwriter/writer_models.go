package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// writeJSONModels writes the model records in JSON format.
func writeJSONModels(w io.Writer, records []schema.ModelRecord) error {
	return writeIndentedJSON(w, records)
}

// writeCSVModels writes the model records in CSV format.
func writeCSVModels(w io.Writer, records []schema.ModelRecord, fmtFloat func(float64) string) error {
	header := []string{"model", "version", "accuracy", "status", "trained_at"}
	return writeCSV(w, header, func(csvWriter *csv.Writer) error {
		for _, rec := range records {
			record := []string{
				string(rec.Name),
				fmt.Sprintf("%d", rec.Version),
				fmtFloat(rec.Accuracy),
				string(rec.Status),
				rec.TrainedAt.Format(contract.DateTimeFormat),
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
