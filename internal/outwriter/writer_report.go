package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/codiehq/codesight/schema"
)

// writeJSONReport writes the full project report in JSON format.
func writeJSONReport(w io.Writer, report schema.ProjectReport) error {
	return writeIndentedJSON(w, report)
}

// writeCSVReport writes the ranked hotspot listing in CSV format.
// Hotspots are the report's primary table; the rest of the report is
// scalar and available through JSON output.
func writeCSVReport(w io.Writer, rows []schema.HotspotRow, fmtFloat func(float64) string) error {
	header := []string{"rank", "path", "hotspot_score", "label"}
	return writeCSV(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.Path,
				fmtFloat(r.Score),
				r.Label,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
