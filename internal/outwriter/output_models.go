package outwriter

import (
	"fmt"
	"io"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintModelRecords outputs registry model records, dispatching based on the
// output format configured.
func PrintModelRecords(records []schema.ModelRecord, cfg *contract.Config) error {
	fmtFloat := floatFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONModels(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVModels(w, records, fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeModelTable(records, cfg, fmtFloat, w)
		}, "Wrote table")
	}
}

// writeModelTable generates and writes the human-readable model table.
func writeModelTable(records []schema.ModelRecord, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(writer, "No models loaded. Run train to produce a generation.")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Model", "Version", "Accuracy", "Status", "Trained"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, rec := range records {
		data = append(data, []string{
			string(rec.Name),
			fmt.Sprintf("v%d", rec.Version),
			fmtFloat(rec.Accuracy),
			string(rec.Status),
			rec.TrainedAt.Format(contract.DateTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
