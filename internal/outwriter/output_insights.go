package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/internal/parquet"
	"github.com/codiehq/codesight/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintInsightResults outputs per-file analysis outcomes, dispatching based on
// the output format configured.
func PrintInsightResults(outcomes []schema.FileOutcome, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := printInsightJSONResults(outcomes, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := printInsightCSVResults(outcomes, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := printInsightParquetResults(outcomes, cfg); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeInsightTable(outcomes, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// printInsightJSONResults handles opening the file and calling the JSON writer.
func printInsightJSONResults(outcomes []schema.FileOutcome, cfg *contract.Config) error {
	return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForInsights(w, outcomes)
	}, "Wrote JSON")
}

// printInsightCSVResults handles opening the file and calling the CSV writer.
func printInsightCSVResults(outcomes []schema.FileOutcome, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForInsights(csvWriter, outcomes, fmtFloat)
	}, "Wrote CSV")
}

// printInsightParquetResults writes outcomes as a Parquet file. A file path
// is required since Parquet is not a streaming text format.
func printInsightParquetResults(outcomes []schema.FileOutcome, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	rows := parquet.ConvertInsightRecords(outcomes)
	if err := parquet.WriteInsightsParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	return nil
}

// writeInsightTable generates and writes the human-readable table.
func writeInsightTable(outcomes []schema.FileOutcome, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Path", "Lang", "Risk", "Label", "Quality", "Patterns", "Outlier"}
	if cfg.Detail {
		headers = append(headers, "Slots", "Size")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for i, outcome := range outcomes {
		cells := formatInsightCells(outcome, fmtFloat, cfg.UseColors)
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncatePath(cells.Path, GetMaxTablePathWidth(cfg)), // File
			cells.Language,
			cells.Risk,
			cells.RiskLabel,
			cells.Quality,
			cells.Patterns,
			cells.Outlier,
		}
		if cfg.Detail {
			row = append(row, cells.Slots, formatSizeCell(outcome))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	summary := schema.Summarize(outcomes)
	if _, err := fmt.Fprintf(writer, "Analyzed %d files: %d failed, %d high risk, avg quality %s\n",
		summary.TotalFiles, summary.FailedFiles, summary.HighRiskFiles, fmtFloat(summary.AvgQuality)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Store backend: %s\n",
		duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// formatSizeCell renders the raw content size, marking truncated samples.
func formatSizeCell(outcome schema.FileOutcome) string {
	if outcome.Insight == nil {
		return "-"
	}
	size := strconv.Itoa(outcome.Insight.Meta.RawBytes)
	if outcome.Insight.Meta.Truncated {
		size += "*"
	}
	return size
}
