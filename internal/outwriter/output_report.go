package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintProjectReport outputs the project report, dispatching based on the
// output format configured.
func PrintProjectReport(report schema.ProjectReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := floatFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONReport(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVReport(w, rankedHotspotRows(report, cfg), fmtFloat)
		}, "Wrote CSV")
	default:
		// Default to human-readable report
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(report, cfg, fmtFloat, duration, w)
		}, "Wrote report")
	}
}

// rankedHotspotRows ranks report hotspots and applies the configured result limit.
func rankedHotspotRows(report schema.ProjectReport, cfg *contract.Config) []schema.HotspotRow {
	rows := schema.RankHotspots(report.Hotspots)
	if cfg.ResultLimit > 0 && len(rows) > cfg.ResultLimit {
		rows = rows[:cfg.ResultLimit]
	}
	return rows
}

// writeReportText generates the human-readable project report.
func writeReportText(report schema.ProjectReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "%s\n", headerWithEmoji(cfg, "📊", "Project Report")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Generated: %s\n\n", report.GeneratedAt.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	// 1. Ranked hotspot table
	rows := rankedHotspotRows(report, cfg)
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(writer, "No hotspots to report."); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(writer)
		table.Header([]string{"Rank", "Path", "Hotspot", "Label"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, r := range rows {
			data = append(data, []string{
				strconv.Itoa(r.Rank),
				contract.TruncatePath(r.Path, GetMaxTablePathWidth(cfg)),
				fmtFloat(r.Score),
				labelFor(cfg, r.Score),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	// 2. Top refactoring candidate
	if report.TopCandidate != nil {
		if _, err := fmt.Fprintf(writer, "Top refactoring candidate: %s (score %s)\n",
			report.TopCandidate.Path, fmtFloat(report.TopCandidate.Score)); err != nil {
			return err
		}
	}

	// 3. Project vulnerability list
	if len(report.Vulnerabilities) > 0 {
		if _, err := fmt.Fprintf(writer, "\n%s\n", headerWithEmoji(cfg, "🚨", "Vulnerabilities")); err != nil {
			return err
		}
		for _, v := range report.Vulnerabilities {
			if _, err := fmt.Fprintf(writer, "  %s  risk %s  [%s]\n",
				v.Path, fmtFloat(v.RiskScore), formatCategories(v.Categories)); err != nil {
				return err
			}
		}
	} else {
		if _, err := fmt.Fprintf(writer, "\nNo vulnerabilities above the %.2f risk threshold.\n", cfg.ReportRisk); err != nil {
			return err
		}
	}

	// 4. Coverage pass-through; nil means no provider value, never zero
	if report.CoveragePercentage != nil {
		if _, err := fmt.Fprintf(writer, "Coverage: %s%%\n", fmtFloat(*report.CoveragePercentage)); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(writer, "Coverage: not tracked"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(writer, "Report completed in %v with %d workers. Store backend: %s\n",
		duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}
