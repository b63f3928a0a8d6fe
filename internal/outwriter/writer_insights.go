package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/codiehq/codesight/schema"
)

// writeJSONResultsForInsights writes the analysis outcomes in JSON format.
func writeJSONResultsForInsights(w io.Writer, outcomes []schema.FileOutcome) error {
	// 1. Prepare the data structure for JSON with index and label added
	type JSONInsightResult struct {
		Index int    `json:"index"`
		Label string `json:"label"`
		schema.FileOutcome
	}

	output := make([]JSONInsightResult, len(outcomes))
	for i, outcome := range outcomes {
		label := "-"
		switch {
		case outcome.Err != nil:
			label = "Failed"
		case outcome.Insight.Vulnerability != nil:
			label = schema.GetRiskLabel(outcome.Insight.Vulnerability.RiskScore * 100)
		}
		output[i] = JSONInsightResult{
			Index:       i + 1,
			Label:       label,
			FileOutcome: outcome,
		}
	}

	// 2. Use the generic JSON writer
	return writeIndentedJSON(w, output)
}

// writeCSVResultsForInsights writes the analysis outcomes in CSV format.
func writeCSVResultsForInsights(w *csv.Writer, outcomes []schema.FileOutcome, fmtFloat func(float64) string) error {
	// CSV header
	header := []string{
		"index",
		"path",
		"language",
		"risk_score",
		"risk_label",
		"categories",
		"quality_score",
		"pattern_count",
		"outlier",
		"slots",
		"error",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, outcome := range outcomes {
		cells := formatInsightCells(outcome, fmtFloat, false)
		categories := "-"
		if outcome.Insight != nil && outcome.Insight.Vulnerability != nil {
			categories = formatCategories(outcome.Insight.Vulnerability.Categories)
		}
		rec := []string{
			strconv.Itoa(i + 1), // Index
			cells.Path,
			cells.Language,
			cells.Risk,
			cells.RiskLabel,
			categories,
			cells.Quality,
			cells.Patterns,
			cells.Outlier,
			cells.Slots,
			cells.Error,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
