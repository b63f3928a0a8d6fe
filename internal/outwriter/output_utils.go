package outwriter

import (
	"strconv"
	"strings"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// labelFor returns the display label for a 0-100 score, colored when enabled.
func labelFor(cfg *contract.Config, score float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel(score)
	}
	return schema.GetRiskLabel(score)
}

// headerWithEmoji prefixes a header with an emoji when emojis are enabled.
func headerWithEmoji(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis {
		return emoji + " " + text
	}
	return text
}

// formatCategories joins vulnerability categories for single-cell display.
func formatCategories(categories []schema.VulnCategory) string {
	if len(categories) == 0 {
		return "-"
	}
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = string(c)
	}
	return strings.Join(parts, "|")
}

// slotLetter maps a slot state to its single-letter display form.
func slotLetter(state schema.SlotState) string {
	switch state {
	case schema.SlotAvailable:
		return "A"
	case schema.SlotFiltered:
		return "F"
	default:
		return "U"
	}
}

// formatSlotStates renders slot states one letter each, in registry order:
// vulnerability, quality, pattern, anomaly.
func formatSlotStates(slots map[schema.ModelName]schema.SlotState) string {
	var b strings.Builder
	for _, name := range schema.AllModelNames {
		b.WriteString(slotLetter(slots[name]))
	}
	return b.String()
}

// insightCells holds the formatted column values shared by table and CSV
// output for one outcome.
type insightCells struct {
	Path      string
	Language  string
	Risk      string
	RiskLabel string
	Quality   string
	Patterns  string
	Outlier   string
	Slots     string
	Error     string
}

// formatInsightCells flattens one outcome into display cells. Error outcomes
// fill the path and error cells and dash out the rest.
func formatInsightCells(outcome schema.FileOutcome, fmtFloat func(float64) string, colorize bool) insightCells {
	cells := insightCells{
		Path:      "-",
		Language:  "-",
		Risk:      "-",
		RiskLabel: "-",
		Quality:   "-",
		Patterns:  "-",
		Outlier:   "-",
		Slots:     "-",
	}

	if outcome.Err != nil {
		cells.Path = outcome.Err.Path
		cells.RiskLabel = "Failed"
		cells.Error = outcome.Err.Err
		return cells
	}

	insight := outcome.Insight
	cells.Path = insight.Path
	cells.Language = string(insight.Language)
	cells.Slots = formatSlotStates(insight.Slots)

	if insight.Vulnerability != nil {
		cells.Risk = fmtFloat(insight.Vulnerability.RiskScore)
		score := insight.Vulnerability.RiskScore * 100
		if colorize {
			cells.RiskLabel = contract.GetColorLabel(score)
		} else {
			cells.RiskLabel = schema.GetRiskLabel(score)
		}
	}
	if insight.Quality != nil {
		cells.Quality = fmtFloat(insight.Quality.OverallScore)
	}
	if insight.SlotIs(schema.ModelPattern, schema.SlotAvailable) {
		cells.Patterns = strconv.Itoa(len(insight.Patterns))
	}
	if insight.Anomaly != nil {
		if insight.Anomaly.IsOutlier {
			cells.Outlier = "yes"
		} else {
			cells.Outlier = "no"
		}
	}

	return cells
}
