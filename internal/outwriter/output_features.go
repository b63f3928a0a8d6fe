package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// PrintFeatureDefinitions displays the formal layout of the feature schema.
// This is a static display that does not run any model.
func PrintFeatureDefinitions(desc schema.FeatureSchemaDescription, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeIndentedJSON(w, desc)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFeatures(w, desc)
		}, "Wrote CSV")
	default:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeFeaturesText(w, desc, cfg)
		}, "Wrote text")
	}
}

// PrintFeatureVector displays one extracted vector laid out against the
// feature schema fields.
func PrintFeatureVector(desc schema.FeatureSchemaDescription, ext schema.FeatureExtraction, cfg *contract.Config) error {
	fmtFloat := floatFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeIndentedJSON(w, ext)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFeatureVector(w, desc, ext, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeToTarget(cfg.OutputFile, func(w io.Writer) error {
			return writeFeatureVectorText(w, desc, ext, cfg, fmtFloat)
		}, "Wrote text")
	}
}

// writeFeaturesText displays the feature schema in human-readable text format.
func writeFeaturesText(w io.Writer, desc schema.FeatureSchemaDescription, cfg *contract.Config) error {
	title := headerWithEmoji(cfg, "🧬", fmt.Sprintf("Feature Schema v%d", desc.Version))
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", strings.Repeat("=", len(fmt.Sprintf("Feature Schema v%d", desc.Version)))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%d features per sample, standardized before model input.\n\n", len(desc.Fields)); err != nil {
		return err
	}

	for _, group := range featureGroups(desc) {
		if _, err := fmt.Fprintf(w, "%s:\n", strings.ToUpper(group)); err != nil {
			return err
		}
		for _, f := range desc.Fields {
			if f.Group != group {
				continue
			}
			if _, err := fmt.Fprintf(w, "  [%2d] %-15s %s\n", f.Index, f.Name, f.Description); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "Structural features stay zero without a configured provider."); err != nil {
		return err
	}
	return nil
}

// featureGroups returns the distinct groups in first-seen order.
func featureGroups(desc schema.FeatureSchemaDescription) []string {
	var groups []string
	seen := make(map[string]struct{})
	for _, f := range desc.Fields {
		if _, ok := seen[f.Group]; ok {
			continue
		}
		seen[f.Group] = struct{}{}
		groups = append(groups, f.Group)
	}
	return groups
}

// writeFeatureVectorText displays one extracted vector in human-readable
// text format, grouped the same way as the schema listing.
func writeFeatureVectorText(w io.Writer, desc schema.FeatureSchemaDescription, ext schema.FeatureExtraction, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := headerWithEmoji(cfg, "🧬", fmt.Sprintf("Features for %s", ext.Path))
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	sizeNote := ""
	if ext.Meta.Truncated {
		sizeNote = ", truncated"
	}
	if _, err := fmt.Fprintf(w, "Language: %s | Schema: v%d | Size: %d bytes%s\n\n",
		ext.Language, ext.Meta.SchemaVersion, ext.Meta.RawBytes, sizeNote); err != nil {
		return err
	}

	for _, group := range featureGroups(desc) {
		if _, err := fmt.Fprintf(w, "%s:\n", strings.ToUpper(group)); err != nil {
			return err
		}
		for _, f := range desc.Fields {
			if f.Group != group {
				continue
			}
			if _, err := fmt.Fprintf(w, "  [%2d] %-15s %s\n", f.Index, f.Name, fmtFloat(vectorValue(ext.Vector, f.Index))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// vectorValue reads one slot, tolerating vectors shorter than the schema.
func vectorValue(vec schema.FeatureVector, index int) float64 {
	if index < 0 || index >= len(vec) {
		return 0
	}
	return vec[index]
}

// writeCSVFeatures writes the feature schema layout in CSV format.
func writeCSVFeatures(w io.Writer, desc schema.FeatureSchemaDescription) error {
	header := []string{"index", "name", "group", "description"}
	return writeCSV(w, header, func(csvWriter *csv.Writer) error {
		for _, f := range desc.Fields {
			record := []string{
				strconv.Itoa(f.Index),
				f.Name,
				f.Group,
				f.Description,
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSVFeatureVector writes one extracted vector in CSV format.
func writeCSVFeatureVector(w io.Writer, desc schema.FeatureSchemaDescription, ext schema.FeatureExtraction, fmtFloat func(float64) string) error {
	header := []string{"index", "name", "group", "value"}
	return writeCSV(w, header, func(csvWriter *csv.Writer) error {
		for _, f := range desc.Fields {
			record := []string{
				strconv.Itoa(f.Index),
				f.Name,
				f.Group,
				fmtFloat(vectorValue(ext.Vector, f.Index)),
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}
