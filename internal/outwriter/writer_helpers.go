package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/codiehq/codesight/internal/contract"
)

// writeToTarget resolves the output destination, runs emit against it and
// notes where the data landed. An empty outputFile means stdout, which is
// neither closed nor announced.
func writeToTarget(outputFile string, emit func(io.Writer) error, note string) error {
	dest, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	toFile := dest != os.Stdout
	if toFile {
		defer func() { _ = dest.Close() }()
	}

	if err := emit(dest); err != nil {
		return err
	}

	if toFile {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", note, outputFile)
	}
	return nil
}

// writeIndentedJSON encodes data as two-space indented JSON, the shape every
// JSON output mode in this package shares.
func writeIndentedJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSV writes the header row, hands the writer to rows and flushes.
func writeCSV(w io.Writer, header []string, rows func(*csv.Writer) error) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return rows(cw)
}

// floatFormatter returns a closure rendering floats at the configured
// precision, shared by the table and CSV renderers.
func floatFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}
