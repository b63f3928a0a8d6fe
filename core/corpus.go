package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codiehq/codesight/internal/parquet"
	"github.com/codiehq/codesight/schema"
)

// LoadCorpus reads a labeled training corpus from disk. The format follows
// the file extension: .parquet files use the columnar reader, everything
// else is decoded as a JSON array of training examples. Examples without an
// explicit language fall back to extension detection on their path.
func LoadCorpus(path string) ([]schema.TrainingExample, error) {
	var examples []schema.TrainingExample

	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		rows, err := parquet.ReadCorpusParquet(path)
		if err != nil {
			return nil, err
		}
		examples = parquet.ConvertCorpusExamples(rows)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file: %w", err)
		}
		if err := json.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("failed to parse corpus JSON: %w", err)
		}
	}

	for i := range examples {
		if examples[i].Language == "" {
			examples[i].Language = schema.DetectLanguage(examples[i].Path)
		}
	}
	return examples, nil
}
