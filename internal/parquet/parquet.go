// Package parquet provides data structures and functions for reading training
// corpora from and exporting model store data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/codiehq/codesight/schema"
)

// CorpusExample represents a single training example in a Parquet corpus.
// Label columns are nullable: the classifier needs vulnerable, the quality
// regressor needs quality, the unsupervised models need neither.
type CorpusExample struct {
	// Path is the origin path of the example, used for reporting only
	Path string `parquet:"path,snappy"`

	// Content is the raw source text of the example
	Content string `parquet:"content,snappy"`

	// Language is the source language label (empty means detect by extension)
	Language string `parquet:"language,snappy"`

	// Vulnerable is the classifier label (nullable)
	Vulnerable *bool `parquet:"vulnerable,optional,snappy"`

	// Quality is the 0-100 quality label (nullable)
	Quality *float64 `parquet:"quality,optional,snappy"`
}

// ModelArtifact represents one stored model artifact for export.
// This struct maps to the codesight_model_artifacts database table.
type ModelArtifact struct {
	// Name is the model kind
	Name string `parquet:"name,snappy"`

	// Version is the artifact version within its kind
	Version int32 `parquet:"version,snappy"`

	// Accuracy is the validation accuracy recorded at training time (0-1)
	Accuracy float64 `parquet:"accuracy,snappy"`

	// Status is the lifecycle status (active, retired, error)
	Status string `parquet:"status,snappy"`

	// TrainedAt is when the artifact was trained (stored as TIMESTAMP with nanosecond precision)
	TrainedAt time.Time `parquet:"trained_at,snappy"`

	// PayloadBytes is the size of the serialized model parameters
	PayloadBytes int64 `parquet:"payload_bytes,snappy"`
}

// InsightRow is the flattened Parquet representation of one file outcome.
// Nullable columns mirror the insight slots: a missing value means the slot
// was filtered or unavailable, never zero.
type InsightRow struct {
	// Path is the analyzed file path
	Path string `parquet:"path,snappy"`

	// Language is the detected or forced source language
	Language string `parquet:"language,snappy"`

	// RiskScore is the vulnerability probability (nullable)
	RiskScore *float64 `parquet:"risk_score,optional,snappy"`

	// QualityScore is the blended 0-100 quality score (nullable)
	QualityScore *float64 `parquet:"quality_score,optional,snappy"`

	// PatternCount is how many patterns survived the confidence filter
	PatternCount int32 `parquet:"pattern_count,snappy"`

	// IsOutlier is the anomaly decision (nullable)
	IsOutlier *bool `parquet:"is_outlier,optional,snappy"`

	// Error is the failure message for failed files (empty on success)
	Error string `parquet:"error,snappy"`
}

// TrainingRun represents one training run for export.
// This struct maps to the codesight_training_runs database table.
type TrainingRun struct {
	// RunID is the unique identifier for this training run
	RunID string `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// ExampleCount is the number of training examples in the run
	ExampleCount int32 `parquet:"example_count,snappy"`

	// Promoted is how many model kinds the run promoted
	Promoted int32 `parquet:"promoted,snappy"`

	// Rejected is how many model kinds the run rejected
	Rejected int32 `parquet:"rejected,snappy"`
}

// WriteCorpusParquet writes a slice of CorpusExample structs to a Parquet file.
func WriteCorpusParquet(data []CorpusExample, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadCorpusParquet reads all training examples from a Parquet corpus file.
func ReadCorpusParquet(inputPath string) ([]CorpusExample, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CorpusExample](file)
	defer func() { _ = reader.Close() }()

	data := make([]CorpusExample, reader.NumRows())
	if len(data) == 0 {
		return data, nil
	}
	n, err := reader.Read(data)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read corpus rows: %w", err)
	}
	return data[:n], nil
}

// WriteArtifactsParquet writes a slice of ModelArtifact structs to a Parquet file.
func WriteArtifactsParquet(data []ModelArtifact, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes a slice of TrainingRun structs to a Parquet file.
func WriteRunsParquet(data []TrainingRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteInsightsParquet writes a slice of InsightRow structs to a Parquet file.
func WriteInsightsParquet(data []InsightRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records to outputPath using struct schema inference.
// The schema is automatically derived from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertTrainingExamples converts schema.TrainingExample to CorpusExample for Parquet export.
func ConvertTrainingExamples(examples []schema.TrainingExample) []CorpusExample {
	result := make([]CorpusExample, len(examples))
	for i, ex := range examples {
		result[i] = CorpusExample{
			Path:       ex.Path,
			Content:    ex.Content,
			Language:   string(ex.Language),
			Vulnerable: ex.Vulnerable,
			Quality:    ex.Quality,
		}
	}
	return result
}

// ConvertCorpusExamples converts CorpusExample rows back to schema.TrainingExample.
func ConvertCorpusExamples(rows []CorpusExample) []schema.TrainingExample {
	result := make([]schema.TrainingExample, len(rows))
	for i, row := range rows {
		result[i] = schema.TrainingExample{
			Path:       row.Path,
			Content:    row.Content,
			Language:   schema.Language(row.Language),
			Vulnerable: row.Vulnerable,
			Quality:    row.Quality,
		}
	}
	return result
}

// ConvertArtifactRecords converts schema.ModelArtifactRecord to ModelArtifact for Parquet export.
func ConvertArtifactRecords(records []schema.ModelArtifactRecord) []ModelArtifact {
	result := make([]ModelArtifact, len(records))
	for i, record := range records {
		result[i] = ModelArtifact{
			Name:         string(record.Name),
			Version:      int32(record.Version),
			Accuracy:     record.Accuracy,
			Status:       string(record.Status),
			TrainedAt:    record.TrainedAt,
			PayloadBytes: int64(len(record.Payload)),
		}
	}
	return result
}

// ConvertRunRecords converts schema.TrainingRunRecord to TrainingRun for Parquet export.
func ConvertRunRecords(records []schema.TrainingRunRecord) []TrainingRun {
	result := make([]TrainingRun, len(records))
	for i, record := range records {
		result[i] = TrainingRun{
			RunID:        record.RunID,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			ExampleCount: record.ExampleCount,
			Promoted:     record.Promoted,
			Rejected:     record.Rejected,
		}
	}
	return result
}

// ConvertInsightRecords flattens schema.FileOutcome values into InsightRow
// for Parquet export. Failed files keep their path and error message with
// every score column null.
func ConvertInsightRecords(outcomes []schema.FileOutcome) []InsightRow {
	result := make([]InsightRow, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			result[i] = InsightRow{
				Path:  outcome.Err.Path,
				Error: outcome.Err.Err,
			}
			continue
		}
		insight := outcome.Insight
		row := InsightRow{
			Path:     insight.Path,
			Language: string(insight.Language),
		}
		if insight.Vulnerability != nil {
			risk := insight.Vulnerability.RiskScore
			row.RiskScore = &risk
		}
		if insight.Quality != nil {
			quality := insight.Quality.OverallScore
			row.QualityScore = &quality
		}
		if insight.SlotIs(schema.ModelPattern, schema.SlotAvailable) {
			row.PatternCount = int32(len(insight.Patterns))
		}
		if insight.Anomaly != nil {
			outlier := insight.Anomaly.IsOutlier
			row.IsOutlier = &outlier
		}
		result[i] = row
	}
	return result
}
