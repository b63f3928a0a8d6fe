// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteInsights prints per-file analysis outcomes using the configured output format.
func (ow *OutWriter) WriteInsights(outcomes []schema.FileOutcome, cfg *contract.Config, duration time.Duration) error {
	return PrintInsightResults(outcomes, cfg, duration)
}

// WriteReport prints a project report using the configured output format.
func (ow *OutWriter) WriteReport(report schema.ProjectReport, cfg *contract.Config, duration time.Duration) error {
	return PrintProjectReport(report, cfg, duration)
}

// WriteModels prints model registry records using the configured output format.
func (ow *OutWriter) WriteModels(records []schema.ModelRecord, cfg *contract.Config) error {
	return PrintModelRecords(records, cfg)
}

// WriteFeatures prints feature schema definitions using the configured output format.
func (ow *OutWriter) WriteFeatures(desc schema.FeatureSchemaDescription, cfg *contract.Config) error {
	return PrintFeatureDefinitions(desc, cfg)
}

// WriteFeatureVector prints one extracted vector using the configured output format.
func (ow *OutWriter) WriteFeatureVector(desc schema.FeatureSchemaDescription, ext schema.FeatureExtraction, cfg *contract.Config) error {
	return PrintFeatureVector(desc, ext, cfg)
}
