// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/codiehq/codesight/schema"
)

// StructuralProvider supplies parser-derived metrics for the structural
// feature slots. The engine never parses source itself; when no provider is
// configured, the structural slots stay zero-filled.
type StructuralProvider interface {
	// StructuralMetrics returns nesting, branch and call metrics for one sample.
	StructuralMetrics(ctx context.Context, sample schema.CodeSample) (schema.StructuralMetrics, error)
}

// CoverageProvider supplies externally measured test coverage for a project.
// The engine passes the value through; it never measures coverage itself.
type CoverageProvider interface {
	// ProjectCoverage returns the coverage percentage for a project, and
	// whether a value is known at all.
	ProjectCoverage(ctx context.Context, projectID string) (float64, bool, error)
}

// StoreManager defines the interface for managing model stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetModelStore() ModelStore
}

// ModelStore defines the interface for persisting model generations.
type ModelStore interface {
	// --- Generations ---

	// SaveGeneration persists generation metadata and scaler parameters.
	SaveGeneration(rec schema.GenerationRecord) error

	// LoadLatestGeneration returns the newest generation, or nil when the
	// store holds none.
	LoadLatestGeneration() (*schema.GenerationRecord, error)

	// --- Artifacts ---

	// SaveArtifact persists one model artifact. Saving an active artifact
	// retires any previously active artifact of the same name.
	SaveArtifact(rec schema.ModelArtifactRecord) error

	// LoadActiveArtifacts returns the active artifact of every model name.
	LoadActiveArtifacts() ([]schema.ModelArtifactRecord, error)

	// GetAllArtifacts returns every stored artifact, including retired and
	// failed ones, ordered by name then version.
	GetAllArtifacts() ([]schema.ModelArtifactRecord, error)

	// MarkArtifactStatus updates the status of one stored artifact.
	MarkArtifactStatus(name schema.ModelName, version int, status schema.ModelStatus) error

	// --- Training runs ---

	// BeginRun records the start of a training run.
	BeginRun(rec schema.TrainingRunRecord) error

	// EndRun records the completion of a training run.
	EndRun(runID string, endTime time.Time, promoted, rejected int) error

	// GetAllRuns returns every recorded training run in start order.
	GetAllRuns() ([]schema.TrainingRunRecord, error)

	// --- Lifecycle ---

	// GetStatus returns status information about the model store.
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
