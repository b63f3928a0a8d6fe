package schema

import "time"

// ModelRecord describes one versioned model known to the registry.
// At most one record per model name is active at a time.
type ModelRecord struct {
	Name      ModelName   `json:"name"`
	Version   int         `json:"version"`
	Accuracy  float64     `json:"accuracy"` // Validation accuracy (0-1)
	Status    ModelStatus `json:"status"`
	TrainedAt time.Time   `json:"trained_at"`
}

// TrainingExample is one sample of a training corpus. Labels are optional
// per model kind: the classifier needs Vulnerable, the regressor needs
// Quality, clustering and outlier detection consume unlabeled content.
type TrainingExample struct {
	Path       string   `json:"path"`
	Content    string   `json:"content"`
	Language   Language `json:"language"`
	Vulnerable *bool    `json:"vulnerable,omitempty"`
	Quality    *float64 `json:"quality,omitempty"` // 0-100
}

// GenerationRecord represents a row from the generations table. It carries
// the scaler parameters and feature schema version shared by the artifacts
// promoted in one training run.
type GenerationRecord struct {
	Seq           int64
	GenerationID  string
	CreatedAt     time.Time
	SchemaVersion int
	ScalerPayload []byte // JSON-serialized scaler parameters
}

// ModelArtifactRecord represents a row from the model_artifacts table.
type ModelArtifactRecord struct {
	Name      ModelName
	Version   int
	Accuracy  float64
	Status    ModelStatus
	TrainedAt time.Time
	Payload   []byte // JSON-serialized model parameters
}

// TrainingRunRecord represents a row from the training_runs table.
type TrainingRunRecord struct {
	RunID        string
	StartTime    time.Time
	EndTime      *time.Time
	ExampleCount int32
	Promoted     int32
	Rejected     int32
}
