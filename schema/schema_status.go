package schema

import "time"

// StoreStatus represents the status of the model store.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalArtifacts int              `json:"total_artifacts"`
	ActiveModels   int              `json:"active_models"`
	LastTrainedAt  time.Time        `json:"last_trained_at"`
	TotalRuns      int              `json:"total_runs"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RegistryStatus represents the in-memory state of the model registry.
type RegistryStatus struct {
	GenerationID  string                    `json:"generation_id"`
	GenerationSeq int64                     `json:"generation_seq"`
	CreatedAt     time.Time                 `json:"created_at"`
	SchemaVersion int                       `json:"schema_version"`
	Records       map[ModelName]ModelRecord `json:"records"`
}
