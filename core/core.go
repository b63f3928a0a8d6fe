// Package core has the analysis engine: feature extraction composed with
// the model registry, per-file and project aggregation, batch coordination
// and the training pipeline.
package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/core/model"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// Service is the engine facade behind every CLI and MCP operation. All
// methods are safe for concurrent use; inference snapshots the registry
// once per call and training swaps generations atomically.
type Service struct {
	cfg       *contract.Config
	extractor *feature.Extractor
	registry  *model.Registry
	filter    ConfidenceFilter
	store     contract.ModelStore
	coverage  contract.CoverageProvider

	trainMu    sync.Mutex
	trainState atomic.Value // schema.TrainingState
}

// NewService wires the engine from configuration and collaborators. Both
// providers may be nil; the store may be the no-op backend for stateless
// runs.
func NewService(cfg *contract.Config, store contract.ModelStore, structural contract.StructuralProvider, coverage contract.CoverageProvider) *Service {
	s := &Service{
		cfg:       cfg,
		extractor: feature.NewExtractor(cfg.MaxContentBytes, structural),
		registry:  model.NewRegistry(),
		filter: ConfidenceFilter{
			Vulnerability: cfg.VulnConfidence,
			Pattern:       cfg.PatternConfidence,
		},
		store:    store,
		coverage: coverage,
	}
	s.trainState.Store(schema.TrainIdle)
	return s
}

// LoadActiveGeneration restores the newest persisted generation into the
// registry. A store with no generations leaves the registry empty, which
// is a normal first-run state, not an error.
func (s *Service) LoadActiveGeneration() error {
	rec, err := s.store.LoadLatestGeneration()
	if err != nil {
		return fmt.Errorf("load latest generation: %w", err)
	}
	if rec == nil {
		return nil
	}
	artifacts, err := s.store.LoadActiveArtifacts()
	if err != nil {
		return fmt.Errorf("load active artifacts: %w", err)
	}
	gen, err := model.DecodeGeneration(*rec, artifacts)
	if err != nil {
		return err
	}
	s.registry.Install(gen)
	return nil
}

// ExtractFeatures exposes the raw feature vector for one sample, without
// running any model over it.
func (s *Service) ExtractFeatures(ctx context.Context, sample schema.CodeSample) (schema.FeatureVector, schema.FeatureMeta) {
	if sample.Language == "" {
		sample.Language = s.resolveLanguage(sample)
	}
	return s.extractor.Extract(ctx, sample)
}

// RegistryStatus reports the in-memory registry state.
func (s *Service) RegistryStatus() schema.RegistryStatus {
	return s.registry.Status()
}

// StoreStatus reports the persisted store state.
func (s *Service) StoreStatus() (schema.StoreStatus, error) {
	return s.store.GetStatus()
}

// TrainingState returns the current phase of the training pipeline.
func (s *Service) TrainingState() schema.TrainingState {
	return s.trainState.Load().(schema.TrainingState)
}
