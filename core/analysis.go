package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/core/model"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// AnalyzeCode runs the full per-file pipeline on one sample: language
// resolution, feature extraction, normalization and all four model slots.
// A missing model never fails the call; its slot reports unavailable.
func (s *Service) AnalyzeCode(ctx context.Context, sample schema.CodeSample) (*schema.FileInsight, error) {
	return s.analyzeOne(ctx, sample)
}

// PredictVulnerabilities scores one sample with the vulnerability
// classifier alone. Unlike AnalyzeCode it returns the model output
// unfiltered; confidence thresholds apply when insights are assembled.
func (s *Service) PredictVulnerabilities(ctx context.Context, sample schema.CodeSample) (*schema.VulnerabilityPrediction, error) {
	gen, vec, normalized, err := s.prepare(ctx, sample, schema.ModelVulnerability)
	if err != nil {
		return nil, err
	}
	if gen.Vulnerability == nil {
		return nil, fmt.Errorf("vulnerability: %w", model.ErrUnavailable)
	}
	return gen.Vulnerability.Predict(normalized, vec)
}

// AnalyzeQuality scores one sample with the quality regressor alone.
func (s *Service) AnalyzeQuality(ctx context.Context, sample schema.CodeSample) (*schema.QualityScore, error) {
	gen, _, normalized, err := s.prepare(ctx, sample, schema.ModelQuality)
	if err != nil {
		return nil, err
	}
	if gen.Quality == nil {
		return nil, fmt.Errorf("quality: %w", model.ErrUnavailable)
	}
	return gen.Quality.Predict(normalized)
}

// DetectPatterns matches one sample against the trained pattern clusters.
// An empty slice means the sample sits outside every cluster radius.
func (s *Service) DetectPatterns(ctx context.Context, sample schema.CodeSample) ([]schema.DetectedPattern, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gen := s.registry.Snapshot()
	if gen == nil || gen.Pattern == nil {
		return nil, fmt.Errorf("pattern: %w", model.ErrUnavailable)
	}
	return gen.Pattern.Detect(sample.Content), nil
}

// AnalyzeBatch analyzes samples concurrently with a worker pool and returns
// one outcome per input, at the input's index. A failing file yields a
// FileError at its position only; neighbors are unaffected. Canceling the
// context stops new files from starting while files already underway run to
// completion, so the output length always equals the input length.
func (s *Service) AnalyzeBatch(ctx context.Context, samples []schema.CodeSample) []schema.FileOutcome {
	outcomes := make([]schema.FileOutcome, len(samples))
	if len(samples) == 0 {
		return outcomes
	}

	// Each index is written by exactly one task, so the outcomes slice
	// needs no locking. Tasks record failures positionally and never
	// return an error; one bad file must not stop the batch.
	var g errgroup.Group
	g.SetLimit(min(s.workerCount(), len(samples)))

	for i, sample := range samples {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i] = schema.FileOutcome{Err: &schema.FileError{
					Path: sample.Path,
					Kind: schema.ErrKindInternal,
					Err:  "batch canceled before analysis started",
				}}
				return nil
			}
			outcomes[i] = s.analyzeWithTimeout(ctx, sample)
			return nil
		})
	}

	// Wait for all tasks to finish processing
	_ = g.Wait()

	return outcomes
}

// analyzeWithTimeout runs one sample under the per-file budget. The inner
// context is detached from the batch context on purpose: a batch cancel
// stops new files from starting, but a file already underway finishes.
func (s *Service) analyzeWithTimeout(ctx context.Context, sample schema.CodeSample) schema.FileOutcome {
	timeout := s.cfg.FileTimeout
	if timeout <= 0 {
		timeout = contract.DefaultFileTimeout
	}
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	done := make(chan schema.FileOutcome, 1)
	go func() {
		insight, err := s.analyzeOne(tctx, sample)
		if err != nil {
			done <- schema.FileOutcome{Err: newFileError(sample.Path, err)}
			return
		}
		done <- schema.FileOutcome{Insight: insight}
	}()

	select {
	case out := <-done:
		return out
	case <-tctx.Done():
		return schema.FileOutcome{Err: &schema.FileError{
			Path: sample.Path,
			Kind: schema.ErrKindTimeout,
			Err:  fmt.Sprintf("analysis exceeded the %s per-file budget", timeout),
		}}
	}
}

// analyzeOne performs the per-file pipeline shared by single and batch
// analysis.
func (s *Service) analyzeOne(ctx context.Context, sample schema.CodeSample) (*schema.FileInsight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 1. Language Resolution and Feature Extraction ---
	sample.Language = s.resolveLanguage(sample)
	vec, meta := s.extractor.Extract(ctx, sample)

	insight := &schema.FileInsight{
		Path:     sample.Path,
		Language: sample.Language,
		Patterns: []schema.DetectedPattern{},
		Slots:    make(map[schema.ModelName]schema.SlotState, len(schema.AllModelNames)),
		Meta:     meta,
	}
	for _, name := range schema.AllModelNames {
		insight.Slots[name] = schema.SlotUnavailable
	}

	// --- 2. Generation Snapshot ---
	// All model calls below run against this one snapshot, so a concurrent
	// promotion cannot mix generations within a single insight.
	gen := s.registry.Snapshot()
	if gen == nil {
		return insight, nil
	}

	// --- 3. Normalization ---
	// Each vector-consuming model sees the vector under the scaler of its
	// own training run; a carried model keeps the normalization it was
	// validated against even after a newer scaler lands.
	norms, err := normalizeByKind(gen, vec)
	if err != nil {
		return nil, err
	}

	// --- 4. Model Slots ---
	s.fillVulnerability(insight, gen, norms[schema.ModelVulnerability], vec)
	s.fillQuality(insight, gen, norms[schema.ModelQuality])
	s.fillPatterns(insight, gen, sample.Content)
	s.fillAnomaly(insight, gen, norms[schema.ModelAnomaly])

	return insight, nil
}

// prepare runs the shared front half of the single-model operations:
// language resolution, extraction and normalization under the scaler the
// named model was trained against.
func (s *Service) prepare(ctx context.Context, sample schema.CodeSample, name schema.ModelName) (*model.Generation, schema.FeatureVector, schema.FeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}
	sample.Language = s.resolveLanguage(sample)
	vec, _ := s.extractor.Extract(ctx, sample)

	gen := s.registry.Snapshot()
	if gen == nil {
		return nil, nil, nil, model.ErrUnavailable
	}
	normalized, err := gen.ScalerFor(name).Apply(vec)
	if err != nil {
		return nil, nil, nil, err
	}
	return gen, vec, normalized, nil
}

// normalizeByKind applies each kind's training-run scaler to vec. Kinds
// promoted together share a scaler and reuse one application; the pattern
// model consumes raw content and needs none.
func normalizeByKind(gen *model.Generation, vec schema.FeatureVector) (map[schema.ModelName]schema.FeatureVector, error) {
	out := make(map[schema.ModelName]schema.FeatureVector, len(schema.AllModelNames))
	cache := make(map[*feature.ScalerParams]schema.FeatureVector, 1)
	for _, name := range schema.AllModelNames {
		if name == schema.ModelPattern || !gen.Has(name) {
			continue
		}
		sc := gen.ScalerFor(name)
		if sc == nil {
			continue
		}
		if normalized, ok := cache[sc]; ok {
			out[name] = normalized
			continue
		}
		normalized, err := sc.Apply(vec)
		if err != nil {
			return nil, err
		}
		cache[sc] = normalized
		out[name] = normalized
	}
	return out, nil
}

// resolveLanguage picks the sample language: an explicit sample value wins,
// then the configured override, then extension detection.
func (s *Service) resolveLanguage(sample schema.CodeSample) schema.Language {
	if sample.Language != "" {
		return sample.Language
	}
	if s.cfg.Language != "" {
		return s.cfg.Language
	}
	return schema.DetectLanguage(sample.Path)
}

// workerCount returns the configured pool size, falling back to the default
// when unset.
func (s *Service) workerCount() int {
	if s.cfg.Workers > 0 {
		return s.cfg.Workers
	}
	return contract.DefaultWorkers
}

// fillVulnerability runs the classifier slot. A runtime prediction failure
// downgrades the slot to unavailable instead of failing the file.
func (s *Service) fillVulnerability(fi *schema.FileInsight, gen *model.Generation, normalized, raw schema.FeatureVector) {
	if gen.Vulnerability == nil {
		return
	}
	pred, err := gen.Vulnerability.Predict(normalized, raw)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Vulnerability inference failed for %s", fi.Path), err)
		return
	}
	if !s.filter.KeepVulnerability(pred) {
		fi.Slots[schema.ModelVulnerability] = schema.SlotFiltered
		return
	}
	fi.Vulnerability = pred
	fi.Slots[schema.ModelVulnerability] = schema.SlotAvailable
}

// fillQuality runs the regressor slot. Quality carries no confidence, so
// the filter never applies here.
func (s *Service) fillQuality(fi *schema.FileInsight, gen *model.Generation, normalized schema.FeatureVector) {
	if gen.Quality == nil {
		return
	}
	q, err := gen.Quality.Predict(normalized)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Quality inference failed for %s", fi.Path), err)
		return
	}
	fi.Quality = q
	fi.Slots[schema.ModelQuality] = schema.SlotAvailable
}

// fillPatterns runs the pattern slot. An empty match list is still an
// available slot; filtered means matches existed but none cleared the
// confidence threshold.
func (s *Service) fillPatterns(fi *schema.FileInsight, gen *model.Generation, content string) {
	if gen.Pattern == nil {
		return
	}
	detected := gen.Pattern.Detect(content)
	kept := s.filter.FilterPatterns(detected)
	fi.Patterns = kept
	if len(detected) > 0 && len(kept) == 0 {
		fi.Slots[schema.ModelPattern] = schema.SlotFiltered
		return
	}
	fi.Slots[schema.ModelPattern] = schema.SlotAvailable
}

// fillAnomaly runs the outlier slot.
func (s *Service) fillAnomaly(fi *schema.FileInsight, gen *model.Generation, normalized schema.FeatureVector) {
	if gen.Anomaly == nil {
		return
	}
	flag, err := gen.Anomaly.Flag(normalized)
	if err != nil {
		contract.LogWarn(fmt.Sprintf("Anomaly inference failed for %s", fi.Path), err)
		return
	}
	fi.Anomaly = flag
	fi.Slots[schema.ModelAnomaly] = schema.SlotAvailable
}

// newFileError classifies err into a positional batch error.
func newFileError(path string, err error) *schema.FileError {
	return &schema.FileError{Path: path, Kind: classifyError(err), Err: err.Error()}
}

// classifyError maps an analysis failure onto its error kind.
func classifyError(err error) schema.ErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return schema.ErrKindTimeout
	case errors.Is(err, feature.ErrSchemaMismatch):
		return schema.ErrKindSchema
	case errors.Is(err, model.ErrUnavailable):
		return schema.ErrKindModel
	default:
		return schema.ErrKindInternal
	}
}
