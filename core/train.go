package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/core/model"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// Training pipeline constraints.
const (
	// MinTrainingExamples is the corpus floor below which a run refuses to
	// start at all.
	MinTrainingExamples = 10

	// ValidationSplit is the hold-out share of the corpus.
	ValidationSplit = 0.2

	// PromoteTolerance is how far a candidate's validation accuracy may sit
	// below the active model's before the candidate is rejected.
	PromoteTolerance = 0.02

	// splitSeed fixes the train/validation shuffle so retraining the same
	// corpus reproduces the same split.
	splitSeed = 0x51de
)

// ErrTrainingBusy reports a training run already in progress. Only one run
// executes at a time; inference is never blocked by it.
var ErrTrainingBusy = errors.New("training already in progress")

// trainSample is one corpus example with its extracted features and the
// baseline quality targets computed from its content.
type trainSample struct {
	example    schema.TrainingExample
	vector     schema.FeatureVector
	normalized schema.FeatureVector
	baseline   schema.QualityScore
}

// kindOutcome tracks one model kind through fit, validation and promotion.
type kindOutcome struct {
	version  int
	fitErr   error
	accuracy float64
	promoted bool
}

// TrainModels runs the full training pipeline: deterministic split, scaler
// fit, four concurrent model fits, hold-out validation and per-kind
// promotion against the active generation. Rejected kinds keep their prior
// model; one promotion is enough to install a new generation. The returned
// map reports this run's outcome per kind.
func (s *Service) TrainModels(ctx context.Context, examples []schema.TrainingExample) (map[schema.ModelName]schema.ModelRecord, error) {
	// --- 0. Admission ---
	if len(examples) < MinTrainingExamples {
		return nil, fmt.Errorf("training needs at least %d examples, got %d", MinTrainingExamples, len(examples))
	}
	if !s.trainMu.TryLock() {
		return nil, ErrTrainingBusy
	}
	defer s.trainMu.Unlock()
	defer s.trainState.Store(schema.TrainIdle)

	runID := uuid.NewString()
	if err := s.store.BeginRun(schema.TrainingRunRecord{
		RunID:        runID,
		StartTime:    time.Now(),
		ExampleCount: int32(len(examples)),
	}); err != nil {
		contract.LogWarn("Training run tracking failed", err)
	}

	s.trainState.Store(schema.TrainFitting)

	// --- 1. Feature Extraction and Split ---
	corpus := s.buildCorpus(ctx, examples)
	trainSet, holdout := splitCorpus(corpus)

	// --- 2. Scaler Fit on the Training Split ---
	vectors := make([]schema.FeatureVector, len(trainSet))
	for i, ts := range trainSet {
		vectors[i] = ts.vector
	}
	scaler, err := feature.FitScaler(vectors)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	if err := normalizeSamples(scaler, trainSet); err != nil {
		return nil, err
	}
	if err := normalizeSamples(scaler, holdout); err != nil {
		return nil, err
	}

	// --- 3. Candidate Versions ---
	prior := s.registry.Snapshot()
	outcomes := make(map[schema.ModelName]*kindOutcome, len(schema.AllModelNames))
	for _, name := range schema.AllModelNames {
		outcomes[name] = &kindOutcome{version: nextVersion(prior, name)}
	}

	contamination := s.cfg.Contamination
	if contamination <= 0 {
		contamination = contract.DefaultContamination
	}

	// --- 4. Concurrent Fits ---
	// A kind that fails to fit is rejected on its own; it must not cancel
	// the other three, so fit errors land in the outcome instead of the
	// group. The group error only carries cancellation.
	var (
		vulnCand    *model.VulnerabilityModel
		qualityCand *model.QualityModel
		patternCand *model.PatternModel
		anomalyCand *model.AnomalyModel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		vulnCand, outcomes[schema.ModelVulnerability].fitErr = fitVulnerabilityCandidate(trainSet, outcomes[schema.ModelVulnerability].version)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		qualityCand, outcomes[schema.ModelQuality].fitErr = fitQualityCandidate(trainSet, outcomes[schema.ModelQuality].version)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		patternCand, outcomes[schema.ModelPattern].fitErr = fitPatternCandidate(trainSet)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		anomalyCand, outcomes[schema.ModelAnomaly].fitErr = fitAnomalyCandidate(trainSet, contamination, outcomes[schema.ModelAnomaly].version)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// --- 5. Hold-out Validation ---
	s.trainState.Store(schema.TrainValidating)
	if vulnCand != nil {
		outcomes[schema.ModelVulnerability].accuracy = vulnAccuracy(vulnCand, holdout, trainSet)
	}
	if qualityCand != nil {
		outcomes[schema.ModelQuality].accuracy = qualityAccuracy(qualityCand, holdout)
	}
	if patternCand != nil {
		outcomes[schema.ModelPattern].accuracy = patternAccuracy(patternCand, holdout)
	}
	if anomalyCand != nil {
		outcomes[schema.ModelAnomaly].accuracy = anomalyAccuracy(anomalyCand, holdout, contamination)
	}

	// --- 6. Promotion Decisions ---
	promoted, rejected := 0, 0
	for _, name := range schema.AllModelNames {
		o := outcomes[name]
		if o.fitErr != nil {
			contract.LogWarn(fmt.Sprintf("Fit failed for %s model", name), o.fitErr)
			rejected++
			continue
		}
		priorAcc := 0.0
		if prior != nil {
			if rec, ok := prior.Record(name); ok {
				priorAcc = rec.Accuracy
			}
		}
		if o.accuracy >= priorAcc-PromoteTolerance {
			o.promoted = true
			promoted++
		} else {
			rejected++
		}
	}

	trainedAt := time.Now()
	result := make(map[schema.ModelName]schema.ModelRecord, len(schema.AllModelNames))
	for _, name := range schema.AllModelNames {
		o := outcomes[name]
		status := schema.StatusError
		if o.promoted {
			status = schema.StatusActive
		}
		result[name] = schema.ModelRecord{
			Name:      name,
			Version:   o.version,
			Accuracy:  o.accuracy,
			Status:    status,
			TrainedAt: trainedAt,
		}
	}

	if promoted > 0 {
		s.trainState.Store(schema.TrainPromoted)
	} else {
		s.trainState.Store(schema.TrainRejected)
	}

	// --- 7. Persistence and Install ---
	// The new generation installs only after its rows are saved, so a store
	// failure leaves the active generation untouched.
	if promoted > 0 {
		gen := &model.Generation{
			Seq:           1,
			ID:            uuid.NewString(),
			CreatedAt:     trainedAt,
			SchemaVersion: feature.SchemaVersion,
			Scaler:        scaler,
			Scalers:       make(map[schema.ModelName]*feature.ScalerParams, len(schema.AllModelNames)),
			Records:       make(map[schema.ModelName]schema.ModelRecord, len(schema.AllModelNames)),
		}
		if prior != nil {
			gen.Seq = prior.Seq + 1
		}
		for _, name := range schema.AllModelNames {
			if outcomes[name].promoted {
				gen.Records[name] = result[name]
				gen.Scalers[name] = scaler
				continue
			}
			// Rejected or failed kinds carry the prior model unchanged,
			// paired with the scaler of the run that fitted it. Handing a
			// carried model this run's scaler would feed it inputs it was
			// never validated against.
			if prior != nil && prior.Has(name) {
				gen.Records[name] = prior.Records[name]
				gen.Scalers[name] = prior.ScalerFor(name)
			}
		}
		if outcomes[schema.ModelVulnerability].promoted {
			gen.Vulnerability = vulnCand
		} else if prior != nil {
			gen.Vulnerability = prior.Vulnerability
		}
		if outcomes[schema.ModelQuality].promoted {
			gen.Quality = qualityCand
		} else if prior != nil {
			gen.Quality = prior.Quality
		}
		if outcomes[schema.ModelPattern].promoted {
			gen.Pattern = patternCand
		} else if prior != nil {
			gen.Pattern = prior.Pattern
		}
		if outcomes[schema.ModelAnomaly].promoted {
			gen.Anomaly = anomalyCand
		} else if prior != nil {
			gen.Anomaly = prior.Anomaly
		}

		if err := s.persistGeneration(gen, outcomes); err != nil {
			return nil, err
		}
		s.registry.Install(gen)
	}

	// Rejected candidates persist with status error for run history. They
	// were fitted under this run's scaler, so that is what their payload
	// records.
	saveRejected := func(name schema.ModelName, payload any) {
		o := outcomes[name]
		if o.promoted || o.fitErr != nil {
			return
		}
		raw, err := model.EncodeArtifactPayload(scaler, payload)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Serialize rejected %s model failed", name), err)
			return
		}
		if err := s.store.SaveArtifact(schema.ModelArtifactRecord{
			Name:      name,
			Version:   o.version,
			Accuracy:  o.accuracy,
			Status:    schema.StatusError,
			TrainedAt: trainedAt,
			Payload:   raw,
		}); err != nil {
			contract.LogWarn(fmt.Sprintf("Persist rejected %s model failed", name), err)
		}
	}
	saveRejected(schema.ModelVulnerability, vulnCand)
	saveRejected(schema.ModelQuality, qualityCand)
	saveRejected(schema.ModelPattern, patternCand)
	saveRejected(schema.ModelAnomaly, anomalyCand)

	if err := s.store.EndRun(runID, time.Now(), promoted, rejected); err != nil {
		contract.LogWarn("Training run completion tracking failed", err)
	}

	return result, nil
}

// persistGeneration saves the generation row and every promoted artifact.
func (s *Service) persistGeneration(gen *model.Generation, outcomes map[schema.ModelName]*kindOutcome) error {
	scalerPayload, err := gen.EncodeScaler()
	if err != nil {
		return fmt.Errorf("serialize scaler: %w", err)
	}
	if err := s.store.SaveGeneration(schema.GenerationRecord{
		Seq:           gen.Seq,
		GenerationID:  gen.ID,
		CreatedAt:     gen.CreatedAt,
		SchemaVersion: gen.SchemaVersion,
		ScalerPayload: scalerPayload,
	}); err != nil {
		return fmt.Errorf("persist generation: %w", err)
	}
	for _, name := range schema.AllModelNames {
		if !outcomes[name].promoted {
			continue
		}
		payload, err := gen.EncodeArtifact(name)
		if err != nil {
			return fmt.Errorf("serialize %s artifact: %w", name, err)
		}
		rec := gen.Records[name]
		if err := s.store.SaveArtifact(schema.ModelArtifactRecord{
			Name:      name,
			Version:   rec.Version,
			Accuracy:  rec.Accuracy,
			Status:    schema.StatusActive,
			TrainedAt: rec.TrainedAt,
			Payload:   payload,
		}); err != nil {
			return fmt.Errorf("persist %s artifact: %w", name, err)
		}
	}
	return nil
}

// buildCorpus extracts features and baseline targets for every example.
func (s *Service) buildCorpus(ctx context.Context, examples []schema.TrainingExample) []trainSample {
	corpus := make([]trainSample, len(examples))
	for i, ex := range examples {
		sample := schema.CodeSample{Path: ex.Path, Content: ex.Content, Language: ex.Language}
		sample.Language = s.resolveLanguage(sample)
		vec, _ := s.extractor.Extract(ctx, sample)
		corpus[i] = trainSample{
			example:  ex,
			vector:   vec,
			baseline: model.ComputeBaseline(ex.Content, sample.Language, vec),
		}
	}
	return corpus
}

// splitCorpus shuffles deterministically and carves off the hold-out share.
func splitCorpus(corpus []trainSample) (trainSet, holdout []trainSample) {
	rng := rand.New(rand.NewPCG(splitSeed, uint64(len(corpus))))
	perm := rng.Perm(len(corpus))

	valN := max(1, int(float64(len(corpus))*ValidationSplit))
	holdout = make([]trainSample, 0, valN)
	trainSet = make([]trainSample, 0, len(corpus)-valN)
	for i, p := range perm {
		if i < valN {
			holdout = append(holdout, corpus[p])
		} else {
			trainSet = append(trainSet, corpus[p])
		}
	}
	return trainSet, holdout
}

// normalizeSamples applies the scaler in place.
func normalizeSamples(scaler *feature.ScalerParams, samples []trainSample) error {
	for i := range samples {
		normalized, err := scaler.Apply(samples[i].vector)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", samples[i].example.Path, err)
		}
		samples[i].normalized = normalized
	}
	return nil
}

// nextVersion picks the candidate version for one kind: one past the active
// record, or 1 on a cold start.
func nextVersion(prior *model.Generation, name schema.ModelName) int {
	if prior != nil {
		if rec, ok := prior.Record(name); ok {
			return rec.Version + 1
		}
	}
	return 1
}

// fitVulnerabilityCandidate trains the classifier on the labeled subset of
// the training split.
func fitVulnerabilityCandidate(trainSet []trainSample, version int) (*model.VulnerabilityModel, error) {
	xs := make([][]float64, 0, len(trainSet))
	ys := make([]float64, 0, len(trainSet))
	for _, ts := range trainSet {
		if ts.example.Vulnerable == nil {
			continue
		}
		xs = append(xs, ts.normalized)
		if *ts.example.Vulnerable {
			ys = append(ys, 1)
		} else {
			ys = append(ys, 0)
		}
	}
	return model.FitVulnerability(xs, ys, version)
}

// fitQualityCandidate trains the regressor against baseline targets
// computed from every training sample's content.
func fitQualityCandidate(trainSet []trainSample, version int) (*model.QualityModel, error) {
	xs := make([][]float64, len(trainSet))
	targets := make([]schema.QualityScore, len(trainSet))
	for i, ts := range trainSet {
		xs[i] = ts.normalized
		targets[i] = ts.baseline
	}
	return model.FitQuality(xs, targets, version)
}

// fitPatternCandidate clusters the training split contents. The fit is
// fully deterministic, so it takes no version seed.
func fitPatternCandidate(trainSet []trainSample) (*model.PatternModel, error) {
	contents := make([]string, len(trainSet))
	for i, ts := range trainSet {
		contents[i] = ts.example.Content
	}
	return model.FitPattern(contents)
}

// fitAnomalyCandidate trains the isolation forest on the training split.
func fitAnomalyCandidate(trainSet []trainSample, contamination float64, version int) (*model.AnomalyModel, error) {
	xs := make([][]float64, len(trainSet))
	for i, ts := range trainSet {
		xs[i] = ts.normalized
	}
	return model.FitAnomaly(xs, contamination, version)
}

// vulnAccuracy is the balanced accuracy over the labeled hold-out. When the
// hold-out carries no labels at all, the training split stands in so a
// small corpus still yields a comparable number.
func vulnAccuracy(m *model.VulnerabilityModel, holdout, trainSet []trainSample) float64 {
	if acc, ok := balancedAccuracy(m, holdout); ok {
		return acc
	}
	acc, _ := balancedAccuracy(m, trainSet)
	return acc
}

// balancedAccuracy averages per-class recall over whichever labeled classes
// the set contains. The second return is false when the set has no labels.
func balancedAccuracy(m *model.VulnerabilityModel, set []trainSample) (float64, bool) {
	var posTotal, posHit, negTotal, negHit int
	for _, ts := range set {
		if ts.example.Vulnerable == nil {
			continue
		}
		pred, err := m.Predict(ts.normalized, ts.vector)
		if err != nil {
			continue
		}
		predicted := pred.RiskScore >= 0.5
		if *ts.example.Vulnerable {
			posTotal++
			if predicted {
				posHit++
			}
		} else {
			negTotal++
			if !predicted {
				negHit++
			}
		}
	}
	sum, classes := 0.0, 0
	if posTotal > 0 {
		sum += float64(posHit) / float64(posTotal)
		classes++
	}
	if negTotal > 0 {
		sum += float64(negHit) / float64(negTotal)
		classes++
	}
	if classes == 0 {
		return 0, false
	}
	return sum / float64(classes), true
}

// qualityAccuracy maps the hold-out mean absolute error of the blended
// overall score onto 0-1. Explicit quality labels take priority over the
// baseline target.
func qualityAccuracy(m *model.QualityModel, holdout []trainSample) float64 {
	var sum float64
	var n int
	for _, ts := range holdout {
		q, err := m.Predict(ts.normalized)
		if err != nil {
			continue
		}
		target := ts.baseline.OverallScore
		if ts.example.Quality != nil {
			target = *ts.example.Quality
		}
		sum += math.Abs(q.OverallScore - target)
		n++
	}
	if n == 0 {
		return 0
	}
	return 1 - math.Min(sum/float64(n)/100, 1)
}

// patternAccuracy is the share of hold-out samples landing inside any
// cluster radius.
func patternAccuracy(m *model.PatternModel, holdout []trainSample) float64 {
	if len(holdout) == 0 {
		return 0
	}
	assigned := 0
	for _, ts := range holdout {
		if len(m.Detect(ts.example.Content)) > 0 {
			assigned++
		}
	}
	return float64(assigned) / float64(len(holdout))
}

// anomalyAccuracy compares the observed hold-out outlier share against the
// configured contamination.
func anomalyAccuracy(m *model.AnomalyModel, holdout []trainSample, contamination float64) float64 {
	if len(holdout) == 0 {
		return 0
	}
	flagged := 0
	for _, ts := range holdout {
		flag, err := m.Flag(ts.normalized)
		if err != nil {
			continue
		}
		if flag.IsOutlier {
			flagged++
		}
	}
	share := float64(flagged) / float64(len(holdout))
	return 1 - math.Min(math.Abs(share-contamination)/contamination, 1)
}
