package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// fakeStore is an in-memory ModelStore for engine tests. The optional
// hooks let tests observe engine state at persistence time.
type fakeStore struct {
	mu          sync.Mutex
	generations []schema.GenerationRecord
	artifacts   map[schema.ModelName]map[int]schema.ModelArtifactRecord
	runs        map[string]schema.TrainingRunRecord

	beginHook func(rec schema.TrainingRunRecord)
	endHook   func(runID string, promoted, rejected int)
}

var _ contract.ModelStore = &fakeStore{} // Compile-time check

func newFakeStore() *fakeStore {
	return &fakeStore{
		artifacts: make(map[schema.ModelName]map[int]schema.ModelArtifactRecord),
		runs:      make(map[string]schema.TrainingRunRecord),
	}
}

func (f *fakeStore) SaveGeneration(rec schema.GenerationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generations = append(f.generations, rec)
	return nil
}

func (f *fakeStore) LoadLatestGeneration() (*schema.GenerationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *schema.GenerationRecord
	for i := range f.generations {
		if latest == nil || f.generations[i].Seq > latest.Seq {
			latest = &f.generations[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	rec := *latest
	return &rec, nil
}

func (f *fakeStore) SaveArtifact(rec schema.ModelArtifactRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.artifacts[rec.Name] == nil {
		f.artifacts[rec.Name] = make(map[int]schema.ModelArtifactRecord)
	}
	if rec.Status == schema.StatusActive {
		for v, existing := range f.artifacts[rec.Name] {
			if existing.Status == schema.StatusActive {
				existing.Status = schema.StatusRetired
				f.artifacts[rec.Name][v] = existing
			}
		}
	}
	f.artifacts[rec.Name][rec.Version] = rec
	return nil
}

func (f *fakeStore) LoadActiveArtifacts() ([]schema.ModelArtifactRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []schema.ModelArtifactRecord
	for _, versions := range f.artifacts {
		for _, rec := range versions {
			if rec.Status == schema.StatusActive {
				active = append(active, rec)
			}
		}
	}
	return active, nil
}

func (f *fakeStore) GetAllArtifacts() ([]schema.ModelArtifactRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []schema.ModelArtifactRecord
	for _, versions := range f.artifacts {
		for _, rec := range versions {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Version < all[j].Version
	})
	return all, nil
}

func (f *fakeStore) MarkArtifactStatus(name schema.ModelName, version int, status schema.ModelStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.artifacts[name][version]
	if !ok {
		return fmt.Errorf("artifact %s v%d not found", name, version)
	}
	rec.Status = status
	f.artifacts[name][version] = rec
	return nil
}

func (f *fakeStore) BeginRun(rec schema.TrainingRunRecord) error {
	f.mu.Lock()
	f.runs[rec.RunID] = rec
	f.mu.Unlock()
	if f.beginHook != nil {
		f.beginHook(rec)
	}
	return nil
}

func (f *fakeStore) EndRun(runID string, endTime time.Time, promoted, rejected int) error {
	f.mu.Lock()
	rec, ok := f.runs[runID]
	if ok {
		rec.EndTime = &endTime
		rec.Promoted = int32(promoted)
		rec.Rejected = int32(rejected)
		f.runs[runID] = rec
	}
	f.mu.Unlock()
	if f.endHook != nil {
		f.endHook(runID, promoted, rejected)
	}
	return nil
}

func (f *fakeStore) GetAllRuns() ([]schema.TrainingRunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []schema.TrainingRunRecord
	for _, rec := range f.runs {
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.Before(all[j].StartTime) })
	return all, nil
}

func (f *fakeStore) GetStatus() (schema.StoreStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := schema.StoreStatus{Backend: "fake", Connected: true, TotalRuns: len(f.runs)}
	for _, versions := range f.artifacts {
		for _, rec := range versions {
			status.TotalArtifacts++
			if rec.Status == schema.StatusActive {
				status.ActiveModels++
			}
			if rec.TrainedAt.After(status.LastTrainedAt) {
				status.LastTrainedAt = rec.TrainedAt
			}
		}
	}
	return status, nil
}

func (f *fakeStore) Close() error { return nil }

// activeCount returns how many active artifacts the store holds.
func (f *fakeStore) activeCount() int {
	active, _ := f.LoadActiveArtifacts()
	return len(active)
}

// vulnerableSnippet is one pole of the test corpus: long and packed with
// risky calls.
func vulnerableSnippet(i int) string {
	return fmt.Sprintf(`import os
import pickle

password = "hunter%d"

def run(payload, cmd):
    data = pickle.loads(payload)
    result = eval(data)
    os.system(cmd)
    exec(result)
    return result
`, i)
}

// cleanSnippet is the other pole: short and plain.
func cleanSnippet(i int) string {
	return fmt.Sprintf("def add_%d(a, b):\n    return a + b\n", i)
}

// trainingCorpus builds a balanced labeled corpus whose two poles separate
// on nearly every feature dimension.
func trainingCorpus() []schema.TrainingExample {
	yes, no := true, false
	quality := 85.0
	examples := make([]schema.TrainingExample, 0, 16)
	for i := range 8 {
		examples = append(examples, schema.TrainingExample{
			Path:       fmt.Sprintf("bad_%d.py", i),
			Content:    vulnerableSnippet(i),
			Language:   schema.LangPython,
			Vulnerable: &yes,
		})
		examples = append(examples, schema.TrainingExample{
			Path:       fmt.Sprintf("ok_%d.py", i),
			Content:    cleanSnippet(i),
			Language:   schema.LangPython,
			Vulnerable: &no,
			Quality:    &quality,
		})
	}
	return examples
}

func newTestConfig() *contract.Config {
	return &contract.Config{
		Workers:           2,
		MaxContentBytes:   contract.DefaultMaxContentBytes,
		FileTimeout:       contract.DefaultFileTimeout,
		VulnConfidence:    contract.DefaultVulnConfidence,
		PatternConfidence: contract.DefaultPatternConfidence,
		ReportRisk:        contract.DefaultReportRisk,
		Contamination:     contract.DefaultContamination,
	}
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewService(newTestConfig(), store, nil, nil), store
}

// newTrainedService trains a first generation from the test corpus.
func newTrainedService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	svc, store := newTestService(t)
	_, err := svc.TrainModels(context.Background(), trainingCorpus())
	require.NoError(t, err)
	return svc, store
}

func TestNewServiceDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, schema.TrainIdle, svc.TrainingState())

	status := svc.RegistryStatus()
	assert.Empty(t, status.GenerationID)
	assert.Empty(t, status.Records)
}

func TestLoadActiveGenerationEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.LoadActiveGeneration())
	assert.Empty(t, svc.RegistryStatus().GenerationID)
}

// TestLoadActiveGenerationRoundTrip trains one service, then restores the
// persisted generation into a fresh service backed by the same store.
func TestLoadActiveGenerationRoundTrip(t *testing.T) {
	trained, store := newTrainedService(t)
	trainedStatus := trained.RegistryStatus()
	require.NotEmpty(t, trainedStatus.GenerationID)

	restored := NewService(newTestConfig(), store, nil, nil)
	require.NoError(t, restored.LoadActiveGeneration())

	restoredStatus := restored.RegistryStatus()
	assert.Equal(t, trainedStatus.GenerationID, restoredStatus.GenerationID)
	assert.Equal(t, trainedStatus.GenerationSeq, restoredStatus.GenerationSeq)
	assert.Len(t, restoredStatus.Records, len(trainedStatus.Records))

	// The restored generation must serve inference, not just report status.
	insight, err := restored.AnalyzeCode(context.Background(), schema.CodeSample{
		Path:    "probe.py",
		Content: vulnerableSnippet(99),
	})
	require.NoError(t, err)
	assert.True(t, insight.SlotIs(schema.ModelQuality, schema.SlotAvailable))
	assert.True(t, insight.SlotIs(schema.ModelAnomaly, schema.SlotAvailable))
}

func TestStoreStatusCounts(t *testing.T) {
	svc, store := newTrainedService(t)

	status, err := svc.StoreStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 4, status.ActiveModels)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 4, store.activeCount())
}
