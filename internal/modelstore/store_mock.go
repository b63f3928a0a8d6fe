package modelstore

import (
	"time"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetModelStore implements the StoreManager interface.
func (m *MockStoreManager) GetModelStore() contract.ModelStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ModelStore)
	return store
}

// MockModelStore is a mock implementation of ModelStore for testing.
type MockModelStore struct {
	mock.Mock
}

var _ contract.ModelStore = &MockModelStore{} // Compile-time check

// SaveGeneration implements the ModelStore interface.
func (m *MockModelStore) SaveGeneration(rec schema.GenerationRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// LoadLatestGeneration implements the ModelStore interface.
func (m *MockModelStore) LoadLatestGeneration() (*schema.GenerationRecord, error) {
	args := m.Called()
	rec, _ := args.Get(0).(*schema.GenerationRecord)
	return rec, args.Error(1)
}

// SaveArtifact implements the ModelStore interface.
func (m *MockModelStore) SaveArtifact(rec schema.ModelArtifactRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// LoadActiveArtifacts implements the ModelStore interface.
func (m *MockModelStore) LoadActiveArtifacts() ([]schema.ModelArtifactRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.ModelArtifactRecord)
	return recs, args.Error(1)
}

// GetAllArtifacts implements the ModelStore interface.
func (m *MockModelStore) GetAllArtifacts() ([]schema.ModelArtifactRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.ModelArtifactRecord)
	return recs, args.Error(1)
}

// MarkArtifactStatus implements the ModelStore interface.
func (m *MockModelStore) MarkArtifactStatus(name schema.ModelName, version int, status schema.ModelStatus) error {
	args := m.Called(name, version, status)
	return args.Error(0)
}

// BeginRun implements the ModelStore interface.
func (m *MockModelStore) BeginRun(rec schema.TrainingRunRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// EndRun implements the ModelStore interface.
func (m *MockModelStore) EndRun(runID string, endTime time.Time, promoted, rejected int) error {
	args := m.Called(runID, endTime, promoted, rejected)
	return args.Error(0)
}

// GetAllRuns implements the ModelStore interface.
func (m *MockModelStore) GetAllRuns() ([]schema.TrainingRunRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.TrainingRunRecord)
	return recs, args.Error(1)
}

// GetStatus implements the ModelStore interface.
func (m *MockModelStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the ModelStore interface.
func (m *MockModelStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
