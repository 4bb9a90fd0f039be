package iocache

import (
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetTranscriptStore implements the CacheManager interface.
func (m *MockCacheManager) GetTranscriptStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetPersonaStore implements the CacheManager interface.
func (m *MockCacheManager) GetPersonaStore() contract.PersonaStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.PersonaStore)
	return store
}

// GetAnalysisStore implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Delete implements the CacheStore interface.
func (m *MockCacheStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockPersonaStore is a mock implementation of PersonaStore for testing.
type MockPersonaStore struct {
	mock.Mock
}

var _ contract.PersonaStore = &MockPersonaStore{} // Compile-time check

// SavePersona implements the PersonaStore interface.
func (m *MockPersonaStore) SavePersona(persona *schema.PersonaProfile) error {
	args := m.Called(persona)
	return args.Error(0)
}

// GetPersona implements the PersonaStore interface.
func (m *MockPersonaStore) GetPersona(personaID string) (*schema.PersonaProfile, error) {
	args := m.Called(personaID)
	persona, _ := args.Get(0).(*schema.PersonaProfile)
	return persona, args.Error(1)
}

// FindLatest implements the PersonaStore interface.
func (m *MockPersonaStore) FindLatest(id schema.UserIdentifier) (*schema.PersonaProfile, error) {
	args := m.Called(id)
	persona, _ := args.Get(0).(*schema.PersonaProfile)
	return persona, args.Error(1)
}

// ListPersonas implements the PersonaStore interface.
func (m *MockPersonaStore) ListPersonas() ([]schema.PersonaSummary, error) {
	args := m.Called()
	list, _ := args.Get(0).([]schema.PersonaSummary)
	return list, args.Error(1)
}

// DeletePersona implements the PersonaStore interface.
func (m *MockPersonaStore) DeletePersona(personaID string) error {
	args := m.Called(personaID)
	return args.Error(0)
}

// Close implements the PersonaStore interface.
func (m *MockPersonaStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginAnalysis(startTime time.Time, id schema.UserIdentifier, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, id, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndAnalysis(analysisID int64, endTime time.Time, status string, videosAnalyzed int) error {
	args := m.Called(analysisID, endTime, status, videosAnalyzed)
	return args.Error(0)
}

// RecordPersonaProfile implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordPersonaProfile(analysisID int64, persona *schema.PersonaProfile) error {
	args := m.Called(analysisID, persona)
	return args.Error(0)
}

// RecordScriptScore implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordScriptScore(script *schema.GeneratedScript) error {
	args := m.Called(script)
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllAnalysisRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return records, args.Error(1)
}

// GetAllPersonaProfiles implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllPersonaProfiles() ([]schema.PersonaProfileRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.PersonaProfileRecord)
	return records, args.Error(1)
}

// GetAllScriptScores implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllScriptScores() ([]schema.ScriptScoreRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.ScriptScoreRecord)
	return records, args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
