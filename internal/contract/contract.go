// Package contract has the interfaces, configuration and helpers shared across voicepersona.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/voicepersona/schema"
)

// Transcriber turns a public video URL into a transcript.
// Retries are the implementation's concern.
type Transcriber interface {
	Transcribe(ctx context.Context, videoURL string) (schema.TranscriptionResult, error)
}

// FeedClient lists the most recent videos of a creator.
type FeedClient interface {
	FetchUserVideos(ctx context.Context, handle string, count int) ([]schema.FeedVideo, error)
}

// CacheManager provides access to the stores.
type CacheManager interface {
	GetTranscriptStore() CacheStore
	GetPersonaStore() PersonaStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore is a versioned key-value store.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ErrPersonaNotFound is returned when no stored persona matches a lookup.
var ErrPersonaNotFound = errors.New("persona not found")

// PersonaStore persists analyzed personas between invocations.
type PersonaStore interface {
	SavePersona(persona *schema.PersonaProfile) error
	GetPersona(personaID string) (*schema.PersonaProfile, error)
	FindLatest(id schema.UserIdentifier) (*schema.PersonaProfile, error)
	ListPersonas() ([]schema.PersonaSummary, error)
	DeletePersona(personaID string) error
	Close() error
}

// AnalysisStore tracks analysis runs, persona snapshots and script scores.
type AnalysisStore interface {
	BeginAnalysis(startTime time.Time, id schema.UserIdentifier, configParams map[string]any) (int64, error)
	EndAnalysis(analysisID int64, endTime time.Time, status string, videosAnalyzed int) error
	RecordPersonaProfile(analysisID int64, persona *schema.PersonaProfile) error
	RecordScriptScore(script *schema.GeneratedScript) error
	GetStatus() (schema.AnalysisStatus, error)
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)
	GetAllPersonaProfiles() ([]schema.PersonaProfileRecord, error)
	GetAllScriptScores() ([]schema.ScriptScoreRecord, error)
	Close() error
}
