package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coffeeguy = schema.UserIdentifier{Handle: "coffeeguy", Platform: schema.TikTokPlatform}

func newSQLiteAnalysisStore(t *testing.T) contract.AnalysisStore {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testScript(id string, at time.Time) *schema.GeneratedScript {
	return &schema.GeneratedScript{
		ID:        id,
		PersonaID: "p-1",
		Topic:     "cold brew",
		Authenticity: schema.AuthenticityMetrics{
			HookAccuracy:      schema.MetricScore{Weight: 25, Score: 100},
			BridgeFrequency:   schema.MetricScore{Weight: 20, Score: 80},
			SentencePatterns:  schema.MetricScore{Weight: 20, Score: 70},
			VocabularyMatch:   schema.MetricScore{Weight: 20, Score: 60},
			RhythmReplication: schema.MetricScore{Weight: 15, Score: 90},
			OverallScore:      80,
		},
		Metadata: schema.ScriptMetadata{GeneratedAt: at, TargetLength: 30, WordCount: 88},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginAnalysis(time.Now(), coffeeguy, map[string]any{"max_videos": 20})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), id)
	assert.NoError(t, store.EndAnalysis(1, time.Now(), "completed", 10))
	assert.NoError(t, store.RecordPersonaProfile(1, testPersona("p-1", "coffeeguy", time.Now())))
	assert.NoError(t, store.RecordScriptScore(testScript("s-1", time.Now())))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestAnalysisStore_RunLifecycle(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	id, err := store.BeginAnalysis(start, coffeeguy, map[string]any{"max_videos": 20})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "coffeeguy", runs[0].Handle)
	assert.Equal(t, "tiktok", runs[0].Platform)
	assert.True(t, start.Equal(runs[0].StartTime))
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	require.NotNil(t, runs[0].Status)
	assert.Equal(t, "running", *runs[0].Status)
	require.NotNil(t, runs[0].ConfigParams)
	assert.JSONEq(t, `{"max_videos":20}`, *runs[0].ConfigParams)

	require.NoError(t, store.EndAnalysis(id, start.Add(1500*time.Millisecond), "completed", 12))

	runs, err = store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotNil(t, runs[0].EndTime)
	assert.True(t, start.Add(1500*time.Millisecond).Equal(*runs[0].EndTime))
	require.NotNil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(1500), *runs[0].RunDurationMs)
	assert.Equal(t, "completed", *runs[0].Status)
	assert.Equal(t, int32(12), runs[0].VideosAnalyzed)
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	assert.Error(t, store.EndAnalysis(999, time.Now(), "completed", 1))
}

func TestAnalysisStore_Records(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	at := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)

	id, err := store.BeginAnalysis(at, coffeeguy, nil)
	require.NoError(t, err)

	persona := testPersona("p-1", "coffeeguy", at)
	persona.Metadata.TotalTranscriptLength = 4200
	persona.VoiceProfile.VocabularyFingerprint = []string{"literally", "vibe", "no cap"}
	persona.GenerationParameters.PatternRotation = schema.PatternRotation("weighted")
	persona.SpeechPatterns.Baseline.TypicalEnergy = schema.EnergyLevel("high")
	persona.SpeechPatterns.Baseline.SentenceStructure = schema.SentenceStructure("short")
	require.NoError(t, store.RecordPersonaProfile(id, persona))

	profiles, err := store.GetAllPersonaProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	p := profiles[0]
	assert.Equal(t, id, p.AnalysisID)
	assert.Equal(t, "p-1", p.PersonaID)
	assert.True(t, at.Equal(p.AnalysisTime))
	assert.Equal(t, int32(12), p.VideosAnalyzed)
	assert.Equal(t, int32(4200), p.TranscriptLength)
	assert.Equal(t, int32(2), p.HookCount)
	assert.Equal(t, int32(1), p.BridgeCount)
	assert.Equal(t, int32(3), p.VocabularySize)
	assert.Equal(t, int32(85), p.AuthenticityThreshold)
	assert.Equal(t, int32(30), p.OptimalLength)
	assert.Equal(t, "weighted", p.PatternRotation)
	assert.Equal(t, "high", p.TypicalEnergy)
	assert.Equal(t, "short", p.SentenceStructure)

	require.NoError(t, store.RecordScriptScore(testScript("s-2", at.Add(time.Minute))))
	require.NoError(t, store.RecordScriptScore(testScript("s-1", at)))

	scores, err := store.GetAllScriptScores()
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "s-1", scores[0].ScriptID)
	assert.Equal(t, "s-2", scores[1].ScriptID)
	assert.Equal(t, int32(80), scores[0].OverallScore)
	assert.Equal(t, int32(100), scores[0].HookAccuracy)
	assert.Equal(t, int32(90), scores[0].RhythmReplication)
	assert.Equal(t, int32(88), scores[0].WordCount)

	assert.Error(t, store.RecordScriptScore(testScript("s-1", at)), "script IDs are unique")
}

func TestAnalysisStore_Status(t *testing.T) {
	store := newSQLiteAnalysisStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, map[string]int64{analysisRunsTable: 0, profileMetricsTable: 0, scriptScoresTable: 0}, status.TableSizes)

	first := time.Date(2026, 6, 3, 8, 0, 0, 0, time.UTC)
	id1, err := store.BeginAnalysis(first, coffeeguy, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndAnalysis(id1, first.Add(time.Second), "completed", 5))
	id2, err := store.BeginAnalysis(first.Add(time.Hour), coffeeguy, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndAnalysis(id2, first.Add(time.Hour+time.Second), "completed", 7))
	require.NoError(t, store.RecordScriptScore(testScript("s-1", first)))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, id2, status.LastRunID)
	assert.True(t, first.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 12, status.TotalVideosAnalyzed)
	assert.Equal(t, 1, status.TotalScriptsScored)
	assert.Equal(t, int64(2), status.TableSizes[analysisRunsTable])
}
