package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestInitCaching(t *testing.T) {
	t.Run("sqlite stores", func(t *testing.T) {
		resetManager(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		require.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath))
		require.NotNil(t, Manager.GetTranscriptStore())
		require.NotNil(t, Manager.GetPersonaStore())
		require.NotNil(t, Manager.GetAnalysisStore())

		require.NoError(t, Manager.GetTranscriptStore().Set("transcript:1", []byte("hi"), 1, 1))
		require.NoError(t, Manager.GetPersonaStore().SavePersona(testPersona("p-1", "coffeeguy", time.Now())))

		_, err := os.Stat(cachePath)
		assert.NoError(t, err)
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err)
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager(t)
		path := filepath.Join(t.TempDir(), "cache.db")
		assert.NoError(t, InitCaching(schema.SQLiteBackend, path, "", ""))
		assert.NoError(t, InitCaching(schema.SQLiteBackend, path, "", ""))
		assert.Nil(t, Manager.GetAnalysisStore())
		CloseCaching()
		CloseCaching()
	})

	t.Run("none backend", func(t *testing.T) {
		resetManager(t)
		require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, ""))
		status, err := Manager.GetTranscriptStore().GetStatus()
		require.NoError(t, err)
		assert.False(t, status.Connected)
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetManager(t)
		err := InitCaching(schema.DatabaseBackend("redis"), "", "", "")
		assert.ErrorContains(t, err, "failed to initialize transcript caching")
		assert.Nil(t, Manager.GetTranscriptStore())
	})
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(transcriptTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""), "missing file is fine")
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearAnalysis(schema.DatabaseBackend("redis"), "", ""))
}

func TestExportAnalysis(t *testing.T) {
	store := newSQLiteAnalysisStore(t)
	at := time.Date(2026, 6, 4, 8, 0, 0, 0, time.UTC)
	id, err := store.BeginAnalysis(at, coffeeguy, nil)
	require.NoError(t, err)
	require.NoError(t, store.EndAnalysis(id, at.Add(time.Second), "completed", 3))
	require.NoError(t, store.RecordPersonaProfile(id, testPersona("p-1", "coffeeguy", at)))
	require.NoError(t, store.RecordScriptScore(testScript("s-1", at)))

	out := filepath.Join(t.TempDir(), "export")
	var buf bytes.Buffer
	require.NoError(t, exportAnalysis(store, out, &buf))

	for _, suffix := range []string{".analysis_runs.parquet", ".persona_profiles.parquet", ".script_scores.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err, suffix)
		assert.Greater(t, info.Size(), int64(0))
	}
	assert.Contains(t, buf.String(), "Exported 1 analysis runs")
	assert.Contains(t, buf.String(), "Exported 1 script scores")
}

func TestExportAnalysis_Errors(t *testing.T) {
	assert.ErrorContains(t, exportAnalysis(&MockAnalysisStore{}, "", &bytes.Buffer{}), "--output-file")

	empty := &MockAnalysisStore{}
	empty.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true}, nil)
	assert.ErrorContains(t, exportAnalysis(empty, "out", &bytes.Buffer{}), "no analysis data")
	empty.AssertExpectations(t)

	failing := &MockAnalysisStore{}
	failing.On("GetStatus").Return(schema.AnalysisStatus{TotalRuns: 1}, nil)
	failing.On("GetAllAnalysisRuns").Return(nil, assert.AnError)
	err := exportAnalysis(failing, "out", &bytes.Buffer{})
	assert.ErrorIs(t, err, assert.AnError)
	failing.AssertNotCalled(t, "GetAllScriptScores")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend: "sqlite", Table: transcriptTable, Connected: true, TotalEntries: 2,
		LastEntryTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local), OldestEntryTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local),
		TableSizeBytes: 4096,
	})
	assert.Contains(t, buf.String(), "Table: transcript_cache\n")
	assert.Contains(t, buf.String(), "Last Entry: 2026-01-02 03:04:05\n")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes\n")

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 1, LastRunID: 4, TotalVideosAnalyzed: 9, TotalScriptsScored: 2,
		TableSizes: map[string]int64{scriptScoresTable: 2, analysisRunsTable: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 4\n")
	assert.Contains(t, out, "Total Scripts Scored: 2\n")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(scriptScoresTable)))
}
