package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable   = "persona_analysis_runs"
	profileMetricsTable = "persona_profile_metrics"
	scriptScoresTable   = "persona_script_scores"
)

// analysisTables lists the tracking tables in creation order.
var analysisTables = []string{analysisRunsTable, profileMetricsTable, scriptScoresTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// Tables are created from the embedded migrations when missing.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := applyUpMigrations(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, id schema.UserIdentifier, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (handle, platform, start_time, status, config_params) VALUES ($1, $2, $3, $4, $5) RETURNING analysis_id`, as.table(analysisRunsTable))
		err = as.db.QueryRow(query, id.Handle, string(id.Platform), startTime, string(schema.RunningStatus), string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (handle, platform, start_time, status, config_params) VALUES (?, ?, ?, ?, ?)`, as.table(analysisRunsTable))
		var result sql.Result
		result, err = as.db.Exec(query, id.Handle, string(id.Platform), formatTime(startTime, as.backend), string(schema.RunningStatus), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, status string, videosAnalyzed int) error {
	if as.disabled() {
		return nil
	}

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, as.table(analysisRunsTable), placeholder(as.backend, 1))
	start := newTimeScanner(as.backend)
	if err := as.db.QueryRow(query, analysisID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, err := start.required()
	if err != nil {
		return fmt.Errorf("failed to read start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	b := as.backend
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, status = %s, videos_analyzed = %s WHERE analysis_id = %s`,
		as.table(analysisRunsTable), placeholder(b, 1), placeholder(b, 2), placeholder(b, 3), placeholder(b, 4), placeholder(b, 5))
	if _, err := as.db.Exec(update, formatTime(endTime, b), durationMs, status, videosAnalyzed, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordPersonaProfile stores the headline numbers of a persona produced by a run.
func (as *AnalysisStoreImpl) RecordPersonaProfile(analysisID int64, persona *schema.PersonaProfile) error {
	if as.disabled() || persona == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (analysis_id, persona_id, handle, platform, analysis_time, videos_analyzed,
		                transcript_length, hook_count, bridge_count, vocabulary_size,
		                authenticity_threshold, optimal_length, pattern_rotation, typical_energy, sentence_structure)
		VALUES (%s)
	`, as.table(profileMetricsTable), placeholders(as.backend, 15))

	params := persona.GenerationParameters
	baseline := persona.SpeechPatterns.Baseline
	_, err := as.db.Exec(query,
		analysisID, persona.PersonaID, persona.UserIdentifier.Handle, string(persona.UserIdentifier.Platform),
		formatTime(persona.AnalysisDate, as.backend), persona.Metadata.VideosAnalyzed,
		persona.Metadata.TotalTranscriptLength, len(persona.VoiceProfile.Hooks), len(persona.VoiceProfile.Bridges),
		len(persona.VoiceProfile.VocabularyFingerprint), params.AuthenticityThreshold, params.OptimalLength,
		string(params.PatternRotation), string(baseline.TypicalEnergy), string(baseline.SentenceStructure),
	)
	if err != nil {
		return fmt.Errorf("failed to insert persona profile metrics: %w", err)
	}
	return nil
}

// RecordScriptScore stores the authenticity breakdown of a generated script.
func (as *AnalysisStoreImpl) RecordScriptScore(script *schema.GeneratedScript) error {
	if as.disabled() || script == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (script_id, persona_id, topic, generated_at, word_count, target_length, overall_score,
		                hook_accuracy, bridge_frequency, sentence_patterns, vocabulary_match, rhythm_replication)
		VALUES (%s)
	`, as.table(scriptScoresTable), placeholders(as.backend, 12))

	a := script.Authenticity
	_, err := as.db.Exec(query,
		script.ID, script.PersonaID, script.Topic, formatTime(script.Metadata.GeneratedAt, as.backend),
		script.Metadata.WordCount, script.Metadata.TargetLength, a.OverallScore,
		a.HookAccuracy.Score, a.BridgeFrequency.Score, a.SentencePatterns.Score,
		a.VocabularyMatch.Score, a.RhythmReplication.Score,
	)
	if err != nil {
		return fmt.Errorf("failed to insert script score: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := as.table(analysisRunsTable)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := newTimeScanner(as.backend)
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.required()
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastTime

		oldest := newTimeScanner(as.backend)
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.required()
		if err != nil {
			return status, fmt.Errorf("failed to parse oldest run time: %w", err)
		}
		status.OldestRunTime = oldestTime

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(videos_analyzed), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalVideosAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total videos analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalScriptsScored = int(status.TableSizes[scriptScoresTable])

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, handle, platform, start_time, end_time, run_duration_ms, status, videos_analyzed, config_params
		FROM %s ORDER BY analysis_id`, as.table(analysisRunsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start, end := newTimeScanner(as.backend), newTimeScanner(as.backend)
		if err := rows.Scan(&record.AnalysisID, &record.Handle, &record.Platform, start.dest(), end.dest(),
			&record.RunDurationMs, &record.Status, &record.VideosAnalyzed, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = start.required(); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllPersonaProfiles retrieves all persona profile metrics from the store.
func (as *AnalysisStoreImpl) GetAllPersonaProfiles() ([]schema.PersonaProfileRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, persona_id, handle, platform, analysis_time, videos_analyzed,
		transcript_length, hook_count, bridge_count, vocabulary_size, authenticity_threshold, optimal_length,
		pattern_rotation, typical_energy, sentence_structure
		FROM %s ORDER BY analysis_id, persona_id`, as.table(profileMetricsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query persona profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PersonaProfileRecord
	for rows.Next() {
		var r schema.PersonaProfileRecord
		at := newTimeScanner(as.backend)
		if err := rows.Scan(&r.AnalysisID, &r.PersonaID, &r.Handle, &r.Platform, at.dest(), &r.VideosAnalyzed,
			&r.TranscriptLength, &r.HookCount, &r.BridgeCount, &r.VocabularySize, &r.AuthenticityThreshold,
			&r.OptimalLength, &r.PatternRotation, &r.TypicalEnergy, &r.SentenceStructure); err != nil {
			return nil, fmt.Errorf("failed to scan persona profile: %w", err)
		}
		if r.AnalysisTime, err = at.required(); err != nil {
			return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persona profiles: %w", err)
	}
	return results, nil
}

// GetAllScriptScores retrieves all script scores from the store.
func (as *AnalysisStoreImpl) GetAllScriptScores() ([]schema.ScriptScoreRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT script_id, persona_id, topic, generated_at, word_count, target_length, overall_score,
		hook_accuracy, bridge_frequency, sentence_patterns, vocabulary_match, rhythm_replication
		FROM %s ORDER BY generated_at, script_id`, as.table(scriptScoresTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query script scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScriptScoreRecord
	for rows.Next() {
		var r schema.ScriptScoreRecord
		at := newTimeScanner(as.backend)
		if err := rows.Scan(&r.ScriptID, &r.PersonaID, &r.Topic, at.dest(), &r.WordCount, &r.TargetLength,
			&r.OverallScore, &r.HookAccuracy, &r.BridgeFrequency, &r.SentencePatterns, &r.VocabularyMatch,
			&r.RhythmReplication); err != nil {
			return nil, fmt.Errorf("failed to scan script score: %w", err)
		}
		if r.GeneratedAt, err = at.required(); err != nil {
			return nil, fmt.Errorf("failed to parse generated_at: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating script scores: %w", err)
	}
	return results, nil
}
