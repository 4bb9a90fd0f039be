// Package parquet exports persona analysis history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/voicepersona/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun maps to the persona_analysis_runs table.
type AnalysisRun struct {
	AnalysisID     int64      `parquet:"analysis_id,snappy"`
	Handle         string     `parquet:"handle,snappy,dict"`
	Platform       string     `parquet:"platform,snappy,dict"`
	StartTime      time.Time  `parquet:"start_time,snappy"`
	EndTime        *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs  *int32     `parquet:"run_duration_ms,optional,snappy"`
	Status         *string    `parquet:"status,optional,snappy,dict"`
	VideosAnalyzed int32      `parquet:"videos_analyzed,snappy"`
	// ConfigParams is the JSON-encoded configuration of the run
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PersonaProfile maps to the persona_profile_metrics table.
type PersonaProfile struct {
	AnalysisID            int64     `parquet:"analysis_id,snappy"`
	PersonaID             string    `parquet:"persona_id,snappy"`
	Handle                string    `parquet:"handle,snappy,dict"`
	Platform              string    `parquet:"platform,snappy,dict"`
	AnalysisTime          time.Time `parquet:"analysis_time,snappy"`
	VideosAnalyzed        int32     `parquet:"videos_analyzed,snappy"`
	TranscriptLength      int32     `parquet:"transcript_length,snappy"`
	HookCount             int32     `parquet:"hook_count,snappy"`
	BridgeCount           int32     `parquet:"bridge_count,snappy"`
	VocabularySize        int32     `parquet:"vocabulary_size,snappy"`
	AuthenticityThreshold int32     `parquet:"authenticity_threshold,snappy"`
	// OptimalLength is in seconds
	OptimalLength     int32  `parquet:"optimal_length,snappy"`
	PatternRotation   string `parquet:"pattern_rotation,snappy,dict"`
	TypicalEnergy     string `parquet:"typical_energy,snappy,dict"`
	SentenceStructure string `parquet:"sentence_structure,snappy,dict"`
}

// ScriptScore maps to the persona_script_scores table. Scores are 0-100.
type ScriptScore struct {
	ScriptID          string    `parquet:"script_id,snappy"`
	PersonaID         string    `parquet:"persona_id,snappy"`
	Topic             string    `parquet:"topic,snappy"`
	GeneratedAt       time.Time `parquet:"generated_at,snappy"`
	WordCount         int32     `parquet:"word_count,snappy"`
	TargetLength      int32     `parquet:"target_length,snappy"`
	OverallScore      int32     `parquet:"overall_score,snappy"`
	HookAccuracy      int32     `parquet:"hook_accuracy,snappy"`
	BridgeFrequency   int32     `parquet:"bridge_frequency,snappy"`
	SentencePatterns  int32     `parquet:"sentence_patterns,snappy"`
	VocabularyMatch   int32     `parquet:"vocabulary_match,snappy"`
	RhythmReplication int32     `parquet:"rhythm_replication,snappy"`
}

// writeParquet writes rows to a new Parquet file whose schema is inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAnalysisRunsParquet writes analysis runs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePersonaProfilesParquet writes persona profile metrics to a Parquet file.
func WritePersonaProfilesParquet(data []PersonaProfile, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteScriptScoresParquet writes script scores to a Parquet file.
func WriteScriptScoresParquet(data []ScriptScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertAnalysisRunRecords converts store records for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, r := range records {
		result[i] = AnalysisRun{
			AnalysisID:     r.AnalysisID,
			Handle:         r.Handle,
			Platform:       r.Platform,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			RunDurationMs:  r.RunDurationMs,
			Status:         r.Status,
			VideosAnalyzed: r.VideosAnalyzed,
			ConfigParams:   r.ConfigParams,
		}
	}
	return result
}

// ConvertPersonaProfileRecords converts store records for Parquet export.
func ConvertPersonaProfileRecords(records []schema.PersonaProfileRecord) []PersonaProfile {
	result := make([]PersonaProfile, len(records))
	for i, r := range records {
		result[i] = PersonaProfile(r)
	}
	return result
}

// ConvertScriptScoreRecords converts store records for Parquet export.
func ConvertScriptScoreRecords(records []schema.ScriptScoreRecord) []ScriptScore {
	result := make([]ScriptScore, len(records))
	for i, r := range records {
		result[i] = ScriptScore(r)
	}
	return result
}
