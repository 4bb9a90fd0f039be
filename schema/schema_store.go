package schema

import "time"

// AnalysisRunRecord represents a row from the persona_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	Handle         string
	Platform       string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	Status         *string
	VideosAnalyzed int32
	ConfigParams   *string
}

// PersonaProfileRecord represents a row from the persona_profile_metrics table.
type PersonaProfileRecord struct {
	AnalysisID            int64
	PersonaID             string
	Handle                string
	Platform              string
	AnalysisTime          time.Time
	VideosAnalyzed        int32
	TranscriptLength      int32
	HookCount             int32
	BridgeCount           int32
	VocabularySize        int32
	AuthenticityThreshold int32
	OptimalLength         int32
	PatternRotation       string
	TypicalEnergy         string
	SentenceStructure     string
}

// ScriptScoreRecord represents a row from the persona_script_scores table.
type ScriptScoreRecord struct {
	ScriptID          string
	PersonaID         string
	Topic             string
	GeneratedAt       time.Time
	WordCount         int32
	TargetLength      int32
	OverallScore      int32
	HookAccuracy      int32
	BridgeFrequency   int32
	SentencePatterns  int32
	VocabularyMatch   int32
	RhythmReplication int32
}
