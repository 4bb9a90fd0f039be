package schema

import (
	"math"
	"time"
)

// MetricScore is one weighted authenticity sub-score.
type MetricScore struct {
	Weight int    `json:"weight"`
	Score  int    `json:"score"` // 0-100
	Check  string `json:"check"`
}

// AuthenticityMetrics is the weighted authenticity breakdown of a piece of text.
type AuthenticityMetrics struct {
	HookAccuracy      MetricScore `json:"hookAccuracy"`
	BridgeFrequency   MetricScore `json:"bridgeFrequency"`
	SentencePatterns  MetricScore `json:"sentencePatterns"`
	VocabularyMatch   MetricScore `json:"vocabularyMatch"`
	RhythmReplication MetricScore `json:"rhythmReplication"`
	OverallScore      int         `json:"overallScore"`
}

// Breakdown returns the sub-scores keyed by metric.
func (m AuthenticityMetrics) Breakdown() map[MetricKey]MetricScore {
	return map[MetricKey]MetricScore{
		HookAccuracyKey:      m.HookAccuracy,
		BridgeFrequencyKey:   m.BridgeFrequency,
		SentencePatternsKey:  m.SentencePatterns,
		VocabularyMatchKey:   m.VocabularyMatch,
		RhythmReplicationKey: m.RhythmReplication,
	}
}

// TotalWeight returns the sum of all sub-metric weights.
func (m AuthenticityMetrics) TotalWeight() int {
	total := 0
	for _, s := range m.Breakdown() {
		total += s.Weight
	}
	return total
}

// WeightedOverall computes round(sum(score*weight/100)).
func (m AuthenticityMetrics) WeightedOverall() int {
	sum := 0.0
	for _, s := range m.Breakdown() {
		sum += float64(s.Score) * float64(s.Weight) / 100
	}
	return int(math.Round(sum))
}

// ScriptStructure holds the five parts of a generated script.
type ScriptStructure struct {
	Hook        string `json:"hook"`
	Bridge      string `json:"bridge"`
	CoreMessage string `json:"coreMessage"`
	Escalation  string `json:"escalation"`
	Close       string `json:"close"`
}

// ScriptMetadata records generation details of a script.
type ScriptMetadata struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	TargetLength int       `json:"targetLength"` // seconds
	ActualLength float64   `json:"actualLength"` // estimated seconds
	WordCount    int       `json:"wordCount"`
}

// GeneratedScript is an immutable generator output.
type GeneratedScript struct {
	ID           string              `json:"id"`
	PersonaID    string              `json:"personaId"`
	Topic        string              `json:"topic"`
	Script       string              `json:"script"`
	Structure    ScriptStructure     `json:"structure"`
	Authenticity AuthenticityMetrics `json:"authenticity"`
	Metadata     ScriptMetadata      `json:"metadata"`
}

// ScriptGenerationInput is the request for a new script.
type ScriptGenerationInput struct {
	PersonaID    string `json:"personaId"`
	Topic        string `json:"topic"`
	TargetLength int    `json:"targetLength"` // seconds, 0 means the persona's optimal length
	Style        string `json:"style"`
}

// Violation is a single rule failure.
type Violation struct {
	RuleID  string `json:"ruleId"`
	Kind    string `json:"kind"` // never or always
	Message string `json:"message"`
}

// ValidationResult is the outcome of a rules check.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// ResultError is the error payload of a discriminated result.
type ResultError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ScriptGenerationResult is the discriminated outcome of script generation.
type ScriptGenerationResult struct {
	Success    bool             `json:"success"`
	Script     *GeneratedScript `json:"script,omitempty"`
	Attempts   int              `json:"attempts"`
	Passed     bool             `json:"passed"`
	Violations []Violation      `json:"violations,omitempty"`
	Error      *ResultError     `json:"error,omitempty"`
}

// PersonaAnalysisResult is the discriminated outcome of a persona analysis.
type PersonaAnalysisResult struct {
	Success        bool            `json:"success"`
	UserIdentifier UserIdentifier  `json:"userIdentifier"`
	Persona        *PersonaProfile `json:"persona,omitempty"`
	Error          *ResultError    `json:"error,omitempty"`
	ProcessingTime time.Duration   `json:"processingTime"`
}
