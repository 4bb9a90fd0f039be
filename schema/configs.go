package schema

import "time"

// Persona analysis defaults.
const (
	DefaultBatchSize           = 5
	DefaultMaxVideos           = 20
	DefaultCacheTTL            = 24 * time.Hour
	DefaultRequestsPerMinute   = 30
	DefaultBurstLimit          = 5
	DefaultMinTranscriptLength = 50
)

// RateLimitConfig bounds how fast the transcription service is called.
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requestsPerMinute" mapstructure:"requests-per-minute"`
	BurstLimit        int `json:"burstLimit" mapstructure:"burst-limit"`
}

// AnalysisOptions tunes the pattern extraction step.
type AnalysisOptions struct {
	MinTranscriptLength     int         `json:"minTranscriptLength" mapstructure:"min-transcript-length"`
	PatternSensitivity      Sensitivity `json:"patternSensitivity" mapstructure:"pattern-sensitivity"`
	EnableEmotionalAnalysis bool        `json:"enableEmotionalAnalysis" mapstructure:"enable-emotional-analysis"`
}

// PersonaAnalysisConfig holds the settings of feed retrieval and persona analysis.
type PersonaAnalysisConfig struct {
	BatchSize int             `json:"batchSize" mapstructure:"batch-size"`
	MaxVideos int             `json:"maxVideos" mapstructure:"max-videos"`
	CacheTTL  time.Duration   `json:"cacheTtl" mapstructure:"cache-ttl"`
	RateLimit RateLimitConfig `json:"rateLimit" mapstructure:"rate-limit"`
	Analysis  AnalysisOptions `json:"analysis" mapstructure:"analysis"`
}

// DefaultPersonaAnalysisConfig returns the analysis defaults.
func DefaultPersonaAnalysisConfig() PersonaAnalysisConfig {
	return PersonaAnalysisConfig{
		BatchSize: DefaultBatchSize,
		MaxVideos: DefaultMaxVideos,
		CacheTTL:  DefaultCacheTTL,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: DefaultRequestsPerMinute,
			BurstLimit:        DefaultBurstLimit,
		},
		Analysis: AnalysisOptions{
			MinTranscriptLength:     DefaultMinTranscriptLength,
			PatternSensitivity:      MediumSensitivity,
			EnableEmotionalAnalysis: true,
		},
	}
}

// EffectiveBatchSize is the number of videos transcribed concurrently.
func (c PersonaAnalysisConfig) EffectiveBatchSize() int {
	return max(1, min(c.BatchSize, c.RateLimit.BurstLimit))
}

// BatchDelay is the pause between two batches of n requests.
func (c PersonaAnalysisConfig) BatchDelay(n int) time.Duration {
	if c.RateLimit.RequestsPerMinute <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(60.0/float64(c.RateLimit.RequestsPerMinute)*1000*float64(n)) * time.Millisecond
}

// Merge applies the non-zero fields of o on top of c.
func (c PersonaAnalysisConfig) Merge(o PersonaAnalysisConfig) PersonaAnalysisConfig {
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.MaxVideos > 0 {
		c.MaxVideos = o.MaxVideos
	}
	if o.CacheTTL > 0 {
		c.CacheTTL = o.CacheTTL
	}
	if o.RateLimit.RequestsPerMinute > 0 {
		c.RateLimit.RequestsPerMinute = o.RateLimit.RequestsPerMinute
	}
	if o.RateLimit.BurstLimit > 0 {
		c.RateLimit.BurstLimit = o.RateLimit.BurstLimit
	}
	if o.Analysis.MinTranscriptLength > 0 {
		c.Analysis.MinTranscriptLength = o.Analysis.MinTranscriptLength
	}
	if o.Analysis.PatternSensitivity != "" {
		c.Analysis.PatternSensitivity = o.Analysis.PatternSensitivity
	}
	return c
}
