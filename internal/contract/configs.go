package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/voicepersona/core/generate"
	"github.com/huangsam/voicepersona/core/rules"
	"github.com/huangsam/voicepersona/core/scoring"
	"github.com/huangsam/voicepersona/schema"
)

// Default values for configuration.
const (
	DefaultRequestTimeout = 60 * time.Second
	MaxVideosLimit        = 100
	MaxRetriesLimit       = 10
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct remains the "final, validated" config.
type Config struct {
	Platform schema.Platform
	Persona  schema.PersonaAnalysisConfig

	Generation generate.Config
	Rules      rules.Config
	Scoring    scoring.Config

	Topic        string
	Style        string
	TargetLength int // seconds, 0 means the persona's optimal length

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  string
	LogFormat string

	FeedBaseURL       string
	FeedAPIKey        string // Please use env var as this is plaintext
	TranscribeBaseURL string
	TranscribeAPIKey  string // Please use env var as this is plaintext
	RequestTimeout    time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// Clone returns a copy of the config that can be modified without touching the original.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Rules.ForbiddenFormalWords = slices.Clone(c.Rules.ForbiddenFormalWords)
	return &clone
}

// ScoringRawInput holds the optional scoring section of the config file.
type ScoringRawInput struct {
	MinPassingScore   *int     `mapstructure:"min-passing-score"`
	PenaltyMultiplier *float64 `mapstructure:"penalty-multiplier"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Platform          string `mapstructure:"platform"`
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	LogLevel          string `mapstructure:"log-level"`
	LogFormat         string `mapstructure:"log-format"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`

	// --- Collaborator endpoints ---
	FeedURL          string `mapstructure:"feed-url"`
	FeedAPIKey       string `mapstructure:"feed-api-key"`
	TranscribeURL    string `mapstructure:"transcribe-url"`
	TranscribeAPIKey string `mapstructure:"transcribe-api-key"`
	RequestTimeout   string `mapstructure:"request-timeout"`

	// --- Fields from analyzeCmd.Flags() ---
	BatchSize           int    `mapstructure:"batch-size"`
	MaxVideos           int    `mapstructure:"max-videos"`
	CacheTTL            string `mapstructure:"cache-ttl"`
	RequestsPerMinute   int    `mapstructure:"requests-per-minute"`
	BurstLimit          int    `mapstructure:"burst-limit"`
	MinTranscriptLength int    `mapstructure:"min-transcript-length"`
	Sensitivity         string `mapstructure:"sensitivity"`
	EmotionalAnalysis   string `mapstructure:"emotional-analysis"`

	// --- Fields from generateCmd.Flags() ---
	Topic               string `mapstructure:"topic"`
	Style               string `mapstructure:"style"`
	TargetLength        int    `mapstructure:"target-length"`
	MaxRetries          int    `mapstructure:"max-retries"`
	MinScore            int    `mapstructure:"min-score"`
	RuleValidation      string `mapstructure:"rule-validation"`
	AuthenticityScoring string `mapstructure:"authenticity-scoring"`

	// --- Config file sections ---
	Rules   rules.Overrides `mapstructure:"rules"`
	Scoring ScoringRawInput `mapstructure:"scoring"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisConfig(cfg, input); err != nil {
		return err
	}
	if err := processGenerationConfig(cfg, input); err != nil {
		return err
	}
	if err := processCollaborators(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// The analysis tables get their own SQLite file so clearing one never drops the other
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and storage fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = input.LogLevel
	cfg.LogFormat = input.LogFormat

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Platform = schema.Platform(strings.ToLower(strings.TrimSpace(input.Platform)))
	if cfg.Platform == "" {
		cfg.Platform = schema.TikTokPlatform
	}
	if _, ok := schema.ValidPlatforms[cfg.Platform]; !ok {
		return fmt.Errorf("invalid platform '%s'. must be tiktok, instagram", input.Platform)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	return validateBackendConfigs(cfg, input)
}

// processAnalysisConfig builds the persona analysis settings on top of the defaults.
func processAnalysisConfig(cfg *Config, input *ConfigRawInput) error {
	if input.BatchSize < 0 || input.BurstLimit < 0 || input.RequestsPerMinute < 0 || input.MinTranscriptLength < 0 {
		return fmt.Errorf("batch-size, burst-limit, requests-per-minute and min-transcript-length cannot be negative")
	}
	if input.MaxVideos < 0 || input.MaxVideos > MaxVideosLimit {
		return fmt.Errorf("max-videos must be between 1 and %d (received %d)", MaxVideosLimit, input.MaxVideos)
	}

	override := schema.PersonaAnalysisConfig{
		BatchSize: input.BatchSize,
		MaxVideos: input.MaxVideos,
		RateLimit: schema.RateLimitConfig{
			RequestsPerMinute: input.RequestsPerMinute,
			BurstLimit:        input.BurstLimit,
		},
		Analysis: schema.AnalysisOptions{
			MinTranscriptLength: input.MinTranscriptLength,
			PatternSensitivity:  schema.Sensitivity(strings.ToLower(input.Sensitivity)),
		},
	}
	if s := override.Analysis.PatternSensitivity; s != "" {
		if _, ok := schema.ValidSensitivities[s]; !ok {
			return fmt.Errorf("invalid sensitivity '%s'. must be low, medium, high", input.Sensitivity)
		}
	}
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("invalid cache-ttl '%s'. expected a positive duration like 24h", input.CacheTTL)
		}
		override.CacheTTL = ttl
	}

	cfg.Persona = schema.DefaultPersonaAnalysisConfig().Merge(override)
	if input.EmotionalAnalysis != "" {
		enabled, err := ParseBoolString(input.EmotionalAnalysis)
		if err != nil {
			return fmt.Errorf("invalid --emotional-analysis value: %w", err)
		}
		cfg.Persona.Analysis.EnableEmotionalAnalysis = enabled
	}
	return nil
}

// processGenerationConfig handles the generator, rules and scoring settings.
func processGenerationConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Topic = strings.TrimSpace(input.Topic)
	cfg.Style = strings.TrimSpace(input.Style)

	if input.TargetLength < 0 {
		return fmt.Errorf("target-length cannot be negative (received %d)", input.TargetLength)
	}
	cfg.TargetLength = input.TargetLength

	cfg.Generation = generate.DefaultConfig()
	if input.MaxRetries != 0 {
		if input.MaxRetries < 1 || input.MaxRetries > MaxRetriesLimit {
			return fmt.Errorf("max-retries must be between 1 and %d (received %d)", MaxRetriesLimit, input.MaxRetries)
		}
		cfg.Generation.MaxRetries = input.MaxRetries
	}
	if input.MinScore < 0 || input.MinScore > 100 {
		return fmt.Errorf("min-score must be between 0 and 100 (received %d)", input.MinScore)
	}
	cfg.Generation.MinAcceptableScore = input.MinScore

	for _, flag := range []struct {
		name  string
		value string
		dst   *bool
	}{
		{"rule-validation", input.RuleValidation, &cfg.Generation.EnableRuleValidation},
		{"authenticity-scoring", input.AuthenticityScoring, &cfg.Generation.EnableAuthenticityScoring},
	} {
		if flag.value == "" {
			continue
		}
		v, err := ParseBoolString(flag.value)
		if err != nil {
			return fmt.Errorf("invalid --%s value: %w", flag.name, err)
		}
		*flag.dst = v
	}

	cfg.Rules = rules.Merge(rules.DefaultConfig(), input.Rules)
	if t := cfg.Rules.HookRatioTarget; t < 0 || t > 100 {
		return fmt.Errorf("rules.hook-ratio-target must be between 0 and 100 (received %d)", t)
	}

	cfg.Scoring = scoring.DefaultConfig()
	if v := input.Scoring.MinPassingScore; v != nil {
		if *v < 0 || *v > 100 {
			return fmt.Errorf("scoring.min-passing-score must be between 0 and 100 (received %d)", *v)
		}
		cfg.Scoring.MinPassingScore = *v
	}
	if v := input.Scoring.PenaltyMultiplier; v != nil {
		if *v <= 0 {
			return fmt.Errorf("scoring.penalty-multiplier must be greater than 0 (received %.2f)", *v)
		}
		cfg.Scoring.PenaltyMultiplier = *v
	}
	return nil
}

// processCollaborators handles the feed and transcription endpoints.
func processCollaborators(cfg *Config, input *ConfigRawInput) error {
	cfg.FeedBaseURL = strings.TrimRight(strings.TrimSpace(input.FeedURL), "/")
	cfg.FeedAPIKey = input.FeedAPIKey
	cfg.TranscribeBaseURL = strings.TrimRight(strings.TrimSpace(input.TranscribeURL), "/")
	cfg.TranscribeAPIKey = input.TranscribeAPIKey

	cfg.RequestTimeout = DefaultRequestTimeout
	if input.RequestTimeout != "" {
		d, err := time.ParseDuration(input.RequestTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid request-timeout '%s'. expected a positive duration like 30s", input.RequestTimeout)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ParseUserIdentifier parses "handle" or "platform:handle" into a UserIdentifier.
// A leading @ on the handle is dropped.
func ParseUserIdentifier(s string, defaultPlatform schema.Platform) (schema.UserIdentifier, error) {
	s = strings.TrimSpace(s)
	platform := defaultPlatform
	if p, handle, ok := strings.Cut(s, ":"); ok {
		platform = schema.Platform(strings.ToLower(strings.TrimSpace(p)))
		s = handle
	}
	handle := strings.TrimPrefix(strings.TrimSpace(s), "@")
	if handle == "" {
		return schema.UserIdentifier{}, fmt.Errorf("empty creator handle in %q", s)
	}
	if strings.ContainsAny(handle, " /?#") {
		return schema.UserIdentifier{}, fmt.Errorf("invalid creator handle %q", handle)
	}
	if _, ok := schema.ValidPlatforms[platform]; !ok {
		return schema.UserIdentifier{}, fmt.Errorf("invalid platform '%s'. must be tiktok, instagram", platform)
	}
	return schema.UserIdentifier{Handle: handle, Platform: platform}, nil
}
