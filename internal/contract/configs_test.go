package contract

import (
	"testing"
	"time"

	"github.com/huangsam/voicepersona/core/generate"
	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:       "text",
		Color:        "yes",
		CacheBackend: "none",
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, schema.TikTokPlatform, cfg.Platform)
	assert.Equal(t, schema.DefaultPersonaAnalysisConfig(), cfg.Persona)
	assert.Equal(t, generate.DefaultConfig(), cfg.Generation)
	assert.Equal(t, 75, cfg.Scoring.MinPassingScore)
	assert.Equal(t, 1.0, cfg.Scoring.PenaltyMultiplier)
	assert.Equal(t, 80, cfg.Rules.HookRatioTarget)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidate(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "invalid platform",
			mutate:      func(in *ConfigRawInput) { in.Platform = "youtube" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			expectError: true,
		},
		{
			name: "mysql without connection string",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "same sqlite file for cache and analysis",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.AnalysisBackend = "sqlite"
				in.CacheDBConnect = "/tmp/voicepersona.db"
				in.AnalysisDBConnect = "/tmp/voicepersona.db"
			},
			expectError: true,
		},
		{
			name: "analysis pointed at the default cache file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.AnalysisBackend = "sqlite"
				in.AnalysisDBConnect = GetCacheDBFilePath()
			},
			expectError: true,
		},
		{
			name: "default sqlite files differ",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.AnalysisBackend = "sqlite"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
				assert.Equal(t, schema.SQLiteBackend, cfg.AnalysisBackend)
			},
		},
		{
			name: "distinct sqlite files",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "sqlite"
				in.AnalysisBackend = "sqlite"
				in.AnalysisDBConnect = "/tmp/analysis.db"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.AnalysisBackend)
			},
		},
		{
			name: "analysis overrides",
			mutate: func(in *ConfigRawInput) {
				in.BatchSize = 10
				in.BurstLimit = 4
				in.MaxVideos = 8
				in.CacheTTL = "2h"
				in.Sensitivity = "HIGH"
				in.EmotionalAnalysis = "no"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10, cfg.Persona.BatchSize)
				assert.Equal(t, 4, cfg.Persona.EffectiveBatchSize())
				assert.Equal(t, 8, cfg.Persona.MaxVideos)
				assert.Equal(t, 2*time.Hour, cfg.Persona.CacheTTL)
				assert.Equal(t, schema.HighSensitivity, cfg.Persona.Analysis.PatternSensitivity)
				assert.False(t, cfg.Persona.Analysis.EnableEmotionalAnalysis)
				assert.Equal(t, schema.DefaultRequestsPerMinute, cfg.Persona.RateLimit.RequestsPerMinute)
			},
		},
		{
			name:        "invalid sensitivity",
			mutate:      func(in *ConfigRawInput) { in.Sensitivity = "extreme" },
			expectError: true,
		},
		{
			name:        "invalid cache ttl",
			mutate:      func(in *ConfigRawInput) { in.CacheTTL = "tomorrow" },
			expectError: true,
		},
		{
			name:        "too many videos",
			mutate:      func(in *ConfigRawInput) { in.MaxVideos = MaxVideosLimit + 1 },
			expectError: true,
		},
		{
			name: "generation overrides",
			mutate: func(in *ConfigRawInput) {
				in.Topic = "  cold brew "
				in.TargetLength = 45
				in.MaxRetries = 5
				in.MinScore = 60
				in.RuleValidation = "false"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "cold brew", cfg.Topic)
				assert.Equal(t, 45, cfg.TargetLength)
				assert.Equal(t, 5, cfg.Generation.MaxRetries)
				assert.Equal(t, 60, cfg.Generation.MinAcceptableScore)
				assert.False(t, cfg.Generation.EnableRuleValidation)
				assert.True(t, cfg.Generation.EnableAuthenticityScoring)
			},
		},
		{
			name:        "too many retries",
			mutate:      func(in *ConfigRawInput) { in.MaxRetries = MaxRetriesLimit + 1 },
			expectError: true,
		},
		{
			name:        "min score out of range",
			mutate:      func(in *ConfigRawInput) { in.MinScore = 101 },
			expectError: true,
		},
		{
			name: "rules and scoring sections",
			mutate: func(in *ConfigRawInput) {
				in.Rules.ForbiddenFormalWords = []string{"henceforth"}
				in.Rules.HookRatioTarget = intPtr(70)
				in.Scoring.MinPassingScore = intPtr(80)
				in.Scoring.PenaltyMultiplier = floatPtr(0.9)
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Contains(t, cfg.Rules.ForbiddenFormalWords, "henceforth")
				assert.Contains(t, cfg.Rules.ForbiddenFormalWords, "furthermore")
				assert.Equal(t, 70, cfg.Rules.HookRatioTarget)
				assert.Equal(t, 20, cfg.Rules.HookRatioTolerance)
				assert.Equal(t, 80, cfg.Scoring.MinPassingScore)
				assert.Equal(t, 0.9, cfg.Scoring.PenaltyMultiplier)
			},
		},
		{
			name:        "invalid penalty multiplier",
			mutate:      func(in *ConfigRawInput) { in.Scoring.PenaltyMultiplier = floatPtr(0) },
			expectError: true,
		},
		{
			name: "collaborator endpoints",
			mutate: func(in *ConfigRawInput) {
				in.FeedURL = "https://feed.example.com/ "
				in.TranscribeURL = "https://stt.example.com"
				in.RequestTimeout = "15s"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://feed.example.com", cfg.FeedBaseURL)
				assert.Equal(t, "https://stt.example.com", cfg.TranscribeBaseURL)
				assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
			},
		},
		{
			name:        "invalid request timeout",
			mutate:      func(in *ConfigRawInput) { in.RequestTimeout = "-1s" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pw@tcp(localhost:3306)/personas"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pw@localhost"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=personas"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost"))
}

func TestParseUserIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected schema.UserIdentifier
		wantErr  bool
	}{
		{"coffeeguy", schema.UserIdentifier{Handle: "coffeeguy", Platform: schema.TikTokPlatform}, false},
		{"@coffeeguy", schema.UserIdentifier{Handle: "coffeeguy", Platform: schema.TikTokPlatform}, false},
		{"Instagram:@latte.art", schema.UserIdentifier{Handle: "latte.art", Platform: schema.InstagramPlatform}, false},
		{"", schema.UserIdentifier{}, true},
		{"@", schema.UserIdentifier{}, true},
		{"youtube:someone", schema.UserIdentifier{}, true},
		{"two words", schema.UserIdentifier{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseUserIdentifier(tt.input, schema.TikTokPlatform)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	clone := cfg.Clone()
	clone.Topic = "cold brew"
	clone.Persona.MaxVideos = 3
	clone.Rules.ForbiddenFormalWords[0] = "changed"

	assert.Empty(t, cfg.Topic)
	assert.NotEqual(t, 3, cfg.Persona.MaxVideos)
	assert.NotEqual(t, "changed", cfg.Rules.ForbiddenFormalWords[0])
}
