package generate

import (
	"context"
	mrand "math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/voicepersona/core/algo"
	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testPersona() *schema.PersonaProfile {
	return &schema.PersonaProfile{
		PersonaID:      "persona-1",
		UserIdentifier: schema.UserIdentifier{Handle: "coffeeguy", Platform: schema.TikTokPlatform},
		VoiceProfile: schema.VoiceProfile{
			Hooks:                 []string{"stop scrolling", "wait for it", "here's the thing"},
			Bridges:               map[string]int{"you know": 10, "i mean": 8},
			SignatureElements:     []string{"no cap", "lowkey"},
			VocabularyFingerprint: []string{"coffee", "beans", "grinder", "roast", "brew", "espresso", "crema", "water", "ratio", "bloom"},
			SentencePatterns:      []string{"Predominantly short, punchy sentences", "Frequent exclamation emphasis"},
			RhythmPattern:         "fast-paced delivery with variable pacing (6.0 words per sentence)",
		},
		SpeechPatterns: schema.SpeechPatterns{
			Baseline: schema.Baseline{TypicalEnergy: schema.HighEnergy, SentenceStructure: schema.ShortStructure},
			EmotionalStates: schema.EmotionalStates{
				Excited: schema.ExcitedState{MarkerPhrases: []string{"so good", "no way"}},
			},
			SignatureElements: schema.SignatureElements{
				Catchphrases: schema.Catchphrases{Closing: []string{"stay caffeinated"}},
			},
		},
		PatternMapping: schema.PatternMappingMatrix{
			PersonalReference: schema.PatternElement{Examples: []string{"honestly"}},
		},
		GenerationParameters: schema.GenerationParameters{
			OptimalLength:         30,
			AuthenticityThreshold: 85,
			PatternRotation:       schema.RandomRotation,
			HookRatio:             schema.HookRatio{Primary: 2, Secondary: 1},
			SentenceDistribution:  schema.SentenceDistribution{Short: 50, Medium: 30, Long: 20},
		},
	}
}

func newTestGenerator(cfg Config, seed uint64) *Generator {
	return NewGenerator(cfg, nil, nil,
		WithRand(mrand.New(mrand.NewPCG(seed, seed+1))),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestGenerateScript_InvalidInput(t *testing.T) {
	g := newTestGenerator(DefaultConfig(), 1)

	_, err := g.GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "  "}, testPersona())
	assert.Error(t, err)

	_, err = g.GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "coffee"}, nil)
	assert.Error(t, err)
}

func TestGenerateScript_Structure(t *testing.T) {
	g := newTestGenerator(DefaultConfig(), 7)
	persona := testPersona()

	res, err := g.GenerateScript(context.Background(), schema.ScriptGenerationInput{PersonaID: persona.PersonaID, Topic: "cold brew"}, persona)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Script)
	assert.Nil(t, res.Error)
	assert.GreaterOrEqual(t, res.Attempts, 1)
	assert.LessOrEqual(t, res.Attempts, DefaultMaxRetries)

	s := res.Script
	assert.Len(t, s.ID, 26)
	assert.Equal(t, "persona-1", s.PersonaID)
	assert.Equal(t, "cold brew", s.Topic)
	assert.Equal(t, fixedNow, s.Metadata.GeneratedAt)
	assert.Equal(t, 30, s.Metadata.TargetLength)
	assert.Equal(t, len(algo.Words(s.Script)), s.Metadata.WordCount)
	assert.InDelta(t, float64(s.Metadata.WordCount)/3, s.Metadata.ActualLength, 1e-9)
	assert.InDelta(t, 90, s.Metadata.WordCount, 18)

	for _, part := range []string{s.Structure.Hook, s.Structure.Bridge, s.Structure.CoreMessage, s.Structure.Escalation, s.Structure.Close} {
		assert.NotEmpty(t, part)
		assert.Contains(t, s.Script, part)
	}
	assert.Contains(t, s.Structure.Hook, "cold brew")
	assert.True(t, algo.ContainsPhrase(s.Structure.Hook, "stop scrolling") || algo.ContainsPhrase(s.Structure.Hook, "wait for it"))
	assert.True(t, strings.HasPrefix(s.Structure.Bridge, "You know"))
	assert.Contains(t, s.Structure.Escalation, "EVERYTHING!")
	assert.Equal(t, "Stay caffeinated. Follow NOW for part two!", s.Structure.Close)
	assert.Equal(t, s.Authenticity.WeightedOverall(), s.Authenticity.OverallScore)
}

func TestGenerateScript_TargetLengthOverride(t *testing.T) {
	g := newTestGenerator(DefaultConfig(), 3)
	res, err := g.GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "espresso", TargetLength: 20}, testPersona())
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 20, res.Script.Metadata.TargetLength)
	assert.InDelta(t, 60, res.Script.Metadata.WordCount, 15)
}

func TestGenerateScript_RetryExhaustionReturnsBest(t *testing.T) {
	persona := testPersona()
	persona.GenerationParameters.AuthenticityThreshold = 99
	cfg := DefaultConfig()
	cfg.MaxRetries = 1

	res, err := newTestGenerator(cfg, 11).GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "latte art"}, persona)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	require.NotNil(t, res.Script)
	if res.Script.Authenticity.OverallScore < 99 {
		assert.False(t, res.Passed)
	}
}

func TestGenerateScript_StopsWhenAccepted(t *testing.T) {
	cfg := Config{MaxRetries: 3, MinAcceptableScore: 1, EnableAuthenticityScoring: true}
	res, err := newTestGenerator(cfg, 5).GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "pour over"}, testPersona())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Passed)
	assert.Equal(t, 1, res.Attempts)
}

func TestGenerateScript_AllAttemptsBelowScore(t *testing.T) {
	cfg := Config{MaxRetries: 3, MinAcceptableScore: 101, EnableAuthenticityScoring: true}
	res, err := newTestGenerator(cfg, 5).GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "pour over"}, testPersona())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Passed)
	assert.Equal(t, 3, res.Attempts)
	assert.NotNil(t, res.Script)
}

func TestGenerateScript_NoHooksFails(t *testing.T) {
	persona := testPersona()
	persona.VoiceProfile.Hooks = nil

	res, err := newTestGenerator(DefaultConfig(), 1).GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "coffee"}, persona)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Script)
	assert.Equal(t, DefaultMaxRetries, res.Attempts)
	require.NotNil(t, res.Error)
	assert.Equal(t, schema.GenerationFailed, res.Error.Code)
	assert.Contains(t, res.Error.Message, ErrNoHooks.Error())
}

func TestGenerateScript_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestGenerator(DefaultConfig(), 1).GenerateScript(ctx, schema.ScriptGenerationInput{Topic: "coffee"}, testPersona())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Error.Message, context.Canceled.Error())
}

func TestGenerateScript_SeededIsRepeatable(t *testing.T) {
	input := schema.ScriptGenerationInput{Topic: "decaf"}
	a, err := newTestGenerator(DefaultConfig(), 42).GenerateScript(context.Background(), input, testPersona())
	require.NoError(t, err)
	b, err := newTestGenerator(DefaultConfig(), 42).GenerateScript(context.Background(), input, testPersona())
	require.NoError(t, err)
	assert.Equal(t, a.Script.Script, b.Script.Script)
	assert.Equal(t, a.Attempts, b.Attempts)
}

func TestPickHook(t *testing.T) {
	g := newTestGenerator(DefaultConfig(), 9)
	voice := schema.VoiceProfile{Hooks: []string{"stop scrolling", "coffee secret time", "wait for it", "pov"}}
	params := schema.GenerationParameters{HookRatio: schema.HookRatio{Primary: 3, Secondary: 1}}

	hook, err := g.pickHook(0, "a coffee tutorial", voice, params)
	require.NoError(t, err)
	assert.Equal(t, "coffee secret time", hook)

	params.PatternRotation = schema.SequentialRotation
	for i, expected := range []string{"stop scrolling", "coffee secret time", "wait for it", "stop scrolling"} {
		hook, err = g.pickHook(i, "", voice, params)
		require.NoError(t, err)
		assert.Equal(t, expected, hook)
	}

	params.PatternRotation = schema.WeightedRotation
	for i := range 20 {
		hook, err = g.pickHook(i, "", voice, params)
		require.NoError(t, err)
		assert.NotEqual(t, "pov", hook)
	}

	_, err = g.pickHook(0, "", schema.VoiceProfile{}, params)
	assert.ErrorIs(t, err, ErrNoHooks)
}

func TestTopBridge(t *testing.T) {
	assert.Equal(t, "here's the deal", topBridge(nil))
	assert.Equal(t, "you know", topBridge(map[string]int{"i mean": 8, "you know": 10}))
	assert.Equal(t, "anyway", topBridge(map[string]int{"so yeah": 5, "anyway": 5}))
}

func TestBestAttempt(t *testing.T) {
	script := &schema.GeneratedScript{}
	tests := []struct {
		name     string
		attempts []attempt
		expected int
		ok       bool
	}{
		{"none", nil, 0, false},
		{"all errored", []attempt{{index: 0, err: ErrNoHooks}, {index: 1, err: ErrNoHooks}}, 0, false},
		{"highest score", []attempt{{index: 0, script: script, score: 60}, {index: 1, script: script, score: 80}, {index: 2, script: script, score: 70}}, 1, true},
		{"fewest violations on tie", []attempt{
			{index: 0, script: script, score: 80, violations: make([]schema.Violation, 2)},
			{index: 1, script: script, score: 80, violations: make([]schema.Violation, 1)},
		}, 1, true},
		{"earliest on full tie", []attempt{{index: 0, script: script, score: 80}, {index: 1, script: script, score: 80}}, 0, true},
		{"script beats error", []attempt{{index: 0, err: ErrNoHooks}, {index: 1, script: script}}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := bestAttempt(tt.attempts)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, best.index)
			}
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "", capitalize(""))
	assert.Equal(t, "Éclair", capitalize("éclair"))
	assert.Equal(t, "you know", lowerFirst("You know"))
	assert.Equal(t, "OMG wow", lowerFirst("OMG wow"))
}
