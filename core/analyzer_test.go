package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/huangsam/voicepersona/core/feed"
	"github.com/huangsam/voicepersona/core/generate"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/internal/iocache"
	"github.com/huangsam/voicepersona/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	coffee   = schema.UserIdentifier{Handle: "coffeeguy", Platform: schema.TikTokPlatform}
	baker    = schema.UserIdentifier{Handle: "bakerbee", Platform: schema.TikTokPlatform}
	ghost    = schema.UserIdentifier{Handle: "ghost", Platform: schema.TikTokPlatform}
)

var transcripts = []string{
	"Stop scrolling! You know what I love? This café has the best espresso. It is SO good, no cap. I mean, the crema is unreal.",
	"Okay so here's the thing. You know, most people grind their beans wrong. I mean it. Honestly the ratio matters so much!",
	"Wait for it. This cold brew took me twelve hours. You know what? Worth it. No cap, stay caffeinated everyone!",
}

// stubFeed returns canned feed analyses keyed by handle.
type stubFeed struct {
	mu       sync.Mutex
	analyses map[string]schema.UserFeedAnalysis
	errs     map[string]error
	calls    []schema.UserIdentifier
}

func (s *stubFeed) AnalyzeFeed(_ context.Context, id schema.UserIdentifier) (schema.UserFeedAnalysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, id)
	if err, ok := s.errs[id.Handle]; ok {
		return schema.UserFeedAnalysis{}, err
	}
	return s.analyses[id.Handle], nil
}

func completedFeed(id schema.UserIdentifier) schema.UserFeedAnalysis {
	videos := make([]schema.VideoAnalysisData, len(transcripts))
	for i, text := range transcripts {
		videos[i] = schema.VideoAnalysisData{
			VideoID:    fmt.Sprintf("v%d", i+1),
			URL:        feed.VideoURL(id.Handle, fmt.Sprintf("v%d", i+1)),
			Transcript: text,
			Duration:   30,
			Metadata:   schema.VideoMetadata{CapturedAt: fixedNow, Platform: id.Platform},
		}
	}
	return schema.UserFeedAnalysis{
		UserIdentifier:  id,
		TotalVideos:     len(videos),
		ProcessedVideos: len(videos),
		Videos:          videos,
		Failures:        []schema.VideoFailure{},
		Status:          schema.CompletedStatus,
		AnalyzedAt:      fixedNow,
	}
}

type recordingSleeper struct {
	delays []time.Duration
	errAt  int // 1-based call that fails, 0 for never
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	if r.errAt > 0 && len(r.delays) == r.errAt {
		return context.Canceled
	}
	return nil
}

func newTestAnalyzer(fa FeedAnalyzer, opts ...AnalyzerOption) *VoiceAnalyzer {
	base := []AnalyzerOption{
		WithAnalyzerClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "persona-fixed" }),
	}
	return NewVoiceAnalyzer(schema.DefaultPersonaAnalysisConfig(), fa, generate.DefaultConfig(), nil, nil, append(base, opts...)...)
}

func managerWith(personas contract.PersonaStore, analysis contract.AnalysisStore) *iocache.MockCacheManager {
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetPersonaStore").Return(personas)
	mgr.On("GetAnalysisStore").Return(analysis)
	mgr.On("GetTranscriptStore").Return(nil)
	return mgr
}

func TestAnalyzeVoicePersona_Success(t *testing.T) {
	personas := &iocache.MockPersonaStore{}
	personas.On("SavePersona", mock.AnythingOfType("*schema.PersonaProfile")).Return(nil)
	analysis := &iocache.MockAnalysisStore{}
	analysis.On("BeginAnalysis", fixedNow, coffee, mock.Anything).Return(int64(7), nil)
	analysis.On("RecordPersonaProfile", int64(7), mock.AnythingOfType("*schema.PersonaProfile")).Return(nil)
	analysis.On("EndAnalysis", int64(7), fixedNow, "completed", 3).Return(nil)

	fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{"coffeeguy": completedFeed(coffee)}}
	a := newTestAnalyzer(fa, WithCacheManager(managerWith(personas, analysis)))

	res := a.AnalyzeVoicePersona(context.Background(), coffee)
	require.True(t, res.Success)
	require.Nil(t, res.Error)
	require.NotNil(t, res.Persona)

	p := res.Persona
	assert.Equal(t, "persona-fixed", p.PersonaID)
	assert.Equal(t, coffee, p.UserIdentifier)
	assert.Equal(t, fixedNow, p.AnalysisDate)
	assert.Equal(t, 3, p.Metadata.VideosAnalyzed)
	assert.Equal(t, schema.AnalysisVersion, p.Metadata.AnalysisVersion)
	assert.Equal(t, fixedNow, p.Metadata.LastUpdated)

	runes := 0
	for _, text := range transcripts {
		runes += utf8.RuneCountInString(text)
	}
	assert.Equal(t, runes, p.Metadata.TotalTranscriptLength)
	assert.LessOrEqual(t, len(p.VoiceProfile.Hooks), 15)
	assert.LessOrEqual(t, len(p.VoiceProfile.VocabularyFingerprint), 30)
	assert.GreaterOrEqual(t, p.GenerationParameters.OptimalLength, 15)
	assert.LessOrEqual(t, p.GenerationParameters.OptimalLength, 60)
	assert.GreaterOrEqual(t, p.GenerationParameters.AuthenticityThreshold, 75)
	assert.LessOrEqual(t, p.GenerationParameters.AuthenticityThreshold, 95)
	assert.Equal(t, time.Duration(0), res.ProcessingTime)

	personas.AssertExpectations(t)
	analysis.AssertExpectations(t)
}

func TestAnalyzeVoicePersona_Deterministic(t *testing.T) {
	fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{"coffeeguy": completedFeed(coffee)}}
	a := newTestAnalyzer(fa)

	first := a.AnalyzeVoicePersona(context.Background(), coffee)
	second := a.AnalyzeVoicePersona(context.Background(), coffee)
	require.True(t, first.Success)
	assert.Equal(t, first.Persona, second.Persona)
}

func TestAnalyzeVoicePersona_Failures(t *testing.T) {
	noneProcessed := completedFeed(coffee)
	noneProcessed.ProcessedVideos = 0
	noneProcessed.FailedVideos = 3
	noneProcessed.Videos = []schema.VideoAnalysisData{}
	noneProcessed.Status = schema.FailedStatus

	tests := []struct {
		name     string
		analysis schema.UserFeedAnalysis
		err      error
		code     schema.ErrorCode
		message  string
	}{
		{
			name:     "no videos",
			analysis: schema.UserFeedAnalysis{UserIdentifier: coffee, Status: schema.FailedStatus},
			code:     schema.InsufficientContent,
			message:  "insufficient content: no videos found for tiktok/@coffeeguy",
		},
		{
			name:     "all transcriptions failed",
			analysis: noneProcessed,
			code:     schema.TranscriptionFailed,
			message:  "transcription failed for all 3 videos of tiktok/@coffeeguy",
		},
		{
			name:    "user not found",
			err:     errors.New("fetch videos for tiktok/@coffeeguy: tiktok: user not found: @coffeeguy"),
			code:    schema.UserNotFound,
			message: "user not found",
		},
		{
			name:    "unsupported platform",
			err:     fmt.Errorf("%w: instagram", feed.ErrUnsupportedPlatform),
			code:    schema.InvalidPlatform,
			message: "platform not supported",
		},
		{
			name:    "rate limited",
			err:     errors.New("fetch videos for tiktok/@coffeeguy: tiktok: rate limit exceeded"),
			code:    schema.RateLimitExceeded,
			message: "rate limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{"coffeeguy": tt.analysis}}
			if tt.err != nil {
				fa.errs = map[string]error{"coffeeguy": tt.err}
			}
			personas := &iocache.MockPersonaStore{}
			analysis := &iocache.MockAnalysisStore{}
			analysis.On("BeginAnalysis", fixedNow, coffee, mock.Anything).Return(int64(3), nil)
			analysis.On("EndAnalysis", int64(3), fixedNow, "failed", 0).Return(nil)

			a := newTestAnalyzer(fa, WithCacheManager(managerWith(personas, analysis)))
			res := a.AnalyzeVoicePersona(context.Background(), coffee)

			assert.False(t, res.Success)
			assert.Nil(t, res.Persona)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.Contains(t, res.Error.Message, tt.message)
			assert.Equal(t, coffee, res.UserIdentifier)

			personas.AssertNotCalled(t, "SavePersona", mock.Anything)
			analysis.AssertNotCalled(t, "RecordPersonaProfile", mock.Anything, mock.Anything)
			analysis.AssertExpectations(t)
		})
	}
}

func TestAnalyzeVoicePersona_PersistenceFailuresOnlyWarn(t *testing.T) {
	personas := &iocache.MockPersonaStore{}
	personas.On("SavePersona", mock.Anything).Return(errors.New("disk full"))
	analysis := &iocache.MockAnalysisStore{}
	analysis.On("BeginAnalysis", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("table locked"))

	fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{"coffeeguy": completedFeed(coffee)}}
	a := newTestAnalyzer(fa, WithCacheManager(managerWith(personas, analysis)))

	res := a.AnalyzeVoicePersona(context.Background(), coffee)
	assert.True(t, res.Success)
	personas.AssertExpectations(t)
	analysis.AssertNotCalled(t, "EndAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	analysis.AssertNotCalled(t, "RecordPersonaProfile", mock.Anything, mock.Anything)
}

func TestAnalyzeVoicePersona_DisabledStores(t *testing.T) {
	fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{"coffeeguy": completedFeed(coffee)}}
	a := newTestAnalyzer(fa, WithCacheManager(managerWith(nil, nil)))

	res := a.AnalyzeVoicePersona(context.Background(), coffee)
	assert.True(t, res.Success)
}

func TestAnalyzeBatch(t *testing.T) {
	fa := &stubFeed{
		analyses: map[string]schema.UserFeedAnalysis{
			"coffeeguy": completedFeed(coffee),
			"bakerbee":  completedFeed(baker),
		},
		errs: map[string]error{"ghost": errors.New("tiktok: user not found: @ghost")},
	}
	sleeper := &recordingSleeper{}
	a := newTestAnalyzer(fa, WithAnalyzerSleeper(sleeper.sleep))

	results := a.AnalyzeBatch(context.Background(), []schema.UserIdentifier{coffee, ghost, baker})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, schema.UserNotFound, results[1].Error.Code)
	assert.True(t, results[2].Success)
	assert.Equal(t, []schema.UserIdentifier{coffee, ghost, baker}, fa.calls)

	// (60 / 30 rpm) * 1000 ms between personas
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.delays)
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	fa := &stubFeed{analyses: map[string]schema.UserFeedAnalysis{
		"coffeeguy": completedFeed(coffee),
		"bakerbee":  completedFeed(baker),
	}}
	sleeper := &recordingSleeper{errAt: 1}
	a := newTestAnalyzer(fa, WithAnalyzerSleeper(sleeper.sleep))

	results := a.AnalyzeBatch(context.Background(), []schema.UserIdentifier{coffee, baker, ghost})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	for _, r := range results[1:] {
		assert.False(t, r.Success)
		assert.Equal(t, schema.AnalysisTimeout, r.Error.Code)
		assert.Contains(t, r.Error.Message, "context canceled")
	}
	assert.Equal(t, baker, results[1].UserIdentifier)
	assert.Equal(t, ghost, results[2].UserIdentifier)
	assert.Equal(t, []schema.UserIdentifier{coffee}, fa.calls)
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	a := newTestAnalyzer(&stubFeed{})
	assert.Empty(t, a.AnalyzeBatch(context.Background(), nil))
}

func testPersona() *schema.PersonaProfile {
	return &schema.PersonaProfile{
		PersonaID:      "persona-1",
		UserIdentifier: coffee,
		AnalysisDate:   fixedNow,
		VoiceProfile: schema.VoiceProfile{
			Hooks:                 []string{"stop scrolling", "wait for it", "here's the thing"},
			Bridges:               map[string]int{"you know": 10, "i mean": 8},
			SignatureElements:     []string{"no cap", "lowkey"},
			VocabularyFingerprint: []string{"coffee", "beans", "grinder", "roast", "brew", "espresso", "crema", "water", "ratio", "bloom"},
			SentencePatterns:      []string{"Predominantly short, punchy sentences"},
			RhythmPattern:         "fast-paced delivery with variable pacing (6.0 words per sentence)",
		},
		SpeechPatterns: schema.SpeechPatterns{
			Baseline: schema.Baseline{TypicalEnergy: schema.HighEnergy, SentenceStructure: schema.ShortStructure},
			SignatureElements: schema.SignatureElements{
				Catchphrases: schema.Catchphrases{Closing: []string{"stay caffeinated"}},
			},
		},
		GenerationParameters: schema.GenerationParameters{
			OptimalLength:         30,
			AuthenticityThreshold: 85,
			PatternRotation:       schema.WeightedRotation,
			HookRatio:             schema.HookRatio{Primary: 2, Secondary: 1},
			SentenceDistribution:  schema.SentenceDistribution{Short: 50, Medium: 30, Long: 20},
		},
	}
}

func TestGenerateScript_RecordsScore(t *testing.T) {
	analysis := &iocache.MockAnalysisStore{}
	analysis.On("RecordScriptScore", mock.AnythingOfType("*schema.GeneratedScript")).Return(nil)
	a := newTestAnalyzer(&stubFeed{}, WithCacheManager(managerWith(nil, analysis)))

	persona := testPersona()
	res, err := a.GenerateScript(context.Background(), schema.ScriptGenerationInput{PersonaID: persona.PersonaID, Topic: "cold brew"}, persona)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Script)
	assert.Equal(t, persona.PersonaID, res.Script.PersonaID)
	assert.Equal(t, fixedNow, res.Script.Metadata.GeneratedAt)
	analysis.AssertNumberOfCalls(t, "RecordScriptScore", 1)
}

func TestGenerateScript_NoHooks(t *testing.T) {
	analysis := &iocache.MockAnalysisStore{}
	a := newTestAnalyzer(&stubFeed{}, WithCacheManager(managerWith(nil, analysis)))

	persona := testPersona()
	persona.VoiceProfile.Hooks = nil
	res, err := a.GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: "cold brew"}, persona)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, schema.GenerationFailed, res.Error.Code)
	analysis.AssertNotCalled(t, "RecordScriptScore", mock.Anything)
}

func TestGenerateScript_InvalidInput(t *testing.T) {
	a := newTestAnalyzer(&stubFeed{})
	_, err := a.GenerateScript(context.Background(), schema.ScriptGenerationInput{Topic: ""}, testPersona())
	assert.Error(t, err)
}

func TestScoreAndValidateContent(t *testing.T) {
	a := newTestAnalyzer(&stubFeed{})
	persona := testPersona()

	metrics := a.ScoreContent("Stop scrolling! You know this espresso is so good. I mean it, no cap.", persona)
	assert.Equal(t, 100, metrics.TotalWeight())
	assert.Equal(t, metrics.WeightedOverall(), metrics.OverallScore)
	assert.Equal(t, metrics.OverallScore >= 75, a.IsPassing(metrics.OverallScore))

	result := a.ValidateContent("Furthermore, the coffee is consequently excellent.", persona)
	assert.False(t, result.Valid)
	var ruleIDs []string
	for _, v := range result.Violations {
		ruleIDs = append(ruleIDs, v.RuleID)
	}
	assert.Contains(t, ruleIDs, "formal-language")
}

func TestResolvePersona(t *testing.T) {
	persona := testPersona()

	t.Run("disabled store", func(t *testing.T) {
		_, err := ResolvePersona(nil, "persona-1", schema.TikTokPlatform)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "persona storage is disabled")
	})

	t.Run("by id", func(t *testing.T) {
		store := &iocache.MockPersonaStore{}
		store.On("GetPersona", "persona-1").Return(persona, nil)
		got, err := ResolvePersona(store, "persona-1", schema.TikTokPlatform)
		require.NoError(t, err)
		assert.Same(t, persona, got)
		store.AssertNotCalled(t, "FindLatest", mock.Anything)
	})

	t.Run("by creator handle", func(t *testing.T) {
		store := &iocache.MockPersonaStore{}
		store.On("GetPersona", "@coffeeguy").Return(nil, fmt.Errorf("%w: @coffeeguy", contract.ErrPersonaNotFound))
		store.On("FindLatest", coffee).Return(persona, nil)
		got, err := ResolvePersona(store, "@coffeeguy", schema.TikTokPlatform)
		require.NoError(t, err)
		assert.Same(t, persona, got)
	})

	t.Run("unparseable reference keeps not found", func(t *testing.T) {
		store := &iocache.MockPersonaStore{}
		store.On("GetPersona", "bad handle").Return(nil, fmt.Errorf("%w: bad handle", contract.ErrPersonaNotFound))
		_, err := ResolvePersona(store, "bad handle", schema.TikTokPlatform)
		assert.ErrorIs(t, err, contract.ErrPersonaNotFound)
		store.AssertNotCalled(t, "FindLatest", mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		store := &iocache.MockPersonaStore{}
		store.On("GetPersona", "persona-1").Return(nil, errors.New("connection refused"))
		_, err := ResolvePersona(store, "persona-1", schema.TikTokPlatform)
		assert.EqualError(t, err, "connection refused")
	})
}
