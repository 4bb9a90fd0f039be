package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/huangsam/voicepersona/core/extract"
	"github.com/huangsam/voicepersona/core/feed"
	"github.com/huangsam/voicepersona/core/generate"
	"github.com/huangsam/voicepersona/core/profile"
	"github.com/huangsam/voicepersona/core/rules"
	"github.com/huangsam/voicepersona/core/scoring"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// FeedAnalyzer turns a creator identifier into transcribed videos.
type FeedAnalyzer interface {
	AnalyzeFeed(ctx context.Context, id schema.UserIdentifier) (schema.UserFeedAnalysis, error)
}

var _ FeedAnalyzer = &feed.Orchestrator{}

// AnalyzerOption customizes a VoiceAnalyzer.
type AnalyzerOption func(*VoiceAnalyzer)

// WithCacheManager persists personas and tracks runs through the given stores.
func WithCacheManager(mgr contract.CacheManager) AnalyzerOption {
	return func(a *VoiceAnalyzer) { a.mgr = mgr }
}

// WithAnalyzerLogger sets the progress logger.
func WithAnalyzerLogger(l *slog.Logger) AnalyzerOption {
	return func(a *VoiceAnalyzer) { a.logger = l }
}

// WithAnalyzerClock sets the clock used for analysis dates and run tracking.
func WithAnalyzerClock(now func() time.Time) AnalyzerOption {
	return func(a *VoiceAnalyzer) { a.now = now }
}

// WithAnalyzerSleeper overrides the pause between personas of a batch.
func WithAnalyzerSleeper(s feed.Sleeper) AnalyzerOption {
	return func(a *VoiceAnalyzer) { a.sleep = s }
}

// WithIDGenerator overrides how persona IDs are minted.
func WithIDGenerator(newID func() string) AnalyzerOption {
	return func(a *VoiceAnalyzer) { a.newID = newID }
}

// VoiceAnalyzer assembles personas from creator feeds and generates scripts in their voice.
type VoiceAnalyzer struct {
	cfg       schema.PersonaAnalysisConfig
	feed      FeedAnalyzer
	extractor *extract.Extractor
	generator *generate.Generator
	rules     *rules.Engine
	scorer    *scoring.Scorer
	mgr       contract.CacheManager
	logger    *slog.Logger
	now       func() time.Time
	sleep     feed.Sleeper
	newID     func() string
}

// NewVoiceAnalyzer creates a VoiceAnalyzer. The generator shares the given engine and scorer;
// nil ones fall back to the defaults.
func NewVoiceAnalyzer(cfg schema.PersonaAnalysisConfig, fa FeedAnalyzer, genCfg generate.Config, engine *rules.Engine, scorer *scoring.Scorer, opts ...AnalyzerOption) *VoiceAnalyzer {
	if engine == nil {
		engine = rules.NewEngine(rules.DefaultConfig())
	}
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultConfig())
	}
	a := &VoiceAnalyzer{
		cfg:    cfg,
		feed:   fa,
		rules:  engine,
		scorer: scorer,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		sleep:  feed.SleepContext,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.extractor = extract.NewExtractor(extract.Config{
		Sensitivity:             cfg.Analysis.PatternSensitivity,
		MinFrequency:            extract.DefaultMinFrequency,
		ContextWindow:           extract.DefaultContextWindow,
		EnableEmotionalAnalysis: cfg.Analysis.EnableEmotionalAnalysis,
	})
	a.generator = generate.NewGenerator(genCfg, engine, scorer, generate.WithClock(a.now))
	return a
}

// NewVoiceAnalyzerFromConfig wires a VoiceAnalyzer from the runtime configuration and collaborators.
func NewVoiceAnalyzerFromConfig(cfg *contract.Config, feedClient contract.FeedClient, transcriber contract.Transcriber, mgr contract.CacheManager, logger *slog.Logger) *VoiceAnalyzer {
	feedOpts := []feed.Option{feed.WithLogger(logger)}
	if mgr != nil {
		if store := mgr.GetTranscriptStore(); store != nil {
			feedOpts = append(feedOpts, feed.WithTranscriptCache(store))
		}
	}
	orchestrator := feed.NewOrchestrator(cfg.Persona, feedClient, transcriber, feedOpts...)
	return NewVoiceAnalyzer(
		cfg.Persona,
		orchestrator,
		cfg.Generation,
		rules.NewEngine(cfg.Rules),
		scoring.NewScorer(cfg.Scoring),
		WithCacheManager(mgr),
		WithAnalyzerLogger(logger),
	)
}

func (a *VoiceAnalyzer) personaStore() contract.PersonaStore {
	if a.mgr == nil {
		return nil
	}
	return a.mgr.GetPersonaStore()
}

func (a *VoiceAnalyzer) analysisStore() contract.AnalysisStore {
	if a.mgr == nil {
		return nil
	}
	return a.mgr.GetAnalysisStore()
}

// AnalyzeVoicePersona builds a persona from the creator's recent videos. Failures are
// reported in the result with a classified error code rather than returned.
func (a *VoiceAnalyzer) AnalyzeVoicePersona(ctx context.Context, id schema.UserIdentifier) schema.PersonaAnalysisResult {
	start := a.now()
	ctx, finish := a.beginTracking(ctx, start, id)

	persona, videos, err := a.buildPersona(ctx, id)
	result := schema.PersonaAnalysisResult{UserIdentifier: id}
	if err != nil {
		a.logger.Warn("persona analysis failed", append(logAttrs(ctx), slog.String("creator", id.String()), slog.Any("error", err))...)
		result.Error = &schema.ResultError{Code: ClassifyError(err), Message: err.Error()}
		finish(schema.FailedStatus, videos)
	} else {
		result.Success = true
		result.Persona = persona
		a.persist(ctx, persona)
		finish(schema.CompletedStatus, videos)
	}
	result.ProcessingTime = a.now().Sub(start)
	return result
}

// buildPersona runs the pipeline. The video count is returned even on failure for run tracking.
func (a *VoiceAnalyzer) buildPersona(ctx context.Context, id schema.UserIdentifier) (*schema.PersonaProfile, int, error) {
	analysis, err := a.feed.AnalyzeFeed(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if analysis.TotalVideos == 0 {
		return nil, 0, fmt.Errorf("insufficient content: no videos found for %s", id)
	}
	if analysis.ProcessedVideos == 0 {
		return nil, 0, fmt.Errorf("transcription failed for all %d videos of %s", analysis.TotalVideos, id)
	}
	a.logger.Info("feed analyzed", append(logAttrs(ctx),
		slog.String("creator", id.String()),
		slog.Int("processed", analysis.ProcessedVideos),
		slog.Int("failed", analysis.FailedVideos))...)

	videos := analysis.Videos
	patterns := a.extractor.ExtractPatterns(videos)
	matrix := a.extractor.ExtractPatternMatrix(videos)
	voice := profile.CreateProfile(videos, patterns, matrix)
	params := profile.CreateGenerationParameters(voice, patterns, videos)

	transcriptLength := 0
	for _, v := range videos {
		transcriptLength += utf8.RuneCountInString(v.Transcript)
	}

	now := a.now()
	return &schema.PersonaProfile{
		PersonaID:            a.newID(),
		UserIdentifier:       id,
		AnalysisDate:         now,
		VoiceProfile:         voice,
		SpeechPatterns:       patterns,
		PatternMapping:       matrix,
		GenerationParameters: params,
		Metadata: schema.PersonaMetadata{
			VideosAnalyzed:        len(videos),
			TotalTranscriptLength: transcriptLength,
			AnalysisVersion:       schema.AnalysisVersion,
			LastUpdated:           now,
		},
	}, len(videos), nil
}

// beginTracking opens an analysis run when a tracking store is configured.
// The returned func closes the run and is always safe to call.
func (a *VoiceAnalyzer) beginTracking(ctx context.Context, start time.Time, id schema.UserIdentifier) (context.Context, func(schema.FeedStatus, int)) {
	store := a.analysisStore()
	if store == nil {
		return ctx, func(schema.FeedStatus, int) {}
	}
	runID, err := store.BeginAnalysis(start, id, map[string]any{
		"batchSize":   a.cfg.BatchSize,
		"maxVideos":   a.cfg.MaxVideos,
		"sensitivity": a.cfg.Analysis.PatternSensitivity,
		"emotional":   a.cfg.Analysis.EnableEmotionalAnalysis,
	})
	if err != nil {
		contract.LogWarn("Failed to begin analysis tracking", err)
		return ctx, func(schema.FeedStatus, int) {}
	}
	return withAnalysisID(ctx, runID), func(status schema.FeedStatus, videos int) {
		if err := store.EndAnalysis(runID, a.now(), string(status), videos); err != nil {
			contract.LogWarn("Failed to end analysis tracking", err)
		}
	}
}

// persist saves the persona and its metrics. Failures only warn.
func (a *VoiceAnalyzer) persist(ctx context.Context, persona *schema.PersonaProfile) {
	if store := a.personaStore(); store != nil {
		if err := store.SavePersona(persona); err != nil {
			contract.LogWarn("Failed to save persona", err)
		}
	}
	if store := a.analysisStore(); store != nil {
		if runID := analysisIDFrom(ctx); runID > 0 {
			if err := store.RecordPersonaProfile(runID, persona); err != nil {
				contract.LogWarn("Failed to record persona metrics", err)
			}
		}
	}
}

// AnalyzeBatch analyzes creators one after another, pausing between them to respect
// the rate limit. It returns one result per identifier in input order.
func (a *VoiceAnalyzer) AnalyzeBatch(ctx context.Context, ids []schema.UserIdentifier) []schema.PersonaAnalysisResult {
	results := make([]schema.PersonaAnalysisResult, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			if err := a.sleep(ctx, a.cfg.BatchDelay(1)); err != nil {
				for _, rest := range ids[i:] {
					results = append(results, failedResult(rest, err))
				}
				break
			}
		}
		results = append(results, a.AnalyzeVoicePersona(withBatchPosition(ctx, i, len(ids)), id))
	}
	return results
}

func failedResult(id schema.UserIdentifier, err error) schema.PersonaAnalysisResult {
	return schema.PersonaAnalysisResult{
		UserIdentifier: id,
		Error:          &schema.ResultError{Code: ClassifyError(err), Message: err.Error()},
	}
}

// GenerateScript generates a script for the persona and records its score when tracking is enabled.
func (a *VoiceAnalyzer) GenerateScript(ctx context.Context, input schema.ScriptGenerationInput, persona *schema.PersonaProfile) (schema.ScriptGenerationResult, error) {
	result, err := a.generator.GenerateScript(ctx, input, persona)
	if err != nil {
		return result, err
	}
	if result.Success && result.Script != nil {
		if store := a.analysisStore(); store != nil {
			if err := store.RecordScriptScore(result.Script); err != nil {
				contract.LogWarn("Failed to record script score", err)
			}
		}
	}
	return result, nil
}

// ScoreContent measures how closely arbitrary text matches the persona's voice.
func (a *VoiceAnalyzer) ScoreContent(content string, persona *schema.PersonaProfile) schema.AuthenticityMetrics {
	return a.scorer.ScoreAuthenticity(content, persona.VoiceProfile, &persona.SpeechPatterns)
}

// ValidateContent checks arbitrary text against the persona's rules.
func (a *VoiceAnalyzer) ValidateContent(content string, persona *schema.PersonaProfile) schema.ValidationResult {
	return a.rules.ValidateGeneratedContent(content, persona.VoiceProfile, persona.GenerationParameters, &persona.SpeechPatterns)
}

// IsPassing reports whether a score reaches the configured passing mark.
func (a *VoiceAnalyzer) IsPassing(score int) bool {
	return a.scorer.IsPassing(score)
}

// ResolvePersona looks a stored persona up by ID, then by creator identifier (newest analysis wins).
func ResolvePersona(store contract.PersonaStore, ref string, defaultPlatform schema.Platform) (*schema.PersonaProfile, error) {
	if store == nil {
		return nil, errors.New("persona storage is disabled. Use --cache-backend to enable it")
	}
	persona, err := store.GetPersona(ref)
	if err == nil {
		return persona, nil
	}
	if !errors.Is(err, contract.ErrPersonaNotFound) {
		return nil, err
	}
	id, parseErr := contract.ParseUserIdentifier(ref, defaultPlatform)
	if parseErr != nil {
		return nil, err
	}
	return store.FindLatest(id)
}
