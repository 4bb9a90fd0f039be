// Package core assembles voice personas and drives script generation, scoring and validation.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/internal/iocache"
	"github.com/huangsam/voicepersona/internal/logging"
	"github.com/huangsam/voicepersona/internal/outwriter"
	"github.com/huangsam/voicepersona/internal/tiktok"
	"github.com/huangsam/voicepersona/internal/transcribe"
	"github.com/huangsam/voicepersona/schema"
)

// ExecutorFunc defines the function signature of the CLI entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, args []string) error

// cacheManager returns the stores used by the executors.
var cacheManager = func() contract.CacheManager { return iocache.Manager }

// NewCollaborators builds the HTTP feed client and transcriber from the configuration.
func NewCollaborators(cfg *contract.Config) (contract.FeedClient, contract.Transcriber, error) {
	feedClient, err := tiktok.NewClient(tiktok.Config{
		BaseURL: cfg.FeedBaseURL,
		APIKey:  cfg.FeedAPIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("feed client: %w. Set --feed-url or VOICEPERSONA_FEED_URL", err)
	}
	transcriber, err := transcribe.NewClient(transcribe.Config{
		BaseURL: cfg.TranscribeBaseURL,
		APIKey:  cfg.TranscribeAPIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("transcriber: %w. Set --transcribe-url or VOICEPERSONA_TRANSCRIBE_URL", err)
	}
	return feedClient, transcriber, nil
}

func newLogger(cfg *contract.Config) *slog.Logger {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		contract.LogWarn("Falling back to discarded logs", err)
		return logging.Discard()
	}
	return logger
}

// offlineAnalyzer builds an analyzer for operations that never touch a creator feed.
func offlineAnalyzer(cfg *contract.Config) *VoiceAnalyzer {
	return NewVoiceAnalyzerFromConfig(cfg, nil, nil, cacheManager(), newLogger(cfg))
}

// ExecuteAnalyze analyzes one or more creators and prints the results.
// It fails only when every analysis failed.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one creator handle is required")
	}
	ids := make([]schema.UserIdentifier, 0, len(args))
	for _, arg := range args {
		id, err := contract.ParseUserIdentifier(arg, cfg.Platform)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	feedClient, transcriber, err := NewCollaborators(cfg)
	if err != nil {
		return err
	}
	analyzer := NewVoiceAnalyzerFromConfig(cfg, feedClient, transcriber, cacheManager(), newLogger(cfg))

	start := time.Now()
	results := analyzer.AnalyzeBatch(ctx, ids)
	if err := outwriter.WritePersonaResults(results, cfg, time.Since(start)); err != nil {
		return err
	}
	return allFailed(results)
}

func allFailed(results []schema.PersonaAnalysisResult) error {
	for _, r := range results {
		if r.Success {
			return nil
		}
	}
	if len(results) == 1 && results[0].Error != nil {
		return fmt.Errorf("%s: %s", results[0].Error.Code, results[0].Error.Message)
	}
	return fmt.Errorf("all %d analyses failed", len(results))
}

// ExecuteGenerate generates a script for a stored persona (args[0]) on cfg.Topic.
func ExecuteGenerate(ctx context.Context, cfg *contract.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one persona ID or creator handle is required")
	}
	analyzer := offlineAnalyzer(cfg)
	persona, err := ResolvePersona(cacheManager().GetPersonaStore(), args[0], cfg.Platform)
	if err != nil {
		return err
	}
	result, err := analyzer.GenerateScript(ctx, schema.ScriptGenerationInput{
		PersonaID:    persona.PersonaID,
		Topic:        cfg.Topic,
		TargetLength: cfg.TargetLength,
		Style:        cfg.Style,
	}, persona)
	if err != nil {
		return err
	}
	if err := outwriter.WriteScriptResult(result, cfg); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%s: %s", result.Error.Code, result.Error.Message)
	}
	return nil
}

// ExecuteScore scores content (args[1]) against a stored persona (args[0]).
func ExecuteScore(_ context.Context, cfg *contract.Config, args []string) error {
	persona, content, err := personaAndContent(cfg, args)
	if err != nil {
		return err
	}
	analyzer := offlineAnalyzer(cfg)
	metrics := analyzer.ScoreContent(content, persona)
	return outwriter.WriteMetrics(metrics, analyzer.IsPassing(metrics.OverallScore), cfg)
}

// ExecuteValidate checks content (args[1]) against the rules of a stored persona (args[0]).
func ExecuteValidate(_ context.Context, cfg *contract.Config, args []string) error {
	persona, content, err := personaAndContent(cfg, args)
	if err != nil {
		return err
	}
	return outwriter.WriteValidation(offlineAnalyzer(cfg).ValidateContent(content, persona), cfg)
}

func personaAndContent(cfg *contract.Config, args []string) (*schema.PersonaProfile, string, error) {
	if len(args) != 2 {
		return nil, "", errors.New("a persona reference and content are required")
	}
	persona, err := ResolvePersona(cacheManager().GetPersonaStore(), args[0], cfg.Platform)
	if err != nil {
		return nil, "", err
	}
	return persona, args[1], nil
}

// ExecutePersonaList prints all stored personas.
func ExecutePersonaList(_ context.Context, cfg *contract.Config, _ []string) error {
	store := cacheManager().GetPersonaStore()
	if store == nil {
		return errors.New("persona storage is disabled. Use --cache-backend to enable it")
	}
	summaries, err := store.ListPersonas()
	if err != nil {
		return err
	}
	return outwriter.WritePersonaList(summaries, cfg)
}

// ExecutePersonaShow prints one stored persona in detail.
func ExecutePersonaShow(_ context.Context, cfg *contract.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("exactly one persona ID or creator handle is required")
	}
	persona, err := ResolvePersona(cacheManager().GetPersonaStore(), args[0], cfg.Platform)
	if err != nil {
		return err
	}
	return outwriter.WritePersona(persona, cfg)
}

// ExecutePersonaDelete removes stored personas by ID.
func ExecutePersonaDelete(_ context.Context, _ *contract.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one persona ID is required")
	}
	store := cacheManager().GetPersonaStore()
	if store == nil {
		return errors.New("persona storage is disabled. Use --cache-backend to enable it")
	}
	for _, id := range args {
		if err := store.DeletePersona(id); err != nil {
			return err
		}
		fmt.Printf("Deleted persona %s\n", id)
	}
	return nil
}
