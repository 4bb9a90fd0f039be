package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/huangsam/voicepersona/core"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/internal/logging"
	"github.com/huangsam/voicepersona/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg       *contract.Config
	mgr           contract.CacheManager
	collaborators CollaboratorFactory
}

// logger writes to stderr so that stdout stays reserved for the protocol.
func (h *toolHandler) logger() *slog.Logger {
	logger, err := logging.New(logging.Options{Level: h.baseCfg.LogLevel, Format: h.baseCfg.LogFormat})
	if err != nil {
		return logging.Discard()
	}
	return logger
}

func (h *toolHandler) personaStore() contract.PersonaStore {
	if h.mgr == nil {
		return nil
	}
	return h.mgr.GetPersonaStore()
}

func (h *toolHandler) resolvePersona(cfg *contract.Config, request mcp.CallToolRequest) (*schema.PersonaProfile, error) {
	ref := strings.TrimSpace(request.GetString("persona", ""))
	if ref == "" {
		return nil, fmt.Errorf("persona is required")
	}
	return core.ResolvePersona(h.personaStore(), ref, cfg.Platform)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzePersona(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("platform", ""); p != "" {
		cfg.Platform = schema.Platform(strings.ToLower(p))
	}

	id, err := contract.ParseUserIdentifier(request.GetString("handle", ""), cfg.Platform)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid handle: %v", err)), nil
	}

	// Zero or absent numeric arguments keep the configured value.
	maxVideos := request.GetInt("max_videos", 0)
	if maxVideos < 0 || maxVideos > contract.MaxVideosLimit {
		return mcp.NewToolResultError(fmt.Sprintf("max_videos must be between 0 (configured default) and %d", contract.MaxVideosLimit)), nil
	}
	override := schema.PersonaAnalysisConfig{
		MaxVideos: maxVideos,
		BatchSize: request.GetInt("batch_size", 0),
		RateLimit: schema.RateLimitConfig{
			RequestsPerMinute: request.GetInt("requests_per_minute", 0),
			BurstLimit:        request.GetInt("burst_limit", 0),
		},
		Analysis: schema.AnalysisOptions{
			MinTranscriptLength: request.GetInt("min_transcript_length", 0),
		},
	}
	if override.BatchSize < 0 || override.RateLimit.RequestsPerMinute < 0 || override.RateLimit.BurstLimit < 0 || override.Analysis.MinTranscriptLength < 0 {
		return mcp.NewToolResultError("batch_size, requests_per_minute, burst_limit and min_transcript_length cannot be negative"), nil
	}
	if v := request.GetString("cache_ttl", ""); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid cache_ttl '%s'. expected a positive duration like 24h", v)), nil
		}
		override.CacheTTL = ttl
	}
	if s := request.GetString("sensitivity", ""); s != "" {
		override.Analysis.PatternSensitivity = schema.Sensitivity(strings.ToLower(s))
		if _, ok := schema.ValidSensitivities[override.Analysis.PatternSensitivity]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid sensitivity '%s'. must be low, medium, high", s)), nil
		}
	}
	cfg.Persona = cfg.Persona.Merge(override)
	// Merge only applies non-zero values, so the bool is set explicitly when present.
	if _, ok := request.GetArguments()["enable_emotional_analysis"]; ok {
		cfg.Persona.Analysis.EnableEmotionalAnalysis = request.GetBool("enable_emotional_analysis", true)
	}

	feedClient, transcriber, err := h.collaborators(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis unavailable: %v", err)), nil
	}
	analyzer := core.NewVoiceAnalyzerFromConfig(cfg, feedClient, transcriber, h.mgr, h.logger())

	result := analyzer.AnalyzeVoicePersona(ctx, id)
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %s: %s", result.Error.Code, result.Error.Message)), nil
	}
	return jsonResult(result.Persona)
}

func (h *toolHandler) handleGenerateScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	topic := strings.TrimSpace(request.GetString("topic", ""))
	if topic == "" {
		return mcp.NewToolResultError("topic is required"), nil
	}
	targetLength := request.GetInt("target_length", 0)
	if targetLength < 0 {
		return mcp.NewToolResultError("target_length cannot be negative"), nil
	}

	persona, err := h.resolvePersona(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("persona lookup failed: %v", err)), nil
	}

	analyzer := core.NewVoiceAnalyzerFromConfig(cfg, nil, nil, h.mgr, h.logger())
	result, err := analyzer.GenerateScript(ctx, schema.ScriptGenerationInput{
		PersonaID:    persona.PersonaID,
		Topic:        topic,
		TargetLength: targetLength,
		Style:        request.GetString("style", ""),
	}, persona)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid generation parameters: %v", err)), nil
	}
	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %s: %s", result.Error.Code, result.Error.Message)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleScoreAuthenticity(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	content := request.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("content is required"), nil
	}
	persona, err := h.resolvePersona(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("persona lookup failed: %v", err)), nil
	}

	analyzer := core.NewVoiceAnalyzerFromConfig(cfg, nil, nil, h.mgr, logging.Discard())
	metrics := analyzer.ScoreContent(content, persona)
	return jsonResult(struct {
		schema.AuthenticityMetrics
		Label   string `json:"label"`
		Passing bool   `json:"passing"`
	}{metrics, contract.GetPlainLabel(metrics.OverallScore), analyzer.IsPassing(metrics.OverallScore)})
}

func (h *toolHandler) handleValidateContent(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	content := request.GetString("content", "")
	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("content is required"), nil
	}
	persona, err := h.resolvePersona(cfg, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("persona lookup failed: %v", err)), nil
	}

	analyzer := core.NewVoiceAnalyzerFromConfig(cfg, nil, nil, h.mgr, logging.Discard())
	return jsonResult(analyzer.ValidateContent(content, persona))
}

func (h *toolHandler) handleListPersonas(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.personaStore()
	if store == nil {
		return mcp.NewToolResultError("persona storage is disabled. Use --cache-backend to enable it"), nil
	}
	summaries, err := store.ListPersonas()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(summaries)
}
