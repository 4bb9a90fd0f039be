// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/voicepersona/core"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CollaboratorFactory builds the feed client and transcriber for one analysis.
type CollaboratorFactory func(cfg *contract.Config) (contract.FeedClient, contract.Transcriber, error)

// ServerOption customizes the MCP server.
type ServerOption func(*toolHandler)

// WithCollaborators replaces the HTTP collaborators used by analyze_persona.
func WithCollaborators(f CollaboratorFactory) ServerOption {
	return func(h *toolHandler) { h.collaborators = f }
}

// NewMCPServer initializes and configures the VoicePersona MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, opts ...ServerOption) *server.MCPServer {
	s := server.NewMCPServer(
		"VoicePersona Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:       baseCfg,
		mgr:           mgr,
		collaborators: core.NewCollaborators,
	}
	for _, opt := range opts {
		opt(h)
	}

	// --- 1. Tool: analyze_persona ---
	s.AddTool(mcp.NewTool("analyze_persona",
		mcp.WithDescription("Analyze a creator's recent videos and build a voice persona."),
		mcp.WithString("handle", mcp.Description("Creator handle, optionally prefixed with the platform (tiktok:handle)."), mcp.Required()),
		mcp.WithString("platform", mcp.Description("Platform used when the handle has no prefix."), mcp.Enum("tiktok", "instagram")),
		mcp.WithNumber("max_videos", mcp.Description("Maximum number of videos to analyze.")),
		mcp.WithNumber("batch_size", mcp.Description("Number of videos transcribed concurrently.")),
		mcp.WithString("sensitivity", mcp.Description("Pattern sensitivity."), mcp.Enum("low", "medium", "high")),
		mcp.WithNumber("requests_per_minute", mcp.Description("Transcription requests allowed per minute.")),
		mcp.WithNumber("burst_limit", mcp.Description("Upper bound on concurrent transcriptions.")),
		mcp.WithNumber("min_transcript_length", mcp.Description("Transcripts shorter than this many characters count as failures.")),
		mcp.WithString("cache_ttl", mcp.Description("How long transcripts stay cached, as a duration like 24h.")),
		mcp.WithBoolean("enable_emotional_analysis", mcp.Description("Analyze excited and explaining states (default true).")),
	), h.handleAnalyzePersona)

	// --- 2. Tool: generate_script ---
	s.AddTool(mcp.NewTool("generate_script",
		mcp.WithDescription("Generate a short-form script in the voice of a stored persona."),
		mcp.WithString("persona", mcp.Description("Persona ID or creator handle of a stored persona."), mcp.Required()),
		mcp.WithString("topic", mcp.Description("Topic of the script."), mcp.Required()),
		mcp.WithNumber("target_length", mcp.Description("Target length in seconds (defaults to the persona's optimal length).")),
		mcp.WithString("style", mcp.Description("Optional style hint.")),
	), h.handleGenerateScript)

	// --- 3. Tool: score_authenticity ---
	s.AddTool(mcp.NewTool("score_authenticity",
		mcp.WithDescription("Score how closely content matches a stored persona's voice."),
		mcp.WithString("persona", mcp.Description("Persona ID or creator handle of a stored persona."), mcp.Required()),
		mcp.WithString("content", mcp.Description("Content to score."), mcp.Required()),
	), h.handleScoreAuthenticity)

	// --- 4. Tool: validate_content ---
	s.AddTool(mcp.NewTool("validate_content",
		mcp.WithDescription("Check content against the never and always rules of a stored persona."),
		mcp.WithString("persona", mcp.Description("Persona ID or creator handle of a stored persona."), mcp.Required()),
		mcp.WithString("content", mcp.Description("Content to validate."), mcp.Required()),
	), h.handleValidateContent)

	// --- 5. Tool: list_personas ---
	s.AddTool(mcp.NewTool("list_personas",
		mcp.WithDescription("List the stored personas."),
	), h.handleListPersonas)

	return s
}

// StartMCPServer starts the VoicePersona MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
