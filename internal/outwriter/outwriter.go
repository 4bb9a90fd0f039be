// Package outwriter renders personas, scripts and scores as text tables, JSON or CSV.
package outwriter

import (
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct {
	cfg *contract.Config
}

// NewOutWriter creates an output writer bound to the output settings of cfg.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// WritePersonaResults prints analysis results.
func (ow *OutWriter) WritePersonaResults(results []schema.PersonaAnalysisResult, duration time.Duration) error {
	return WritePersonaResults(results, ow.cfg, duration)
}

// WritePersona prints a single persona in detail.
func (ow *OutWriter) WritePersona(persona *schema.PersonaProfile) error {
	return WritePersona(persona, ow.cfg)
}

// WritePersonaList prints stored persona summaries.
func (ow *OutWriter) WritePersonaList(summaries []schema.PersonaSummary) error {
	return WritePersonaList(summaries, ow.cfg)
}

// WriteScriptResult prints a generated script.
func (ow *OutWriter) WriteScriptResult(result schema.ScriptGenerationResult) error {
	return WriteScriptResult(result, ow.cfg)
}

// WriteMetrics prints an authenticity breakdown.
func (ow *OutWriter) WriteMetrics(metrics schema.AuthenticityMetrics, passing bool) error {
	return WriteMetrics(metrics, passing, ow.cfg)
}

// WriteValidation prints a rules check.
func (ow *OutWriter) WriteValidation(result schema.ValidationResult) error {
	return WriteValidation(result, ow.cfg)
}
