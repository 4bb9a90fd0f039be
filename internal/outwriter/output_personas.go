package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePersonaResults outputs analysis results, dispatching on the configured output format.
func WritePersonaResults(results []schema.PersonaAnalysisResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaResultsCSV(w, results)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaResultsTable(w, results, cfg, duration)
		}, "Wrote table")
	}
}

func writePersonaResultsTable(w io.Writer, results []schema.PersonaAnalysisResult, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Creator", "Status", "Persona", "Videos", "Hooks", "Threshold", "Error"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	errWidth := maxTextColumnWidth(cfg, 90)
	succeeded := 0
	var data [][]string
	for _, r := range results {
		row := []string{r.UserIdentifier.String()}
		if r.Success && r.Persona != nil {
			succeeded++
			row = append(row,
				"ok",
				r.Persona.PersonaID,
				itoa(r.Persona.Metadata.VideosAnalyzed),
				itoa(len(r.Persona.VoiceProfile.Hooks)),
				itoa(r.Persona.GenerationParameters.AuthenticityThreshold),
				"",
			)
		} else {
			msg := ""
			code := ""
			if r.Error != nil {
				code = string(r.Error.Code)
				msg = contract.TruncateText(r.Error.Message, errWidth)
			}
			row = append(row, code, "-", "-", "-", "-", msg)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analyzed %d creators (%d succeeded) in %v. Cache backend: %s\n",
		len(results), succeeded, duration.Round(time.Millisecond), cfg.CacheBackend)
	return err
}

func writePersonaResultsCSV(w io.Writer, results []schema.PersonaAnalysisResult) error {
	header := []string{
		"handle",
		"platform",
		"success",
		"persona_id",
		"videos_analyzed",
		"transcript_length",
		"hook_count",
		"authenticity_threshold",
		"optimal_length",
		"error_code",
		"error_message",
		"processing_ms",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				r.UserIdentifier.Handle,
				string(r.UserIdentifier.Platform),
				strconv.FormatBool(r.Success),
			}
			if p := r.Persona; p != nil {
				rec = append(rec,
					p.PersonaID,
					itoa(p.Metadata.VideosAnalyzed),
					itoa(p.Metadata.TotalTranscriptLength),
					itoa(len(p.VoiceProfile.Hooks)),
					itoa(p.GenerationParameters.AuthenticityThreshold),
					itoa(p.GenerationParameters.OptimalLength),
				)
			} else {
				rec = append(rec, "", "", "", "", "", "")
			}
			if r.Error != nil {
				rec = append(rec, string(r.Error.Code), r.Error.Message)
			} else {
				rec = append(rec, "", "")
			}
			rec = append(rec, strconv.FormatInt(r.ProcessingTime.Milliseconds(), 10))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WritePersona outputs one persona in detail.
func WritePersona(persona *schema.PersonaProfile, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, persona)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaCSV(w, persona)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaText(w, persona, cfg)
		}, "Wrote text")
	}
}

type bridgeCount struct {
	phrase string
	count  int
}

// sortedBridges orders bridges by count, then phrase.
func sortedBridges(bridges map[string]int) []bridgeCount {
	out := make([]bridgeCount, 0, len(bridges))
	for _, phrase := range slices.Sorted(maps.Keys(bridges)) {
		out = append(out, bridgeCount{phrase: phrase, count: bridges[phrase]})
	}
	slices.SortStableFunc(out, func(a, b bridgeCount) int {
		return cmp.Compare(b.count, a.count)
	})
	return out
}

func formatBridges(bridges map[string]int) string {
	parts := make([]string, 0, len(bridges))
	for _, b := range sortedBridges(bridges) {
		parts = append(parts, fmt.Sprintf("%s (%d)", b.phrase, b.count))
	}
	return strings.Join(parts, ", ")
}

func writePersonaText(w io.Writer, p *schema.PersonaProfile, cfg *contract.Config) error {
	v := p.VoiceProfile
	g := p.GenerationParameters
	b := p.SpeechPatterns.Baseline

	lines := []string{
		fmt.Sprintf("🎙️  Persona %s (%s)", p.PersonaID, p.UserIdentifier),
		fmt.Sprintf("Analyzed %s from %d videos (%d characters of transcript), version %s",
			p.AnalysisDate.Format(contract.DateTimeFormat), p.Metadata.VideosAnalyzed,
			p.Metadata.TotalTranscriptLength, p.Metadata.AnalysisVersion),
		"",
		"Voice",
		fmt.Sprintf("   Hooks:       %s", strings.Join(v.Hooks, " | ")),
		fmt.Sprintf("   Bridges:     %s", formatBridges(v.Bridges)),
		fmt.Sprintf("   Energy:      %s (%s)", b.TypicalEnergy, v.EnergyWave),
		fmt.Sprintf("   Rhythm:      %s", v.RhythmPattern),
		fmt.Sprintf("   Sentences:   %s", strings.Join(v.SentencePatterns, ", ")),
		fmt.Sprintf("   Signature:   %s", strings.Join(v.SignatureElements, ", ")),
		fmt.Sprintf("   Vocabulary:  %s", strings.Join(v.VocabularyFingerprint, ", ")),
		"",
		"Generation",
		fmt.Sprintf("   Optimal length:   %ds", g.OptimalLength),
		fmt.Sprintf("   Threshold:        %d%%", g.AuthenticityThreshold),
		fmt.Sprintf("   Rotation:         %s", g.PatternRotation),
		fmt.Sprintf("   Hook ratio:       %d primary / %d secondary", g.HookRatio.Primary, g.HookRatio.Secondary),
		fmt.Sprintf("   Sentence mix:     %d%% short, %d%% medium, %d%% long",
			g.SentenceDistribution.Short, g.SentenceDistribution.Medium, g.SentenceDistribution.Long),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Element", "Frequency", "Examples", "Context"})
	width := maxTextColumnWidth(cfg, 50)
	var data [][]string
	for _, e := range p.PatternMapping.Elements() {
		data = append(data, []string{
			string(e.Element),
			e.Frequency,
			contract.TruncateText(strings.Join(e.Examples, ", "), width/2),
			contract.TruncateText(e.Context, width/2),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writePersonaCSV flattens a persona into section/key/value records.
func writePersonaCSV(w io.Writer, p *schema.PersonaProfile) error {
	records := [][]string{
		{"persona", "id", p.PersonaID},
		{"persona", "handle", p.UserIdentifier.Handle},
		{"persona", "platform", string(p.UserIdentifier.Platform)},
		{"persona", "analysis_date", p.AnalysisDate.Format(contract.DateTimeFormat)},
		{"voice", "hooks", strings.Join(p.VoiceProfile.Hooks, "|")},
		{"voice", "bridges", formatBridges(p.VoiceProfile.Bridges)},
		{"voice", "energy_wave", p.VoiceProfile.EnergyWave},
		{"voice", "rhythm", p.VoiceProfile.RhythmPattern},
		{"voice", "sentence_patterns", strings.Join(p.VoiceProfile.SentencePatterns, "|")},
		{"voice", "signature_elements", strings.Join(p.VoiceProfile.SignatureElements, "|")},
		{"voice", "vocabulary", strings.Join(p.VoiceProfile.VocabularyFingerprint, "|")},
		{"generation", "optimal_length", itoa(p.GenerationParameters.OptimalLength)},
		{"generation", "authenticity_threshold", itoa(p.GenerationParameters.AuthenticityThreshold)},
		{"generation", "pattern_rotation", string(p.GenerationParameters.PatternRotation)},
		{"metadata", "videos_analyzed", itoa(p.Metadata.VideosAnalyzed)},
		{"metadata", "transcript_length", itoa(p.Metadata.TotalTranscriptLength)},
		{"metadata", "analysis_version", p.Metadata.AnalysisVersion},
	}
	for _, e := range p.PatternMapping.Elements() {
		records = append(records, []string{"pattern", string(e.Element), e.Frequency})
	}
	return writeCSVWithHeader(w, []string{"section", "key", "value"}, func(cw *csv.Writer) error {
		return cw.WriteAll(records)
	})
}

// WritePersonaList outputs the stored persona summaries.
func WritePersonaList(summaries []schema.PersonaSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaListCSV(w, summaries)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePersonaListTable(w, summaries)
		}, "Wrote table")
	}
}

func writePersonaListTable(w io.Writer, summaries []schema.PersonaSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No stored personas. Run 'voicepersona analyze <handle>' first.")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Persona", "Creator", "Analyzed", "Videos", "Hooks", "Threshold"})
	var data [][]string
	for _, s := range summaries {
		data = append(data, []string{
			s.PersonaID,
			s.UserIdentifier.String(),
			s.AnalysisDate.Format(contract.DateTimeFormat),
			itoa(s.VideosAnalyzed),
			itoa(s.HookCount),
			itoa(s.Threshold),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writePersonaListCSV(w io.Writer, summaries []schema.PersonaSummary) error {
	header := []string{"persona_id", "handle", "platform", "analysis_date", "videos_analyzed", "hook_count", "authenticity_threshold"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			if err := cw.Write([]string{
				s.PersonaID,
				s.UserIdentifier.Handle,
				string(s.UserIdentifier.Platform),
				s.AnalysisDate.Format(contract.DateTimeFormat),
				itoa(s.VideosAnalyzed),
				itoa(s.HookCount),
				itoa(s.Threshold),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
