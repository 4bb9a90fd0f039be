package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteScriptResult outputs a generated script with its authenticity breakdown.
func WriteScriptResult(result schema.ScriptGenerationResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScriptCSV(w, result)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScriptText(w, result, cfg)
		}, "Wrote text")
	}
}

func writeScriptText(w io.Writer, result schema.ScriptGenerationResult, cfg *contract.Config) error {
	if !result.Success || result.Script == nil {
		msg := "generation failed"
		if result.Error != nil {
			msg = fmt.Sprintf("%s: %s", result.Error.Code, result.Error.Message)
		}
		_, err := fmt.Fprintf(w, "❌ %s after %d attempts\n", msg, result.Attempts)
		return err
	}

	s := result.Script
	status := "passed"
	if !result.Passed {
		status = "best effort, did not pass"
	}
	header := []string{
		fmt.Sprintf("📝 %s (%s)", s.Topic, status),
		fmt.Sprintf("Script %s for persona %s, %d words (~%.0fs of %ds), %d attempts",
			s.ID, s.PersonaID, s.Metadata.WordCount, s.Metadata.ActualLength, s.Metadata.TargetLength, result.Attempts),
		"",
		s.Script,
		"",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if err := writeMetricsTable(w, s.Authenticity, cfg); err != nil {
		return err
	}
	if len(result.Violations) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		return writeViolationsTable(w, result.Violations, cfg)
	}
	return nil
}

func writeScriptCSV(w io.Writer, result schema.ScriptGenerationResult) error {
	header := []string{
		"script_id",
		"persona_id",
		"topic",
		"word_count",
		"target_length",
		"actual_length",
		"overall_score",
		"label",
		"passed",
		"attempts",
		"violations",
		"script",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		s := result.Script
		if s == nil {
			return nil
		}
		rules := make([]string, 0, len(result.Violations))
		for _, v := range result.Violations {
			rules = append(rules, v.RuleID)
		}
		return cw.Write([]string{
			s.ID,
			s.PersonaID,
			s.Topic,
			itoa(s.Metadata.WordCount),
			itoa(s.Metadata.TargetLength),
			strconv.FormatFloat(s.Metadata.ActualLength, 'f', 1, 64),
			itoa(s.Authenticity.OverallScore),
			contract.GetPlainLabel(s.Authenticity.OverallScore),
			strconv.FormatBool(result.Passed),
			itoa(result.Attempts),
			strings.Join(rules, "|"),
			s.Script,
		})
	})
}

// metricsReport is the JSON shape of a standalone authenticity score.
type metricsReport struct {
	schema.AuthenticityMetrics
	Label   string `json:"label"`
	Passing bool   `json:"passing"`
}

// WriteMetrics outputs an authenticity breakdown for arbitrary content.
func WriteMetrics(metrics schema.AuthenticityMetrics, passing bool, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, metricsReport{
				AuthenticityMetrics: metrics,
				Label:               contract.GetPlainLabel(metrics.OverallScore),
				Passing:             passing,
			})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, metrics)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeMetricsTable(w, metrics, cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Passing: %s\n", yesNo(passing))
			return err
		}, "Wrote table")
	}
}

func writeMetricsTable(w io.Writer, metrics schema.AuthenticityMetrics, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Weight", "Score", "Check"})
	width := maxTextColumnWidth(cfg, 40)
	breakdown := metrics.Breakdown()
	var data [][]string
	for _, key := range schema.AllMetricKeys {
		m := breakdown[key]
		data = append(data, []string{string(key), itoa(m.Weight), itoa(m.Score), contract.TruncateText(m.Check, width)})
	}
	data = append(data, []string{"overall", itoa(metrics.TotalWeight()), itoa(metrics.OverallScore), scoreLabel(metrics.OverallScore, cfg)})
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeMetricsCSV(w io.Writer, metrics schema.AuthenticityMetrics) error {
	return writeCSVWithHeader(w, []string{"metric", "weight", "score", "check"}, func(cw *csv.Writer) error {
		breakdown := metrics.Breakdown()
		for _, key := range schema.AllMetricKeys {
			m := breakdown[key]
			if err := cw.Write([]string{string(key), itoa(m.Weight), itoa(m.Score), m.Check}); err != nil {
				return err
			}
		}
		return cw.Write([]string{"overall", itoa(metrics.TotalWeight()), itoa(metrics.OverallScore), contract.GetPlainLabel(metrics.OverallScore)})
	})
}

// WriteValidation outputs the outcome of a rules check.
func WriteValidation(result schema.ValidationResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"rule_id", "kind", "message"}, func(cw *csv.Writer) error {
				for _, v := range result.Violations {
					if err := cw.Write([]string{v.RuleID, v.Kind, v.Message}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if result.Valid {
				_, err := fmt.Fprintln(w, "✅ Content follows every persona rule")
				return err
			}
			if _, err := fmt.Fprintf(w, "❌ %d rule violations\n", len(result.Violations)); err != nil {
				return err
			}
			return writeViolationsTable(w, result.Violations, cfg)
		}, "Wrote table")
	}
}

func writeViolationsTable(w io.Writer, violations []schema.Violation, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rule", "Kind", "Message"})
	width := maxTextColumnWidth(cfg, 35)
	var data [][]string
	for _, v := range violations {
		data = append(data, []string{v.RuleID, v.Kind, contract.TruncateText(v.Message, width)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
