package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/internal/parquet"
)

// ExecuteAnalysisExport exports the analysis store of the global Manager to Parquet files
// named after outputFile.
func ExecuteAnalysisExport(outputFile string) error {
	store := Manager.GetAnalysisStore()
	if store == nil {
		return errors.New("analysis tracking is not configured")
	}
	return exportAnalysis(store, outputFile, os.Stdout)
}

// exportAnalysis writes one Parquet file per tracking table and reports progress to w.
func exportAnalysis(store contract.AnalysisStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total persona profiles: %d\n", status.TableSizes[profileMetricsTable])
	_, _ = fmt.Fprintf(w, "Total script scores: %d\n", status.TableSizes[scriptScoresTable])

	runs, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	profiles, err := store.GetAllPersonaProfiles()
	if err != nil {
		return fmt.Errorf("failed to retrieve persona profiles: %w", err)
	}
	scripts, err := store.GetAllScriptScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve script scores: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	profilesFile := outputFile + ".persona_profiles.parquet"
	if err := parquet.WritePersonaProfilesParquet(parquet.ConvertPersonaProfileRecords(profiles), profilesFile); err != nil {
		return fmt.Errorf("failed to write persona profiles: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d persona profiles to: %s\n", len(profiles), profilesFile)

	scriptsFile := outputFile + ".script_scores.parquet"
	if err := parquet.WriteScriptScoresParquet(parquet.ConvertScriptScoreRecords(scripts), scriptsFile); err != nil {
		return fmt.Errorf("failed to write script scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d script scores to: %s\n", len(scripts), scriptsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow), Spark or Arrow.")
	return nil
}
