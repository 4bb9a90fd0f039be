package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/voicepersona/core"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd builds a voice persona for one or more creators.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <handle> [handle...]",
	Short: "Build a voice persona from a creator's recent videos.",
	Long: `Fetch a creator's most recent videos, transcribe them and distill the transcripts
into a voice persona: hooks, bridges, energy, sentence patterns and vocabulary.

Handles may carry a platform prefix (tiktok:coffeeguy) and a leading @.
Successful personas are stored so that generate, score and validate can use them later.

Examples:
  # Analyze one creator with the defaults
  voicepersona analyze @coffeeguy

  # Analyze fewer videos with stricter pattern matching
  voicepersona analyze coffeeguy --max-videos 10 --sensitivity low

  # Export the personas as JSON
  voicepersona analyze coffeeguy bakerbee --output json --output-file personas.json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot run persona analysis", err)
		}
	},
}

// batchCmd analyzes creators listed in a file and on the command line.
var batchCmd = &cobra.Command{
	Use:   "batch [handle...]",
	Short: "Analyze many creators in sequence.",
	Long: `Analyze creators one after another, pausing between them to respect the
transcription rate limit. Handles come from --handles-file (one per line, # for comments)
followed by any positional arguments.

Every creator gets a result; the command fails only when all of them failed.

Examples:
  # Analyze the creators of a campaign
  voicepersona batch --handles-file creators.txt

  # Mix a file and extra handles
  voicepersona batch --handles-file creators.txt tiktok:bakerbee`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		handles, err := batchHandles(viper.GetString("handles-file"), args)
		if err != nil {
			contract.LogFatal("Cannot read creator handles", err)
		}
		if err := core.ExecuteAnalyze(rootCtx, cfg, handles); err != nil {
			contract.LogFatal("Cannot run batch analysis", err)
		}
	},
}

// batchHandles merges the handles of a file with the positional arguments.
func batchHandles(path string, args []string) ([]string, error) {
	var handles []string
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		handles, err = readHandles(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	handles = append(handles, args...)
	if len(handles) == 0 {
		return nil, fmt.Errorf("no creator handles given. Use --handles-file or pass handles as arguments")
	}
	return handles, nil
}

func readHandles(r io.Reader) ([]string, error) {
	var handles []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		handles = append(handles, line)
	}
	return handles, scanner.Err()
}
