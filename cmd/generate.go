package cmd

import (
	"github.com/huangsam/voicepersona/core"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/spf13/cobra"
)

// generateCmd writes a script in the voice of a stored persona.
var generateCmd = &cobra.Command{
	Use:   "generate <persona>",
	Short: "Generate a script in the voice of a stored persona.",
	Long: `Generate a five-part short-form script (hook, bridge, main point, personal touch, CTA)
in the voice of a stored persona. The persona is looked up by ID, or by creator handle
for the most recent analysis of that creator.

Attempts are validated against the persona rules and scored for authenticity. The first
attempt reaching the minimum score wins; otherwise the best attempt is returned.

Examples:
  # Generate with the persona's optimal length
  voicepersona generate coffeeguy --topic "cold brew at home"

  # Ask for a 45 second script and more attempts
  voicepersona generate 4f6c2a9e-... --topic "latte art" --target-length 45 --max-retries 5`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteGenerate(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot generate script", err)
		}
	},
}

// scoreCmd scores content against a stored persona.
var scoreCmd = &cobra.Command{
	Use:   "score <persona> <content>",
	Short: "Score how authentic content sounds for a persona.",
	Long: `Score content on hook accuracy, bridge frequency, sentence patterns,
vocabulary match and rhythm, then combine them into a weighted overall score.

Examples:
  voicepersona score coffeeguy "Stop scrolling! You know this espresso slaps."`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteScore(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot score content", err)
		}
	},
}

// validateCmd checks content against the rules of a stored persona.
var validateCmd = &cobra.Command{
	Use:   "validate <persona> <content>",
	Short: "Check content against a persona's never and always rules.",
	Args:  cobra.ExactArgs(2),
	Long: `Report every rule the content breaks, such as formal connectives the creator never
uses or a missing signature element.

Examples:
  voicepersona validate coffeeguy "Furthermore, this espresso is excellent."`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteValidate(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot validate content", err)
		}
	},
}
