package cmd

import (
	"github.com/huangsam/voicepersona/core"
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/spf13/cobra"
)

// personaCmd groups the stored persona commands.
var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Inspect and manage stored personas",
	Long: `Personas are stored in the cache backend after a successful analysis.

Subcommands:
  list   - List stored personas
  show   - Print one persona in detail
  delete - Remove personas by ID

Examples:
  voicepersona persona list
  voicepersona persona show coffeeguy --output json`,
}

var personaListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored personas, newest first",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePersonaList(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot list personas", err)
		}
	},
}

var personaShowCmd = &cobra.Command{
	Use:     "show <persona>",
	Short:   "Print a stored persona by ID or creator handle",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePersonaShow(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot show persona", err)
		}
	},
}

var personaDeleteCmd = &cobra.Command{
	Use:     "delete <persona-id> [persona-id...]",
	Short:   "Delete stored personas by ID",
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecutePersonaDelete(rootCtx, cfg, args); err != nil {
			contract.LogFatal("Cannot delete persona", err)
		}
	},
}
