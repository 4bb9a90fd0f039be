// Package cmd defines the command-line interface for voicepersona.
package cmd

import (
	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the persona subcommands to the parent persona command
	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaShowCmd)
	personaCmd.AddCommand(personaDeleteCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("platform", string(schema.TikTokPlatform), "Default platform for bare handles: tiktok or instagram")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Progress log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Progress log format: text or json or discard")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("feed-url", "", "Base URL of the creator feed service")
	rootCmd.PersistentFlags().String("feed-api-key", "", "API key of the creator feed service (prefer VOICEPERSONA_FEED_API_KEY)")
	rootCmd.PersistentFlags().String("transcribe-url", "", "Base URL of the transcription service")
	rootCmd.PersistentFlags().String("transcribe-api-key", "", "API key of the transcription service (prefer VOICEPERSONA_TRANSCRIBE_API_KEY)")
	rootCmd.PersistentFlags().String("request-timeout", contract.DefaultRequestTimeout.String(), "Timeout of a single collaborator request")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Transcript and persona storage: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	bindFlags("root", rootCmd.PersistentFlags())

	// analyze and batch share the analysis flags; sharedSetup binds the flags of the running command
	for _, c := range []*cobra.Command{analyzeCmd, batchCmd} {
		c.Flags().Int("batch-size", schema.DefaultBatchSize, "Number of videos transcribed concurrently")
		c.Flags().Int("max-videos", schema.DefaultMaxVideos, "Maximum number of recent videos to analyze")
		c.Flags().String("cache-ttl", schema.DefaultCacheTTL.String(), "How long cached transcripts stay fresh")
		c.Flags().Int("requests-per-minute", schema.DefaultRequestsPerMinute, "Transcription requests allowed per minute")
		c.Flags().Int("burst-limit", schema.DefaultBurstLimit, "Upper bound on concurrent transcription requests")
		c.Flags().Int("min-transcript-length", schema.DefaultMinTranscriptLength, "Transcripts shorter than this many characters are skipped")
		c.Flags().String("sensitivity", string(schema.MediumSensitivity), "Pattern sensitivity: low or medium or high")
		c.Flags().String("emotional-analysis", "yes", "Detect emotional states (yes/no)")
	}
	batchCmd.Flags().String("handles-file", "", "File with one creator handle per line")

	// Bind all flags of generateCmd to Viper
	generateCmd.Flags().String("topic", "", "Topic of the script")
	generateCmd.Flags().String("style", "", "Optional style hint carried into the script metadata")
	generateCmd.Flags().Int("target-length", 0, "Target length in seconds (0 = the persona's optimal length)")
	generateCmd.Flags().Int("max-retries", 0, "Generation attempts before returning the best one (0 = default)")
	generateCmd.Flags().Int("min-score", 0, "Minimum acceptable authenticity score (0 = the persona's threshold)")
	generateCmd.Flags().String("rule-validation", "", "Validate attempts against persona rules (yes/no)")
	generateCmd.Flags().String("authenticity-scoring", "", "Score attempts for authenticity (yes/no)")
	bindFlags("generate", generateCmd.Flags())

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	bindFlags("analysis migrate", analysisMigrateCmd.Flags())
}

// bindFlags binds a flag set to Viper and aborts on failure.
func bindFlags(name string, flags *pflag.FlagSet) {
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding "+name+" flags", err)
	}
}
