package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/internal/iocache"
	"github.com/huangsam/voicepersona/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No analysis tracking for cache commands
	if err := iocache.InitCaching(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup. This skips collaborator and generation settings
// for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the transcript cache and persona storage",
	Long: `Manage the database that holds cached transcripts and stored personas.

Transcripts are cached per video so that re-analyzing a creator only transcribes new videos.
Cached entries expire after --cache-ttl.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove cached transcripts and stored personas

Examples:
  # Check cache status
  voicepersona cache status

  # Start over with a clean cache
  voicepersona cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached transcripts and stored personas",
	Long: `Delete all cached transcripts and stored personas from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache tables

WARNING: Stored personas are removed too. Re-run analyze to rebuild them.

Examples:
  # Clear SQLite cache (default)
  voicepersona cache clear

  # Clear MySQL cache (set connection string via env variable)
  VOICEPERSONA_CACHE_BACKEND=mysql VOICEPERSONA_CACHE_DB_CONNECT="..." voicepersona cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// The SQLite file cannot be removed while the stores hold it open
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the transcript cache.

Displays:
- Backend type and connection status
- Total number of cached transcripts
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  voicepersona cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetTranscriptStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("cache backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
