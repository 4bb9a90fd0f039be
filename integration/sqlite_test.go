//go:build basic

package integration

import (
	"testing"
)

// TestPersonaLifecycleWithSQLite runs the CLI with the default SQLite files under a temporary HOME.
func TestPersonaLifecycleWithSQLite(t *testing.T) {
	runPersonaLifecycle(t, []string{
		"HOME=" + t.TempDir(),
		"VOICEPERSONA_CACHE_BACKEND=sqlite",
		"VOICEPERSONA_ANALYSIS_BACKEND=sqlite",
	})
}
