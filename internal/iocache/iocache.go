// Package iocache persists transcripts, personas and analysis history.
package iocache

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// CacheStoreManager manages the store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	transcripts  contract.CacheStore
	personas     contract.PersonaStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetTranscriptStore returns the transcript CacheStore.
func (mgr *CacheStoreManager) GetTranscriptStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.transcripts
}

// GetPersonaStore returns the PersonaStore.
func (mgr *CacheStoreManager) GetPersonaStore() contract.PersonaStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.personas
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects anything that is not a plain SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

// placeholder returns the n-th bind parameter for the backend, starting at 1.
func placeholder(backend schema.DatabaseBackend, n int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders returns n comma separated bind parameters.
func placeholders(backend schema.DatabaseBackend, n int) string {
	s := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ", "
		}
		s += placeholder(backend, i)
	}
	return s
}
