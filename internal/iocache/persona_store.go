package iocache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/voicepersona/internal/contract"
	"github.com/huangsam/voicepersona/schema"
)

// PersonaStoreImpl keeps full persona snapshots as JSON next to a few indexed columns.
type PersonaStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
}

var _ contract.PersonaStore = &PersonaStoreImpl{} // Compile-time check

// NewPersonaStore opens the persona table on the given backend.
// The none backend keeps nothing and reports every lookup as not found.
func NewPersonaStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.PersonaStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		return &PersonaStoreImpl{tableName: tableName, backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(getCreatePersonaTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &PersonaStoreImpl{db: db, tableName: tableName, backend: backend}, nil
}

func getCreatePersonaTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				persona_id VARCHAR(64) PRIMARY KEY,
				handle VARCHAR(255) NOT NULL,
				platform VARCHAR(32) NOT NULL,
				analysis_date DATETIME(6) NOT NULL,
				payload LONGTEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				persona_id TEXT PRIMARY KEY,
				handle TEXT NOT NULL,
				platform TEXT NOT NULL,
				analysis_date TIMESTAMPTZ NOT NULL,
				payload TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				persona_id TEXT PRIMARY KEY,
				handle TEXT NOT NULL,
				platform TEXT NOT NULL,
				analysis_date TEXT NOT NULL,
				payload TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

func (ps *PersonaStoreImpl) disabled() bool {
	return ps.backend == schema.NoneBackend || ps.db == nil
}

// SavePersona inserts or replaces a persona by ID.
func (ps *PersonaStoreImpl) SavePersona(persona *schema.PersonaProfile) error {
	if persona == nil || persona.PersonaID == "" {
		return errors.New("persona must have an ID")
	}
	if ps.disabled() {
		return nil
	}

	payload, err := json.Marshal(persona)
	if err != nil {
		return fmt.Errorf("failed to encode persona %s: %w", persona.PersonaID, err)
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	var query string
	switch ps.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (persona_id, handle, platform, analysis_date, payload) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE handle = new.handle, platform = new.platform, analysis_date = new.analysis_date, payload = new.payload`, quotedTableName)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (persona_id, handle, platform, analysis_date, payload) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (persona_id) DO UPDATE SET handle = EXCLUDED.handle, platform = EXCLUDED.platform, analysis_date = EXCLUDED.analysis_date, payload = EXCLUDED.payload`, quotedTableName)
	default:
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (persona_id, handle, platform, analysis_date, payload) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
	}

	_, err = ps.db.Exec(query, persona.PersonaID, persona.UserIdentifier.Handle, string(persona.UserIdentifier.Platform),
		formatTime(persona.AnalysisDate, ps.backend), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save persona %s: %w", persona.PersonaID, err)
	}
	return nil
}

// GetPersona loads a persona by ID.
func (ps *PersonaStoreImpl) GetPersona(personaID string) (*schema.PersonaProfile, error) {
	if ps.disabled() {
		return nil, fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, personaID)
	}
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE persona_id = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	persona, err := ps.scanPayload(ps.db.QueryRow(query, personaID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, personaID)
	}
	return persona, err
}

// FindLatest loads the most recent persona of a creator.
func (ps *PersonaStoreImpl) FindLatest(id schema.UserIdentifier) (*schema.PersonaProfile, error) {
	if ps.disabled() {
		return nil, fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, id)
	}
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE handle = %s AND platform = %s ORDER BY analysis_date DESC LIMIT 1`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1), placeholder(ps.backend, 2))
	persona, err := ps.scanPayload(ps.db.QueryRow(query, id.Handle, string(id.Platform)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, id)
	}
	return persona, err
}

func (ps *PersonaStoreImpl) scanPayload(row *sql.Row) (*schema.PersonaProfile, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		return nil, err
	}
	var persona schema.PersonaProfile
	if err := json.Unmarshal([]byte(payload), &persona); err != nil {
		return nil, fmt.Errorf("failed to decode persona: %w", err)
	}
	return &persona, nil
}

// ListPersonas returns summaries of all stored personas, newest first.
func (ps *PersonaStoreImpl) ListPersonas() ([]schema.PersonaSummary, error) {
	if ps.disabled() {
		return []schema.PersonaSummary{}, nil
	}

	query := fmt.Sprintf(`SELECT payload FROM %s ORDER BY analysis_date DESC, persona_id`, quoteTableName(ps.tableName, ps.backend))
	rows, err := ps.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []schema.PersonaSummary{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		var persona schema.PersonaProfile
		if err := json.Unmarshal([]byte(payload), &persona); err != nil {
			return nil, fmt.Errorf("failed to decode persona: %w", err)
		}
		summaries = append(summaries, persona.Summarize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating personas: %w", err)
	}
	return summaries, nil
}

// DeletePersona removes a persona by ID.
func (ps *PersonaStoreImpl) DeletePersona(personaID string) error {
	if ps.disabled() {
		return fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, personaID)
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE persona_id = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	res, err := ps.db.Exec(query, personaID)
	if err != nil {
		return fmt.Errorf("failed to delete persona %s: %w", personaID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", contract.ErrPersonaNotFound, personaID)
	}
	return nil
}

// Close closes the underlying DB connection.
func (ps *PersonaStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
