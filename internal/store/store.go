// internal/store/store.go
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"autoscribe/internal/errdefs"
	"autoscribe/internal/log"
)

// Store is the script catalog: a SQLite registry over the JSON artifacts
// in the recordings directory. The artifact file is the source of truth
// for the action sequence; the catalog carries the listing metadata.
type Store struct {
	db            *sql.DB
	recordingsDir string
	logger        zerolog.Logger
}

// ScriptInfo is one catalog row.
type ScriptInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	ActionCount int       `json:"action_count"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Open creates or opens the catalog database.
func Open(databasePath, recordingsDir string) (*Store, error) {
	db, err := sql.Open("sqlite", databasePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:            db,
		recordingsDir: recordingsDir,
		logger:        log.WithComponent("store"),
	}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scripts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		action_count INTEGER NOT NULL DEFAULT 0,
		archived INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scripts_name ON scripts(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the catalog database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) upsert(info *ScriptInfo) error {
	now := time.Now()
	info.UpdatedAt = now
	if info.CreatedAt.IsZero() {
		info.CreatedAt = now
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO scripts
		(id, name, path, action_count, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, info.Name, info.Path, info.ActionCount, info.Archived,
		info.CreatedAt, info.UpdatedAt)
	return err
}

// List returns all catalog rows, newest first.
func (s *Store) List() ([]*ScriptInfo, error) {
	rows, err := s.db.Query(`
		SELECT id, name, path, action_count, archived, created_at, updated_at
		FROM scripts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []*ScriptInfo
	for rows.Next() {
		info := &ScriptInfo{}
		if err := rows.Scan(&info.ID, &info.Name, &info.Path, &info.ActionCount,
			&info.Archived, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Get retrieves one catalog row by script ID.
func (s *Store) Get(id string) (*ScriptInfo, error) {
	row := s.db.QueryRow(`
		SELECT id, name, path, action_count, archived, created_at, updated_at
		FROM scripts WHERE id = ?`, id)

	info := &ScriptInfo{}
	err := row.Scan(&info.ID, &info.Name, &info.Path, &info.ActionCount,
		&info.Archived, &info.CreatedAt, &info.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errdefs.New(errdefs.CodeFileNotFound, "script %q not in catalog", id)
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Delete removes a script from the catalog and deletes its artifact.
func (s *Store) Delete(id string) error {
	info, err := s.Get(id)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM scripts WHERE id = ?`, id); err != nil {
		return err
	}
	if err := removeArtifact(info.Path); err != nil {
		// Row is gone; an orphaned file is recoverable via SyncDir.
		s.logger.Warn().Err(err).Str("path", info.Path).Msg("failed to delete artifact file")
		return err
	}
	return nil
}

// Rename updates the display name. The artifact file keeps its path; the
// name inside the artifact is metadata the catalog owns from here on.
func (s *Store) Rename(id, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("script name must not be empty")
	}
	result, err := s.db.Exec(`UPDATE scripts SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errdefs.New(errdefs.CodeFileNotFound, "script %q not in catalog", id)
	}
	return nil
}
