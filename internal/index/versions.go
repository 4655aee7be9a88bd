package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/lore/internal/apperr"
	"github.com/starford/lore/internal/models"
)

// InsertVersion stores a snapshot and assigns it the next version number
// for its note, starting at 1.
func (db *DB) InsertVersion(v *models.NoteVersion) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) + 1 FROM note_versions WHERE note_path = ?`, v.NotePath).Scan(&v.Version); err != nil {
		return fmt.Errorf("index: next version: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO note_versions (id, note_path, version, content, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ID, v.NotePath, v.Version, v.Content, v.Checksum, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: insert version: %w", err)
	}
	return tx.Commit()
}

// ListVersions returns a note's versions newest first, without content.
func (db *DB) ListVersions(notePath string) ([]models.NoteVersion, error) {
	rows, err := db.conn.Query(`
		SELECT id, note_path, version, checksum, created_at
		FROM note_versions
		WHERE note_path = ?
		ORDER BY version DESC
	`, notePath)
	if err != nil {
		return nil, fmt.Errorf("index: list versions: %w", err)
	}
	defer rows.Close()

	out := []models.NoteVersion{}
	for rows.Next() {
		var v models.NoteVersion
		if err := rows.Scan(&v.ID, &v.NotePath, &v.Version, &v.Checksum, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetVersion returns one version with its content.
func (db *DB) GetVersion(id string) (*models.NoteVersion, error) {
	var v models.NoteVersion
	err := db.conn.QueryRow(`
		SELECT id, note_path, version, content, checksum, created_at
		FROM note_versions WHERE id = ?
	`, id).Scan(&v.ID, &v.NotePath, &v.Version, &v.Content, &v.Checksum, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get version: %w", err)
	}
	return &v, nil
}

// LatestVersionChecksum returns the checksum of a note's newest version, or
// "" when it has none.
func (db *DB) LatestVersionChecksum(notePath string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`
		SELECT checksum FROM note_versions WHERE note_path = ? ORDER BY version DESC LIMIT 1
	`, notePath).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: latest version: %w", err)
	}
	return cs, nil
}
