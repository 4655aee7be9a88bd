package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/lore/internal/apperr"
	"github.com/starford/lore/internal/models"
)

const flashcardColumns = `id, note_path, question, answer, difficulty, source, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(s rowScanner) (models.Flashcard, error) {
	var c models.Flashcard
	err := s.Scan(&c.ID, &c.NotePath, &c.Question, &c.Answer, &c.Difficulty, &c.Source, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ReplaceAutoFlashcards swaps the generated cards of a note for cards in one
// transaction. Manual cards are left alone and keep their positions after
// the generated ones.
func (db *DB) ReplaceAutoFlashcards(notePath string, cards []models.Flashcard) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM flashcards WHERE note_path = ? AND source = ?`, notePath, models.SourceAuto); err != nil {
		return fmt.Errorf("index: clear auto flashcards: %w", err)
	}
	if _, err := tx.Exec(`UPDATE flashcards SET position = position + ? WHERE note_path = ?`, len(cards), notePath); err != nil {
		return fmt.Errorf("index: shift manual flashcards: %w", err)
	}
	if len(cards) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO flashcards (` + flashcardColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare flashcard insert: %w", err)
		}
		defer stmt.Close()
		for i, c := range cards {
			if _, err := stmt.Exec(c.ID, notePath, c.Question, c.Answer, c.Difficulty, models.SourceAuto, i, c.CreatedAt, c.UpdatedAt); err != nil {
				return fmt.Errorf("index: insert flashcard: %w", err)
			}
		}
	}
	return tx.Commit()
}

// ListFlashcards returns the cards of one note in position order, or every
// card when notePath is empty.
func (db *DB) ListFlashcards(notePath string) ([]models.Flashcard, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if notePath == "" {
		rows, err = db.conn.Query(`SELECT ` + flashcardColumns + ` FROM flashcards ORDER BY note_path, position, created_at`)
	} else {
		rows, err = db.conn.Query(`SELECT `+flashcardColumns+` FROM flashcards WHERE note_path = ? ORDER BY position, created_at`, notePath)
	}
	if err != nil {
		return nil, fmt.Errorf("index: list flashcards: %w", err)
	}
	defer rows.Close()

	out := []models.Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetFlashcard returns one card by ID.
func (db *DB) GetFlashcard(id string) (*models.Flashcard, error) {
	c, err := scanFlashcard(db.conn.QueryRow(`SELECT `+flashcardColumns+` FROM flashcards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get flashcard: %w", err)
	}
	return &c, nil
}

// InsertFlashcard appends a card after the note's existing cards and sets
// its Position.
func (db *DB) InsertFlashcard(c *models.Flashcard) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM flashcards WHERE note_path = ?`, c.NotePath).Scan(&c.Position); err != nil {
		return fmt.Errorf("index: next flashcard position: %w", err)
	}
	_, err = tx.Exec(`INSERT INTO flashcards (`+flashcardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.NotePath, c.Question, c.Answer, c.Difficulty, c.Source, c.Position, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: insert flashcard: %w", err)
	}
	return tx.Commit()
}

// UpdateFlashcard rewrites the editable fields of a card. Editing a
// generated card turns it into a manual one so regeneration keeps it.
func (db *DB) UpdateFlashcard(c models.Flashcard) error {
	res, err := db.conn.Exec(`
		UPDATE flashcards
		SET question = ?, answer = ?, difficulty = ?, source = ?, updated_at = ?
		WHERE id = ?
	`, c.Question, c.Answer, c.Difficulty, models.SourceManual, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("index: update flashcard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteFlashcard removes one card by ID.
func (db *DB) DeleteFlashcard(id string) error {
	res, err := db.conn.Exec(`DELETE FROM flashcards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete flashcard: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
