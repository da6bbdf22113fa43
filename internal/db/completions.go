package db

import (
	"database/sql"
	"time"

	"github.com/dori/tminus/internal/model"
	"github.com/google/uuid"
)

// maxCompletions caps the history; older entries are dropped on insert
var maxCompletions = 500

// RecordCompletion stores a countdown that reached its target and trims
// the history to maxCompletions entries
func (db *DB) RecordCompletion(name string, target int64, completedAt time.Time) (*model.Completion, error) {
	id := uuid.New().String()

	err := db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO completions (id, name, target, completed_at)
			VALUES (?, ?, ?, ?)
		`, id, name, target, completedAt); err != nil {
			return err
		}

		_, err := tx.Exec(`
			DELETE FROM completions
			WHERE id NOT IN (
				SELECT id FROM completions
				ORDER BY completed_at DESC
				LIMIT ?
			)
		`, maxCompletions)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &model.Completion{
		ID:          id,
		Name:        name,
		Target:      target,
		CompletedAt: completedAt,
	}, nil
}

// GetCompletions returns the most recent completions first.
// A limit of zero or less returns all of them.
func (db *DB) GetCompletions(limit int) ([]model.Completion, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.Query(`
		SELECT id, name, target, completed_at
		FROM completions
		ORDER BY completed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []model.Completion
	for rows.Next() {
		var c model.Completion
		if err := rows.Scan(&c.ID, &c.Name, &c.Target, &c.CompletedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// ClearCompletions deletes the whole completion history
func (db *DB) ClearCompletions() (int64, error) {
	res, err := db.Exec(`DELETE FROM completions`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
