package db

import (
	"database/sql"
	"time"
)

// Load returns the raw value stored under a named slot, or nil if the slot
// has never been written
func (db *DB) Load(slot string) ([]byte, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM slots WHERE name = ?`, slot).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

// Save replaces the whole value of a named slot
func (db *DB) Save(slot string, data []byte) error {
	_, err := db.Exec(`
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, slot, string(data), time.Now())
	return err
}

// DeleteSlot removes a named slot
func (db *DB) DeleteSlot(slot string) error {
	_, err := db.Exec(`DELETE FROM slots WHERE name = ?`, slot)
	return err
}
