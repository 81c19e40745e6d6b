package db

import (
	"database/sql"
	"strings"
	"time"
)

// Logical keys for the durable store.
const KeyCurrentUser = "currentUser"

// UserKey returns the store key for a user record.
func UserKey(id string) string {
	return "users/" + id
}

// UserKeyPrefix is the key prefix shared by all user records.
const UserKeyPrefix = "users/"

// Get reads a value by key. A missing key yields ("", false, nil), never
// an error.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Put writes a value durably. The write is a single statement, so it is
// atomic: readers see either the old value or the new one.
func (db *DB) Put(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// PutAll writes several values in one transaction. Either all writes become
// durable or none do.
func (db *DB) PutAll(values map[string]string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for key, value := range values {
		if _, err := tx.Exec(`
			INSERT INTO store (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, time.Now(),
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a key. Deleting a missing key is a no-op.
func (db *DB) Delete(key string) error {
	_, err := db.Exec("DELETE FROM store WHERE key = ?", key)
	return err
}

// List returns all key/value pairs whose key starts with prefix.
func (db *DB) List(prefix string) (map[string]string, error) {
	rows, err := db.Query(
		"SELECT key, value FROM store WHERE key >= ? AND key < ?",
		prefix, prefix+"\xff",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	return out, rows.Err()
}
