package store

import (
	"database/sql"
	"time"
)

// Identity is the authenticated user persisted across restarts.
type Identity struct {
	UserID   string
	Username string
	Token    string
}

// SaveIdentity stores the authenticated identity, replacing any previous one.
func (db *DB) SaveIdentity(id *Identity) error {
	_, err := db.Exec(`
		INSERT INTO credentials (id, user_id, username, token, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			token = excluded.token,
			updated_at = excluded.updated_at`,
		id.UserID, id.Username, id.Token, time.Now().UnixMilli())
	return err
}

// LoadIdentity returns the stored identity, or nil when none exists.
func (db *DB) LoadIdentity() (*Identity, error) {
	var id Identity
	err := db.QueryRow(`SELECT user_id, username, token FROM credentials WHERE id = 1`).
		Scan(&id.UserID, &id.Username, &id.Token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ClearIdentity removes the stored identity (sign-out).
func (db *DB) ClearIdentity() error {
	_, err := db.Exec(`DELETE FROM credentials WHERE id = 1`)
	return err
}
