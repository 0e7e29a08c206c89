package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// SaveChatSnapshot replaces the persisted chat list with chats, preserving
// order. Temporary DM placeholders are skipped; they are meaningless across
// restarts.
func (db *DB) SaveChatSnapshot(chats []model.ChatSummary) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM chat_snapshot`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	now := time.Now().UnixMilli()
	pos := 0
	for _, c := range chats {
		if model.IsTempDMID(c.ID) {
			continue
		}
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode chat %s: %w", c.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO chat_snapshot (chat_id, position, payload, updated_at)
			VALUES (?, ?, ?, ?)`,
			c.ID, pos, string(payload), now); err != nil {
			return fmt.Errorf("insert chat %s: %w", c.ID, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// LoadChatSnapshot returns the persisted chat list in saved order.
// An empty slice means no snapshot exists yet.
func (db *DB) LoadChatSnapshot() ([]model.ChatSummary, error) {
	rows, err := db.Query(`SELECT payload FROM chat_snapshot ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []model.ChatSummary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var c model.ChatSummary
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, fmt.Errorf("decode snapshot row: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}
