// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/MillionMedia2/ask-herbie-interface/internal/model"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	sender_id       TEXT NOT NULL,
	content         TEXT NOT NULL,
	content_lower   TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_messages_content ON messages(content_lower);
`

// =============================================================================
// INDEX
// =============================================================================

// Index is the searchable message store.
type Index struct {
	db *sql.DB
}

// Hit is one search result.
type Hit struct {
	ConversationID string
	MessageID      string
	SenderID       string
	Content        string
	CreatedAt      time.Time
}

// Open opens (or creates) the index at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history index: %w", err)
	}

	// SQLite allows one writer; a single connection avoids lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// IndexConversation replaces one conversation's rows with its current
// timeline. Provisional assistant messages still streaming (empty content)
// are skipped.
func (i *Index) IndexConversation(conversationID string, messages []model.Message) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("failed to clear conversation rows: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages
		(id, conversation_id, sender_id, content, content_lower, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		_, err := stmt.Exec(
			msg.ID,
			conversationID,
			msg.SenderID,
			msg.Content,
			strings.ToLower(msg.Content),
			msg.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to index message %s: %w", msg.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteConversation drops one conversation's rows.
func (i *Index) DeleteConversation(conversationID string) error {
	_, err := i.db.Exec("DELETE FROM messages WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation rows: %w", err)
	}
	return nil
}

// Search finds messages whose content contains the query,
// case-insensitively, newest first. limit <= 0 means a default of 50.
func (i *Index) Search(query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := i.db.Query(`SELECT conversation_id, id, sender_id, content, created_at
		FROM messages
		WHERE content_lower LIKE ? ESCAPE '\'
		ORDER BY created_at DESC
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var createdAt string
		if err := rows.Scan(&h.ConversationID, &h.MessageID, &h.SenderID, &h.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
