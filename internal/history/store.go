package history

import (
	"context"
	"database/sql"
	"fmt"

	"tabletalk/internal/models"
	"tabletalk/internal/storage"
)

// Store persists the conversation context. The database is the sole
// source of truth: every call round-trips, nothing is cached in
// process, so a history written here is immediately visible to any
// other process sharing the store.
type Store struct {
	db *sql.DB
	d  storage.Dialect
}

func NewStore(db *sql.DB, d storage.Dialect) *Store {
	return &Store{db: db, d: d}
}

// Append stores one message. Ordering within a (user, conversation)
// pair is call order; messages are never mutated afterwards.
func (s *Store) Append(ctx context.Context, msg models.ChatMessage) error {
	stmt := fmt.Sprintf(
		`INSERT INTO chat_history (user_id, conversation_id, message_type, content) VALUES (%s)`,
		s.d.Placeholders(4),
	)
	if _, err := s.db.ExecContext(ctx, stmt, msg.UserID, msg.ConversationID, string(msg.Type), msg.Content); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// History returns all messages for the pair in insertion order. No
// history is not an error: the result is simply empty.
func (s *Store) History(ctx context.Context, userID, conversationID string) ([]models.ChatMessage, error) {
	stmt := fmt.Sprintf(
		`SELECT message_type, content FROM chat_history WHERE user_id = %s AND conversation_id = %s ORDER BY id ASC`,
		s.d.Placeholder(1), s.d.Placeholder(2),
	)
	rows, err := s.db.QueryContext(ctx, stmt, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		m := models.ChatMessage{UserID: userID, ConversationID: conversationID}
		var role string
		if err := rows.Scan(&role, &m.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Type = models.Role(role)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Clear deletes all messages for one (user, conversation) pair. Other
// conversations of the same user are untouched.
func (s *Store) Clear(ctx context.Context, userID, conversationID string) error {
	stmt := fmt.Sprintf(
		`DELETE FROM chat_history WHERE user_id = %s AND conversation_id = %s`,
		s.d.Placeholder(1), s.d.Placeholder(2),
	)
	if _, err := s.db.ExecContext(ctx, stmt, userID, conversationID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
