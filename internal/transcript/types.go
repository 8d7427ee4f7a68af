// Package transcript stores the ordered history of user and model turns
// per chat.
package transcript

import (
	"context"
	"time"
)

// Roles for transcript messages.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single appended conversational turn.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves chat transcripts. The transcript is
// append-only; Recent returns the last limit messages of a chat in
// chronological order.
type Store interface {
	SaveMessage(ctx context.Context, msg Message) error
	Recent(ctx context.Context, chatID string, limit int) ([]Message, error)
	Close() error
}
