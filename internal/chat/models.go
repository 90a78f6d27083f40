// Package chat persists per-user chat sessions and messages, with a
// cache-aside layer over the list views.
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one chat conversation a user holds about a video.
type Session struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Title      string    `db:"title" json:"title"`
	VideoURL   string    `db:"video_url" json:"video_url"`
	VideoTitle string    `db:"video_title" json:"video_title"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Message is one turn in a session.
type Message struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SessionID    uuid.UUID `db:"session_id" json:"session_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Role         string    `db:"role" json:"role"`
	Message      string    `db:"message" json:"message"`
	VideoContext string    `db:"video_context" json:"video_context"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SessionNotFoundError indicates an operation referenced a session that
// does not exist.
type SessionNotFoundError struct {
	SessionID uuid.UUID
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("chat session not found: %s", e.SessionID)
}
