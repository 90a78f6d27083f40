package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles chat session and message data access.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession inserts a new session.
func (r *Repository) CreateSession(ctx context.Context, session *Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_sessions (id, user_id, title, video_url, video_title, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.Title,
		session.VideoURL, session.VideoTitle, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	query := `
		SELECT id, user_id, title, video_url, video_title, created_at
		FROM chat_sessions
		WHERE id = $1`

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &SessionNotFoundError{SessionID: id}
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// ListSessions returns a user's sessions, newest first.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	sessions := []Session{}
	query := `
		SELECT id, user_id, title, video_url, video_title, created_at
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage inserts a message into an existing session.
func (r *Repository) AppendMessage(ctx context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages (id, session_id, user_id, role, message, video_context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, msg.UserID, msg.Role,
		msg.Message, msg.VideoContext, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages in chronological order.
func (r *Repository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error) {
	messages := []Message{}
	query := `
		SELECT id, session_id, user_id, role, message, video_context, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &messages, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// DeleteSession removes a session and its messages in one transaction.
func (r *Repository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &SessionNotFoundError{SessionID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
