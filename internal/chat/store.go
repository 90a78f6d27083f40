package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/pkg/observability"
)

// Task names the store enqueues for background cache refreshes.
const (
	TaskRefreshSessions = "chat.refresh_sessions"
	TaskRefreshMessages = "chat.refresh_messages"
)

// Enqueuer submits fire-and-forget background tasks.
type Enqueuer interface {
	Enqueue(name string, payload map[string]interface{})
}

// Store is the chat persistence surface. Reads are cache-aside over the
// session and message list views; writes go to the database first, then
// invalidate the affected list key, then enqueue an async refresh. The
// ordering matters: the invalidation must be visible before the refresh
// task runs so no reader can repopulate the cache with stale data in
// between.
type Store struct {
	repo    *Repository
	cache   cache.Cache
	ttl     cache.TTLConfig
	retrier *resilience.Retrier
	queue   Enqueuer
	logger  observability.Logger
}

// NewStore creates a Store.
func NewStore(repo *Repository, c cache.Cache, ttl cache.TTLConfig, retrier *resilience.Retrier, queue Enqueuer, logger observability.Logger) *Store {
	return &Store{
		repo:    repo,
		cache:   c,
		ttl:     ttl,
		retrier: retrier,
		queue:   queue,
		logger:  logger.WithPrefix("chat-store"),
	}
}

// ListSessions returns a user's sessions, serving from cache when warm.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	key := cache.SessionsKey(userID)

	var cached []Session
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrNotFound {
		s.logger.Warn("Session list cache read failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	var sessions []Session
	err := s.retrier.Do(ctx, "list_sessions", func() error {
		var rerr error
		sessions, rerr = s.repo.ListSessions(ctx, userID)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, key, sessions, s.ttl.ChatSessions)
	return sessions, nil
}

// CreateSession persists a new session, invalidates the user's session
// list and schedules its refresh.
func (s *Store) CreateSession(ctx context.Context, session *Session) error {
	err := s.retrier.Do(ctx, "create_session", func() error {
		return s.repo.CreateSession(ctx, session)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.SessionsKey(session.UserID))
	s.queue.Enqueue(TaskRefreshSessions, map[string]interface{}{"user_id": session.UserID})
	return nil
}

// AppendMessage persists a message into an existing session owned by
// msg.UserID, then invalidates and refreshes the session's message
// list. A session belonging to another user is indistinguishable from
// a missing one.
func (s *Store) AppendMessage(ctx context.Context, msg *Message) error {
	if _, err := s.getOwnedSession(ctx, msg.SessionID, msg.UserID); err != nil {
		return err
	}

	err := s.retrier.Do(ctx, "append_message", func() error {
		return s.repo.AppendMessage(ctx, msg)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.MessagesKey(msg.SessionID.String()))
	s.queue.Enqueue(TaskRefreshMessages, map[string]interface{}{"session_id": msg.SessionID.String()})
	return nil
}

// ListMessages returns a session's messages, serving from cache when
// warm. Ownership is verified before the cache is consulted so a warm
// key never leaks another user's conversation.
func (s *Store) ListMessages(ctx context.Context, userID string, sessionID uuid.UUID) ([]Message, error) {
	if _, err := s.getOwnedSession(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	key := cache.MessagesKey(sessionID.String())

	var cached []Message
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrNotFound {
		s.logger.Warn("Message list cache read failed", map[string]interface{}{
			"session_id": sessionID.String(),
			"error":      err.Error(),
		})
	}

	var messages []Message
	err := s.retrier.Do(ctx, "list_messages", func() error {
		var rerr error
		messages, rerr = s.repo.ListMessages(ctx, sessionID)
		return rerr
	})
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, key, messages, s.ttl.ChatMessages)
	return messages, nil
}

// DeleteSession removes a session owned by userID and its messages as
// one unit, then invalidates both list views and refreshes the session
// list.
func (s *Store) DeleteSession(ctx context.Context, userID string, sessionID uuid.UUID) error {
	session, err := s.getOwnedSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}

	err = s.retrier.Do(ctx, "delete_session", func() error {
		return s.repo.DeleteSession(ctx, sessionID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.MessagesKey(sessionID.String()))
	s.invalidate(ctx, cache.SessionsKey(session.UserID))
	s.queue.Enqueue(TaskRefreshSessions, map[string]interface{}{"user_id": session.UserID})
	return nil
}

// getOwnedSession loads a session and checks it belongs to userID.
// An ownership mismatch reports SessionNotFoundError rather than a
// distinct error, so callers cannot probe for foreign session IDs.
func (s *Store) getOwnedSession(ctx context.Context, sessionID uuid.UUID, userID string) (*Session, error) {
	var session *Session
	err := s.retrier.Do(ctx, "get_session", func() error {
		var gerr error
		session, gerr = s.repo.GetSession(ctx, sessionID)
		return gerr
	})
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	return session, nil
}

func (s *Store) fillCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("Cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *Store) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Cache invalidation failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// RegisterTasks binds the background refresh handlers. Each handler
// recomputes a list view from the database and rewrites its cache key.
func (s *Store) RegisterTasks(register func(name string, handler func(ctx context.Context, payload map[string]interface{}) error) error) error {
	if err := register(TaskRefreshSessions, s.refreshSessionsTask); err != nil {
		return err
	}
	return register(TaskRefreshMessages, s.refreshMessagesTask)
}

func (s *Store) refreshSessionsTask(ctx context.Context, payload map[string]interface{}) error {
	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		return errors.New("refresh_sessions: missing user_id")
	}

	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.SessionsKey(userID), sessions, s.ttl.ChatSessions)
}

func (s *Store) refreshMessagesTask(ctx context.Context, payload map[string]interface{}) error {
	raw, ok := payload["session_id"].(string)
	if !ok || raw == "" {
		return errors.New("refresh_messages: missing session_id")
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return err
	}

	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, cache.MessagesKey(raw), messages, s.ttl.ChatMessages)
}
