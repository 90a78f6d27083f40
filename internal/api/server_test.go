package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsage/vidsage/internal/cache"
	"github.com/vidsage/vidsage/internal/chat"
	"github.com/vidsage/vidsage/internal/health"
	"github.com/vidsage/vidsage/internal/service"
	"github.com/vidsage/vidsage/internal/transcript"
	"github.com/vidsage/vidsage/pkg/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVideoService struct {
	loadResult *service.LoadResult
	loadErr    error
	answer     string
	askErr     error
}

func (s *stubVideoService) Load(ctx context.Context, videoURL string) (*service.LoadResult, error) {
	return s.loadResult, s.loadErr
}

func (s *stubVideoService) Ask(ctx context.Context, videoURL, question string) (string, error) {
	return s.answer, s.askErr
}

func (s *stubVideoService) Quiz(ctx context.Context, videoURL string, numQuestions int) ([]service.QuizQuestion, error) {
	return []service.QuizQuestion{{Question: "q", CorrectAnswer: "A"}}, nil
}

func (s *stubVideoService) Clips(ctx context.Context, videoURL string, numClips int) ([]service.Clip, error) {
	return []service.Clip{{Start: 10, Title: "t"}}, nil
}

func (s *stubVideoService) Blog(ctx context.Context, videoURL, style string) (*service.BlogPost, error) {
	return &service.BlogPost{Style: style, Content: "## Intro"}, nil
}

type stubChatStore struct {
	sessions     []chat.Session
	listUserID   string
	deleteErr    error
	appendErr    error
	lastMessage  *chat.Message
	scopedUserID string
}

func (s *stubChatStore) ListSessions(ctx context.Context, userID string) ([]chat.Session, error) {
	s.listUserID = userID
	return s.sessions, nil
}

func (s *stubChatStore) CreateSession(ctx context.Context, session *chat.Session) error {
	session.ID = uuid.New()
	return nil
}

func (s *stubChatStore) AppendMessage(ctx context.Context, msg *chat.Message) error {
	s.lastMessage = msg
	return s.appendErr
}

func (s *stubChatStore) ListMessages(ctx context.Context, userID string, sessionID uuid.UUID) ([]chat.Message, error) {
	s.scopedUserID = userID
	return []chat.Message{{SessionID: sessionID, Role: "user", Message: "hi"}}, nil
}

func (s *stubChatStore) DeleteSession(ctx context.Context, userID string, sessionID uuid.UUID) error {
	s.scopedUserID = userID
	return s.deleteErr
}

type testRunner bool

func (r testRunner) Running() bool { return bool(r) }

func newTestServer(t *testing.T, videos VideoService, chats ChatStore) *Server {
	t.Helper()
	logger := observability.NewNoopLogger()
	checker := health.NewChecker(cache.NewMemoryCache(0), cache.BackendMemory, testRunner(true))
	cfg := DefaultConfig()
	cfg.LogRequests = false
	return NewServer(cfg, videos, chats, checker, logger)
}

func bearerToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, s *Server, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, &stubVideoService{}, &stubChatStore{})

	t.Run("missing token rejected", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/api/v1/chat/sessions", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		w := doRequest(t, s, http.MethodGet, "/api/v1/chat/sessions", "Bearer not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("subject threads through to handlers", func(t *testing.T) {
		chats := &stubChatStore{}
		s := newTestServer(t, &stubVideoService{}, chats)

		w := doRequest(t, s, http.MethodGet, "/api/v1/chat/sessions", bearerToken(t, "user-42"), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user-42", chats.listUserID)
	})

	t.Run("token without subject rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString([]byte("k"))
		require.NoError(t, err)
		w := doRequest(t, s, http.MethodGet, "/api/v1/chat/sessions", "Bearer "+token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestVideoHandlers(t *testing.T) {
	auth := func(t *testing.T) string { return bearerToken(t, "user-1") }

	t.Run("load returns result", func(t *testing.T) {
		videos := &stubVideoService{loadResult: &service.LoadResult{VideoID: "abc123def45", Chunks: 3, Warm: true}}
		s := newTestServer(t, videos, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/load", auth(t),
			map[string]string{"video_url": "https://youtu.be/abc123def45"})
		require.Equal(t, http.StatusOK, w.Code)

		var got service.LoadResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "abc123def45", got.VideoID)
		assert.True(t, got.Warm)
	})

	t.Run("missing body field is a 400", func(t *testing.T) {
		s := newTestServer(t, &stubVideoService{}, &stubChatStore{})
		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/load", auth(t), map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid url maps to 400", func(t *testing.T) {
		videos := &stubVideoService{loadErr: &transcript.InvalidURLError{URL: "nope"}}
		s := newTestServer(t, videos, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/load", auth(t),
			map[string]string{"video_url": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing transcript maps to 404", func(t *testing.T) {
		videos := &stubVideoService{loadErr: &transcript.TranscriptUnavailableError{VideoID: "x", Reason: "disabled"}}
		s := newTestServer(t, videos, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/load", auth(t),
			map[string]string{"video_url": "https://youtu.be/abc123def45"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blog returns styled post", func(t *testing.T) {
		s := newTestServer(t, &stubVideoService{}, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/blog", auth(t),
			map[string]string{"video_url": "https://youtu.be/abc123def45", "style": "tutorial"})
		require.Equal(t, http.StatusOK, w.Code)

		var got service.BlogPost
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "tutorial", got.Style)
		assert.Contains(t, got.Content, "Intro")
	})

	t.Run("ask returns answer", func(t *testing.T) {
		videos := &stubVideoService{answer: "42"}
		s := newTestServer(t, videos, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/videos/ask", auth(t),
			map[string]string{"video_url": "https://youtu.be/abc123def45", "question": "meaning?"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "42")
	})
}

func TestChatHandlers(t *testing.T) {
	auth := func(t *testing.T) string { return bearerToken(t, "user-1") }

	t.Run("create session", func(t *testing.T) {
		s := newTestServer(t, &stubVideoService{}, &stubChatStore{})

		w := doRequest(t, s, http.MethodPost, "/api/v1/chat/sessions", auth(t), map[string]string{
			"title":     "Go concurrency talk",
			"video_url": "https://youtu.be/abc123def45",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var got chat.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "user-1", got.UserID)
		assert.NotEqual(t, uuid.Nil, got.ID)
	})

	t.Run("append message stamps user", func(t *testing.T) {
		chats := &stubChatStore{}
		s := newTestServer(t, &stubVideoService{}, chats)

		w := doRequest(t, s, http.MethodPost, "/api/v1/chat/messages", auth(t), map[string]string{
			"session_id": uuid.NewString(),
			"role":       "user",
			"message":    "hello",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, chats.lastMessage)
		assert.Equal(t, "user-1", chats.lastMessage.UserID)
	})

	t.Run("bad session id on append", func(t *testing.T) {
		s := newTestServer(t, &stubVideoService{}, &stubChatStore{})
		w := doRequest(t, s, http.MethodPost, "/api/v1/chat/messages", auth(t), map[string]string{
			"session_id": "not-a-uuid",
			"role":       "user",
			"message":    "hello",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete missing session maps to 404", func(t *testing.T) {
		id := uuid.New()
		chats := &stubChatStore{deleteErr: &chat.SessionNotFoundError{SessionID: id}}
		s := newTestServer(t, &stubVideoService{}, chats)

		w := doRequest(t, s, http.MethodDelete, "/api/v1/chat/sessions/"+id.String(), auth(t), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete succeeds with 204 and scopes to caller", func(t *testing.T) {
		chats := &stubChatStore{}
		s := newTestServer(t, &stubVideoService{}, chats)
		w := doRequest(t, s, http.MethodDelete, "/api/v1/chat/sessions/"+uuid.NewString(), auth(t), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "user-1", chats.scopedUserID)
	})

	t.Run("list messages scoped to caller", func(t *testing.T) {
		chats := &stubChatStore{}
		s := newTestServer(t, &stubVideoService{}, chats)
		w := doRequest(t, s, http.MethodGet, "/api/v1/chat/sessions/"+uuid.NewString()+"/messages", auth(t), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hi")
		assert.Equal(t, "user-1", chats.scopedUserID)
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubVideoService{}, &stubChatStore{})

	w := doRequest(t, s, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status health.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "memory", status.CacheBackend)
	assert.True(t, status.CacheAlive)
	assert.True(t, status.TaskRunnerRunning)
}
