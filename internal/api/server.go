// Package api exposes the HTTP surface: video workflows, chat session
// CRUD and the health endpoint.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vidsage/vidsage/internal/chat"
	"github.com/vidsage/vidsage/internal/health"
	"github.com/vidsage/vidsage/internal/service"
	"github.com/vidsage/vidsage/pkg/observability"
)

// VideoService is the video workflow surface the handlers need.
type VideoService interface {
	Load(ctx context.Context, videoURL string) (*service.LoadResult, error)
	Ask(ctx context.Context, videoURL, question string) (string, error)
	Quiz(ctx context.Context, videoURL string, numQuestions int) ([]service.QuizQuestion, error)
	Clips(ctx context.Context, videoURL string, numClips int) ([]service.Clip, error)
	Blog(ctx context.Context, videoURL, style string) (*service.BlogPost, error)
}

// ChatStore is the chat persistence surface the handlers need.
type ChatStore interface {
	ListSessions(ctx context.Context, userID string) ([]chat.Session, error)
	CreateSession(ctx context.Context, session *chat.Session) error
	AppendMessage(ctx context.Context, msg *chat.Message) error
	ListMessages(ctx context.Context, userID string, sessionID uuid.UUID) ([]chat.Message, error)
	DeleteSession(ctx context.Context, userID string, sessionID uuid.UUID) error
}

// Server is the HTTP API server.
type Server struct {
	router  *gin.Engine
	server  *http.Server
	config  Config
	videos  VideoService
	chats   ChatStore
	checker *health.Checker
	logger  observability.Logger
}

// NewServer creates the API server and wires its routes.
func NewServer(cfg Config, videos VideoService, chats ChatStore, checker *health.Checker, logger observability.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.LogRequests {
		router.Use(RequestLogger(logger))
	}
	if cfg.EnableCORS {
		router.Use(CORSMiddleware())
	}

	s := &Server{
		router:  router,
		config:  cfg,
		videos:  videos,
		chats:   chats,
		checker: checker,
		logger:  logger.WithPrefix("api"),
		server: &http.Server{
			Addr:         cfg.ListenAddress,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	base := s.config.BasePath
	if base == "" {
		base = "/api/v1"
	}
	v1 := s.router.Group(base)
	v1.Use(AuthMiddleware())

	videos := v1.Group("/videos")
	videos.POST("/load", s.handleLoadVideo)
	videos.POST("/ask", s.handleAsk)
	videos.POST("/quiz", s.handleQuiz)
	videos.POST("/clips", s.handleClips)
	videos.POST("/blog", s.handleBlog)

	chats := v1.Group("/chat")
	chats.GET("/sessions", s.handleListSessions)
	chats.POST("/sessions", s.handleCreateSession)
	chats.POST("/messages", s.handleAppendMessage)
	chats.GET("/sessions/:id/messages", s.handleListMessages)
	chats.DELETE("/sessions/:id", s.handleDeleteSession)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("API server listening", map[string]interface{}{
		"address": s.config.ListenAddress,
	})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.checker.Check(c.Request.Context()))
}
