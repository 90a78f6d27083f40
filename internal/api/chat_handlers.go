package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vidsage/vidsage/internal/chat"
)

type createSessionRequest struct {
	Title      string `json:"title" binding:"required"`
	VideoURL   string `json:"video_url" binding:"required"`
	VideoTitle string `json:"video_title"`
}

type appendMessageRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	Role         string `json:"role" binding:"required"`
	Message      string `json:"message" binding:"required"`
	VideoContext string `json:"video_context"`
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions, err := s.chats.ListSessions(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &chat.Session{
		UserID:     currentUserID(c),
		Title:      req.Title,
		VideoURL:   req.VideoURL,
		VideoTitle: req.VideoTitle,
	}
	if err := s.chats.CreateSession(c.Request.Context(), session); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleAppendMessage(c *gin.Context) {
	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	msg := &chat.Message{
		SessionID:    sessionID,
		UserID:       currentUserID(c),
		Role:         req.Role,
		Message:      req.Message,
		VideoContext: req.VideoContext,
	}
	if err := s.chats.AppendMessage(c.Request.Context(), msg); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (s *Server) handleListMessages(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	messages, err := s.chats.ListMessages(c.Request.Context(), currentUserID(c), sessionID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	if err := s.chats.DeleteSession(c.Request.Context(), currentUserID(c), sessionID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
