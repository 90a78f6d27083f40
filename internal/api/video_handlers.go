package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidsage/vidsage/internal/chat"
	"github.com/vidsage/vidsage/internal/resilience"
	"github.com/vidsage/vidsage/internal/transcript"
)

type loadVideoRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
}

type askRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
	Question string `json:"question" binding:"required"`
}

type quizRequest struct {
	VideoURL     string `json:"video_url" binding:"required"`
	NumQuestions int    `json:"num_questions"`
}

type clipsRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
	NumClips int    `json:"num_clips"`
}

type blogRequest struct {
	VideoURL string `json:"video_url" binding:"required"`
	Style    string `json:"style"`
}

func (s *Server) handleLoadVideo(c *gin.Context) {
	var req loadVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.videos.Load(c.Request.Context(), req.VideoURL)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.videos.Ask(c.Request.Context(), req.VideoURL, req.Question)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (s *Server) handleQuiz(c *gin.Context) {
	var req quizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumQuestions <= 0 {
		req.NumQuestions = 5
	}

	questions, err := s.videos.Quiz(c.Request.Context(), req.VideoURL, req.NumQuestions)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (s *Server) handleClips(c *gin.Context) {
	var req clipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumClips <= 0 {
		req.NumClips = 3
	}

	clips, err := s.videos.Clips(c.Request.Context(), req.VideoURL, req.NumClips)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clips": clips})
}

func (s *Server) handleBlog(c *gin.Context) {
	var req blogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.videos.Blog(c.Request.Context(), req.VideoURL, req.Style)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		invalidURL  *transcript.InvalidURLError
		unavailable *transcript.TranscriptUnavailableError
		empty       *transcript.EmptyTranscriptError
		network     *transcript.NetworkError
		notFound    *chat.SessionNotFoundError
		storeDown   *resilience.StoreUnavailableError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalidURL):
		status = http.StatusBadRequest
	case errors.As(err, &unavailable):
		status = http.StatusNotFound
	case errors.As(err, &empty):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &network):
		status = http.StatusBadGateway
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &storeDown), errors.Is(err, resilience.ErrCircuitOpen):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
