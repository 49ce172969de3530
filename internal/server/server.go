package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Answerer is the query entry point consumed by the HTTP layer. It fails
// only by returning a user-safe string.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// Server exposes the chat pipeline over HTTP.
type Server struct {
	pipeline Answerer
	timeout  time.Duration
}

func New(pipeline Answerer, timeout time.Duration) *Server {
	return &Server{pipeline: pipeline, timeout: timeout}
}

// ChatRequest is the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/api/chat", s.handleChat)

	return r
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// Every pipeline step is a network round trip; bound the whole request
	// and let cancellation propagate into each outbound call.
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	reply := s.pipeline.Answer(ctx, req.Message)
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		start := time.Now()

		c.Next()

		log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}
