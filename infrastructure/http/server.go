// Package http exposes the REST surface: health, user profiles and
// conversation history, plus the websocket upgrade endpoint.
package http

import (
	"anongram/domain"
	"anongram/errors"
	"anongram/infrastructure/ws"
	"anongram/observability"
	"anongram/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	log       *slog.Logger
	chats     services.IChatService
	users     services.IUserService
	monitor   *observability.Monitor
	wsHandler *ws.Handler
}

func NewServer(log *slog.Logger, chats services.IChatService, users services.IUserService,
	monitor *observability.Monitor, wsHandler *ws.Handler) *Server {
	return &Server{
		log:       log,
		chats:     chats,
		users:     users,
		monitor:   monitor,
		wsHandler: wsHandler,
	}
}

// Router assembles the gin engine. Recovery is kept so a handler panic sends
// a 500 instead of killing the process.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/api/users", s.handleUsers)
	router.GET("/api/messages/:userId1/:userId2", s.handleConversation)
	router.GET("/ws", s.wsHandler.Serve)

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "anongram", "status": "running"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Latest())
}

func (s *Server) handleUsers(c *gin.Context) {
	profiles, err := s.users.Profiles()
	if err != nil {
		s.log.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// handleConversation returns the full exchange between the two participants,
// oldest first. The pair is unordered.
func (s *Server) handleConversation(c *gin.Context) {
	a := domain.ParticipantID(c.Param("userId1"))
	b := domain.ParticipantID(c.Param("userId2"))
	if a == "" || b == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrUnknownParticipant.Error()})
		return
	}

	messages, err := s.chats.GetConversation(a, b)
	if err != nil {
		s.log.Error("Failed to load conversation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("Request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
