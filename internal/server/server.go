package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet/internal/client"
	"github.com/kode4food/banquet/internal/engine"
	"github.com/kode4food/banquet/internal/util"
)

// Server implements the HTTP API server for the catering engine. The
// bindings it carries are the capabilities served at /tools, so another
// engine instance can dispatch to this one over HTTP
type Server struct {
	engine   *engine.Engine
	bindings client.Bindings
	sockets  util.Set[*Client]
	mu       sync.Mutex
}

var ErrInvalidJSON = errors.New("invalid JSON payload")

// NewServer creates a new HTTP API server
func NewServer(eng *engine.Engine, bindings client.Bindings) *Server {
	return &Server{
		engine:   eng,
		bindings: bindings,
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API
// endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers",
			"Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", s.handleHealth)

	// Capability endpoint for remote engines
	router.POST("/tools/:name", s.invokeTool)

	// Run and step endpoints
	a := router.Group("/api")
	{
		a.GET("/runs", s.listRuns)
		a.POST("/runs", s.startRun)
		a.GET("/runs/:runID", s.getRun)

		a.GET("/steps", s.listSteps)
	}

	// WebSocket
	router.GET("/events", s.handleEvents)

	return router
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections.
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := make([]*Client, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
