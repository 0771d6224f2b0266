package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transcripta/capsearch/internal/config"
	"github.com/transcripta/capsearch/internal/search"
	"github.com/transcripta/capsearch/internal/storage"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	engine *search.Engine
	store  storage.Store
	router *gin.Engine
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, engine *search.Engine, store storage.Store) *Server {
	return &Server{
		config: cfg,
		engine: engine,
		store:  store,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/search", s.handleSearch)
		api.GET("/videos", s.handleListVideos)
		api.GET("/videos/:id", s.handleGetVideo)
		api.GET("/export", s.handleExport)
		api.GET("/stats", s.handleStats)
		api.POST("/cache/clear", s.handleClearCache)
	}
}

// Router exposes the underlying router, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	log.Printf("starting HTTP server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	log.Println("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// requestIDMiddleware tags every request with an ID for log correlation.
// An inbound X-Request-ID is trusted, otherwise one is generated.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// corsMiddleware adds CORS headers for the research UI
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
