// Package server exposes the document lifecycle and hybrid retrieval
// operations over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duograph/duograph"
	"github.com/duograph/duograph/pkg/config"
	"github.com/duograph/duograph/pkg/server/handlers"
	"github.com/duograph/duograph/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config    *config.Config
	router    *gin.Engine
	client    duograph.Duograph
	extractor handlers.Extractor
	server    *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client duograph.Duograph) *Server {
	return &Server{
		config: cfg,
		client: client,
	}
}

// SetExtractor overrides the default plain-text upload extractor.
func (s *Server) SetExtractor(e handlers.Extractor) {
	s.extractor = e
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	documentsHandler := handlers.NewDocumentsHandler(s.client, s.extractor)
	searchHandler := handlers.NewSearchHandler(s.client)
	repairHandler := handlers.NewRepairHandler(s.client)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/documents", documentsHandler.Ingest)
		v1.DELETE("/documents/:id", documentsHandler.Delete)
		v1.POST("/search", searchHandler.Search)
		v1.GET("/repairs", repairHandler.List)
		v1.POST("/repairs/:id", repairHandler.Repair)
	}

	// Legacy routes for compatibility with the original server
	s.router.POST("/documents", documentsHandler.Ingest)
	s.router.DELETE("/documents/:id", documentsHandler.Delete)
	s.router.POST("/search", searchHandler.Search)
}

// Router returns the configured router, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader("X-Request-ID")
		if requestID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
