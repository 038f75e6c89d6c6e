package ui

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wordmetrics/app"
	"wordmetrics/internal"
	"wordmetrics/internal/config"
)

// Server is the HTTP front end: each request uploads one file and runs one
// transform over it. Nothing is kept between requests.
type Server struct {
	router  *gin.Engine
	service *app.MetricsService
	config  config.Config
	logger  *internal.Logger
}

// NewServer creates a server with middleware and routes in place
func NewServer(service *app.MetricsService, cfg config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		config:  cfg,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
	s.router.Use(s.limitBody())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/process", s.handleProcess)
	api.POST("/columns", s.handleColumns)
}

// Handler exposes the router, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on addr until it fails
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("[Server] %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	limit := s.config.Server.MaxUploadBytes()
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
