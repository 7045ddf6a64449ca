package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lcastelli/streampulse/internal/logger"
	"github.com/lcastelli/streampulse/internal/store"
)

// Server represents the API server
type Server struct {
	router *gin.Engine
	store  *store.Store
	logger *logger.Logger
}

// NewServer creates a new API server instance
func NewServer(st *store.Store, log *logger.Logger) *Server {
	if log == nil {
		log = logger.AppLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(requestIDMiddleware())
	router.Use(errorHandlerMiddleware())

	s := &Server{
		router: router,
		store:  st,
		logger: log,
	}

	s.setupRoutes()

	return s
}

// Run starts the API server on the specified port
func (s *Server) Run(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router exposes the underlying router, used by tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/channels", s.listChannels)
		v1.GET("/channels/:id", s.getChannel)
		v1.GET("/channels/:id/results", s.listChannelResults)
		v1.GET("/channels/:id/metrics", s.getChannelMetrics)

		v1.GET("/updates", s.listSourceUpdates)
		v1.GET("/stats", s.getStats)
	}
}
