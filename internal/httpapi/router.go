// Package httpapi exposes AnyVar over HTTP with gin-gonic/gin, mirroring
// the teacher corpus's one-handler-file-per-resource layout (see
// united-manufacturing-hub's cmd/factoryinsight/v1) generalized from a
// time-series query API to VRS registration/retrieval/search.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/asyncjob"
)

// Server wires the gin.Engine and holds every dependency handlers need.
type Server struct {
	Engine *gin.Engine

	av     *anyvar.AnyVar
	queue  *asyncjob.Queue
	vcf    *VCFHandler
	logger *zap.Logger
}

// New builds a Server with every route registered. failedRunStatusCode
// is the HTTP status GET /vcf/{run_id} returns for a FAILED run
// (spec.md §6.3, default 500).
func New(av *anyvar.AnyVar, queue *asyncjob.Queue, vh *VCFHandler, failedRunStatusCode int) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{Engine: engine, av: av, queue: queue, vcf: vh, logger: zap.NewNop()}
	s.vcf.failedRunStatusCode = failedRunStatusCode
	s.vcf.failedRunStatusCodeOrDefault()

	engine.Use(s.requestLogger())
	s.registerRoutes()
	return s
}

// SetLogger sets the logger used for request logging and handler-level
// diagnostics.
func (s *Server) SetLogger(l *zap.Logger) {
	s.logger = l
	s.vcf.logger = l
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) registerRoutes() {
	s.Engine.PUT("/variation", s.putVariation)
	s.Engine.GET("/variation/:id", s.getVariation)
	s.Engine.GET("/search", s.getSearch)
	s.Engine.PUT("/variation/:id/mappings", s.putMapping)
	s.Engine.GET("/variation/:id/mappings/:type", s.getMappings)
	s.Engine.GET("/variation/:id/mappings", s.getMappingsAnyType)
	s.Engine.POST("/variation/:id/annotations", s.postAnnotation)
	s.Engine.GET("/variation/:id/annotations/:type", s.getAnnotations)
	s.Engine.GET("/variation/:id/annotations", s.getAnnotationsAnyType)
	s.Engine.PUT("/vcf", s.vcf.putVCF)
	s.Engine.GET("/vcf/:run_id", s.vcf.getVCF)
	s.Engine.GET("/service-info", s.getServiceInfo)
}

// writeError writes the standard error body for err with the HTTP status
// the caller chose; it does not derive the status from err itself.
func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"error":   err.Error(),
		"status":  status,
		"message": http.StatusText(status),
	})
}
