package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/vrs"
)

type postAnnotationRequest struct {
	Type  string          `json:"annotation_type" binding:"required"`
	Value json.RawMessage `json:"annotation_value" binding:"required"`
}

// postAnnotation appends an annotation to :id's log.
// POST /variation/:id/annotations
func (s *Server) postAnnotation(c *gin.Context) {
	var req postAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	ann := vrs.Annotation{ObjectID: c.Param("id"), Type: req.Type, Value: req.Value}
	if err := s.av.PutAnnotation(c.Request.Context(), ann); err != nil {
		if errors.Is(err, anyvarerr.ErrNotFound) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"annotation": ann})
}

// getAnnotations lists annotations of the given type recorded for :id.
// GET /variation/:id/annotations/:type
func (s *Server) getAnnotations(c *gin.Context) {
	s.listAnnotations(c, c.Param("type"))
}

// getAnnotationsAnyType lists every annotation recorded for :id.
// GET /variation/:id/annotations
func (s *Server) getAnnotationsAnyType(c *gin.Context) {
	s.listAnnotations(c, "")
}

func (s *Server) listAnnotations(c *gin.Context, annotationType string) {
	annotations, err := s.av.GetObjectAnnotations(c.Request.Context(), c.Param("id"), annotationType)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"annotations": annotations})
}
