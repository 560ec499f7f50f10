package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/vrs"
)

type putMappingRequest struct {
	DestID string `json:"dest_id" binding:"required"`
	Type   string `json:"mapping_type" binding:"required"`
}

// putMapping records a directed mapping from :id to the request's dest_id.
// PUT /variation/:id/mappings
func (s *Server) putMapping(c *gin.Context) {
	var req putMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	m := vrs.Mapping{SourceID: c.Param("id"), DestID: req.DestID, Type: vrs.MappingType(req.Type)}
	if err := s.av.PutMapping(c.Request.Context(), m); err != nil {
		if errors.Is(err, anyvarerr.ErrNotFound) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": m})
}

// getMappings lists mappings of the given type recorded for :id.
// GET /variation/:id/mappings/:type
func (s *Server) getMappings(c *gin.Context) {
	s.listMappings(c, c.Param("type"))
}

// getMappingsAnyType lists every mapping recorded for :id regardless of type.
// GET /variation/:id/mappings
func (s *Server) getMappingsAnyType(c *gin.Context) {
	s.listMappings(c, "")
}

func (s *Server) listMappings(c *gin.Context, mappingType string) {
	mappings, err := s.av.GetObjectMappings(c.Request.Context(), c.Param("id"), mappingType)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}
