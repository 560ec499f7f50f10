package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
)

type putVariationRequest struct {
	Definition string `json:"definition" binding:"required"`
}

// putVariation registers a variant definition as VRS variation.
// PUT /variation
func (s *Server) putVariation(c *gin.Context) {
	var req putVariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	allele, err := s.av.TranslateAndPut(c.Request.Context(), req.Definition)
	if err != nil {
		var te *anyvarerr.TranslationError
		switch {
		case errors.As(err, &te), errors.Is(err, anyvarerr.ErrUnknownNomenclature):
			c.JSON(http.StatusBadRequest, gin.H{
				"object":    nil,
				"object_id": nil,
				"messages":  []string{err.Error()},
			})
		case errors.Is(err, anyvarerr.ErrUnresolvedAccession), errors.Is(err, anyvarerr.ErrUnknownAccession):
			writeError(c, http.StatusBadGateway, err)
		case errors.Is(err, anyvarerr.ErrUnavailable):
			writeError(c, http.StatusServiceUnavailable, err)
		default:
			writeError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object_id": allele.VRSID(),
		"object":    allele,
		"messages":  []string{},
	})
}

// getVariation dereferences a previously registered VRS object by id.
// GET /variation/:id
func (s *Server) getVariation(c *gin.Context) {
	id := c.Param("id")
	obj, err := s.av.GetObject(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, anyvarerr.ErrNotFound) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": obj})
}
