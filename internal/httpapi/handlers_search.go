package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type searchRequest struct {
	Accession string `form:"accession" binding:"required"`
	Start     int64  `form:"start" binding:"required"`
	End       int64  `form:"end" binding:"required"`
}

// getSearch returns every Allele on accession whose interval intersects
// [start, end).
// GET /search?accession=&start=&end=
func (s *Server) getSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.End <= req.Start {
		writeError(c, http.StatusBadRequest, errRangeOrder)
		return
	}

	alleles, err := s.av.SearchVariations(c.Request.Context(), req.Accession, req.Start, req.End)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variations": alleles})
}

var errRangeOrder = errors.New("search: end must be greater than start")
