package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceInfo is the GA4GH minimal service-info shape
// (https://github.com/ga4gh-discovery/ga4gh-service-info).
type serviceInfo struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         serviceType  `json:"type"`
	Description  string       `json:"description"`
	Organization organization `json:"organization"`
	Version      string       `json:"version"`
}

type serviceType struct {
	Group    string `json:"group"`
	Artifact string `json:"artifact"`
	Version  string `json:"version"`
}

type organization struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// getServiceInfo reports this deployment's GA4GH service-info document.
// GET /service-info
func (s *Server) getServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, serviceInfo{
		ID:   "org.ga4gh.anyvar",
		Name: "AnyVar",
		Type: serviceType{
			Group:    "org.ga4gh",
			Artifact: "anyvar",
			Version:  "2.0.0",
		},
		Description: "Variation registration, retrieval, and search over the GA4GH VRS object model",
		Organization: organization{
			Name: "GA4GH",
			URL:  "https://ga4gh.org",
		},
		Version: "2.0.0",
	})
}
