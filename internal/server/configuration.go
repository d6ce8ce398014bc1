package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
)

func (s *Server) GetConfiguration(c *gin.Context) {
	summary, err := s.configSvc.GetActive(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) SaveConfiguration(c *gin.Context) {
	var req apiconfigdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, apiconfigdomain.ErrInvalidRequest)
		return
	}

	summary, err := s.configSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type testConfigurationRequest struct {
	Environment string `json:"environment"`
}

// TestConfiguration probes upstream connectivity for the requested
// environment without touching the stored profile.
func (s *Server) TestConfiguration(c *gin.Context) {
	var req testConfigurationRequest
	// The body is optional; an absent environment falls back to live.
	_ = c.ShouldBindJSON(&req)

	env := apiconfigdomain.NormalizeEnvironment(strings.TrimSpace(req.Environment))
	if err := s.client.Probe(c.Request.Context(), env); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"environment": env, "reachable": true}})
}
