package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/opendrive/drivevalue/internal/reference"
)

func (s *Server) ListValuationOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": reference.ValuationOptions()})
}
