package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
)

func (s *Server) ListMakes(c *gin.Context) {
	makes, cached, err := s.catalogSvc.Makes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": makes, "cached": cached})
}

func (s *Server) ListModels(c *gin.Context) {
	makeName := strings.TrimSpace(c.Query("make"))
	if makeName == "" {
		AbortWithError(c, valuationdomain.ErrInvalidRequest)
		return
	}

	models, cached, err := s.catalogSvc.Models(c.Request.Context(), makeName)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": models, "cached": cached})
}

func (s *Server) ListYears(c *gin.Context) {
	mmCode := strings.TrimSpace(c.Query("mmCode"))
	if mmCode == "" {
		AbortWithError(c, valuationdomain.ErrInvalidRequest)
		return
	}

	years, cached, err := s.catalogSvc.Years(c.Request.Context(), mmCode)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": years, "cached": cached})
}

func (s *Server) ListAccessories(c *gin.Context) {
	mmCode := strings.TrimSpace(c.Query("mmCode"))
	year, _ := strconv.Atoi(c.Query("year"))
	if mmCode == "" || year == 0 {
		AbortWithError(c, valuationdomain.ErrInvalidRequest)
		return
	}

	accessories, cached, err := s.catalogSvc.Accessories(c.Request.Context(), mmCode, year)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accessories, "cached": cached})
}
