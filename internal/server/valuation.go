package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opendrive/drivevalue/internal/observability/logger"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
	"go.uber.org/zap"
)

// ValuationRateLimit throttles billed valuation calls per client address.
// Limiter backend failures fail open; a degraded redis must not block
// valuations.
func (s *Server) ValuationRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.valuationLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		allowed, err := s.valuationLimiter.Allow(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("valuation rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func (s *Server) CreateValuation(c *gin.Context) {
	var req valuationdomain.ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, valuationdomain.ErrInvalidRequest)
		return
	}

	result, err := s.valuationSvc.Valuate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) IdentifyVehicle(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("mmYear"))
	req := valuationdomain.IdentifyRequest{
		VIN:    strings.TrimSpace(c.Query("vin")),
		MMCode: strings.TrimSpace(c.Query("mmCode")),
		Year:   year,
	}

	ident, err := s.valuationSvc.Identify(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ident})
}

func (s *Server) PriceNonStandardExtra(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("mmYear"))
	costPrice, _ := strconv.ParseInt(c.Query("costPrice"), 10, 64)
	req := valuationdomain.NonStandardExtraRequest{
		Year:        year,
		CostPrice:   costPrice,
		VehicleType: strings.TrimSpace(c.Query("vehicleType")),
	}

	extra, err := s.valuationSvc.NonStandardExtra(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": extra})
}
