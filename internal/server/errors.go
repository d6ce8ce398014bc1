package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apiconfigdomain "github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/evalue8"
	valuationdomain "github.com/opendrive/drivevalue/internal/valuation/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError translates domain errors into the stable response envelope.
// Upstream error messages pass through; everything else gets a fixed
// message so internals never leak to clients.
func mapError(err error) (int, errorPayload) {
	var (
		statusErr    *evalue8.StatusError
		timeoutErr   *evalue8.TimeoutError
		transportErr *evalue8.TransportError
		malformedErr *evalue8.MalformedResponseError
		upstreamErr  *evalue8.UpstreamError
	)

	switch {
	case errors.Is(err, apiconfigdomain.ErrInvalidRequest),
		errors.Is(err, valuationdomain.ErrInvalidRequest),
		errors.Is(err, valuationdomain.ErrInvalidIdentify),
		errors.Is(err, valuationdomain.ErrInvalidExtra):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, apiconfigdomain.ErrConfigurationMissing):
		return http.StatusConflict, errorPayload{
			Type:    "configuration_missing",
			Message: "no active api configuration, save one first",
		}
	case errors.Is(err, apiconfigdomain.ErrConfigurationIncomplete):
		return http.StatusConflict, errorPayload{
			Type:    "configuration_incomplete",
			Message: "active api configuration is missing required fields",
		}
	case errors.Is(err, apiconfigdomain.ErrCredentialDecrypt),
		errors.Is(err, apiconfigdomain.ErrEncryptionKeyMissing):
		return http.StatusInternalServerError, errorPayload{
			Type:    "credential_error",
			Message: err.Error(),
		}
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, errorPayload{
			Type:    "upstream_timeout",
			Message: "valuation service did not respond in time",
		}
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_unreachable",
			Message: "valuation service could not be reached",
		}
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_status",
			Message: statusErr.Error(),
		}
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_malformed",
			Message: "valuation service returned an unreadable response",
		}
	case errors.As(err, &upstreamErr):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "upstream_rejected",
			Message: upstreamErr.Message,
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many valuation requests, retry later",
		}
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limit", payload.Type
	case status == http.StatusBadGateway || status == http.StatusGatewayTimeout || status == http.StatusUnprocessableEntity:
		return "upstream", payload.Type
	case status >= http.StatusInternalServerError:
		return "server", payload.Type
	default:
		return "client", payload.Type
	}
}
