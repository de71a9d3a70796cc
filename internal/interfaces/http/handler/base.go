package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/domain/shared"
	"github.com/socialsync/backend/internal/interfaces/http/dto"
	"github.com/socialsync/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return ""
}

// getUserID extracts user ID from JWT claims or returns error
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// getCompanyID extracts the authenticated company from JWT claims.
// The company guard has already checked it against the companyId query
// parameter, so the claim is the single source of truth here.
func getCompanyID(c *gin.Context) (uuid.UUID, error) {
	companyIDStr := middleware.GetJWTCompanyID(c)
	if companyIDStr == "" {
		return uuid.Nil, errors.New("company ID not found in context")
	}
	return uuid.Parse(companyIDStr)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	requestID := getRequestID(c)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	))
}

// sentinelCodes maps domain sentinel errors to API error codes. Order
// matters: wrapping errors like ErrReauthorizationRequired must be
// matched before the credential errors they wrap.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{platform.ErrStateInvalid, dto.ErrCodeStateInvalid},
	{platform.ErrStateExpired, dto.ErrCodeStateExpired},
	{platform.ErrExchangeFailed, dto.ErrCodeExchangeFailed},
	{platform.ErrReauthorizationRequired, dto.ErrCodeReauthorizationRequired},
	{platform.ErrMissingCapabilities, dto.ErrCodeMissingCapabilities},
	{platform.ErrResourceClaimed, dto.ErrCodeResourceClaimed},
	{platform.ErrResourceLocked, dto.ErrCodeResourceLocked},
	{platform.ErrPlatformRateLimited, dto.ErrCodeRateLimited},
	{platform.ErrPlatformUnavailable, dto.ErrCodePlatformUnavailable},
	{platform.ErrResourceNotFound, dto.ErrCodeNotFound},
	{platform.ErrSkippedResourceNotFound, dto.ErrCodeNotFound},
	{platform.ErrResourceInvalidID, dto.ErrCodeBadRequest},
	{platform.ErrResourceInvalidTenant, dto.ErrCodeForbidden},
	{identity.ErrCompanyNotFound, dto.ErrCodeNotFound},
	{identity.ErrCompanyInvalidName, dto.ErrCodeBadRequest},
}

// domainErrorCodes maps shared.DomainError codes to API error codes
var domainErrorCodes = map[string]string{
	"NOT_FOUND":            dto.ErrCodeNotFound,
	"ALREADY_EXISTS":       dto.ErrCodeConflict,
	"INVALID_INPUT":        dto.ErrCodeBadRequest,
	"CONCURRENCY_CONFLICT": dto.ErrCodeConflict,
	"UNAUTHORIZED":         dto.ErrCodeUnauthorized,
	"FORBIDDEN":            dto.ErrCodeForbidden,
	"INVALID_STATE":        dto.ErrCodeConflict,
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	for _, m := range sentinelCodes {
		if errors.Is(err, m.err) {
			statusCode := dto.GetHTTPStatus(m.code)
			c.JSON(statusCode, dto.NewErrorResponseWithRequestID(m.code, err.Error(), requestID))
			return
		}
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code, ok := domainErrorCodes[domainErr.Code]
		if !ok {
			code = dto.ErrCodeUnknown
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
