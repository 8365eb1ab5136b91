// Package handler holds the gin handlers of the portal API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/backend"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
	"github.com/marketplace/portal/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RequestIDKey is the header carrying the request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// principal returns the caller; routes behind the JWT middleware always have one
func principal(c *gin.Context) identity.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Mutated answers an accepted form submission with a success toast and
// close_modal set.
func (h *BaseHandler) Mutated(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.NewMutationResponse(data, message))
}

// Attachment sends a file download
func (h *BaseHandler) Attachment(c *gin.Context, fileName, contentType string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, content)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// BindError answers a request whose body or query failed binding
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps an error from the application layer to a response.
//
//   - a rejected backend envelope is a 422 whose toast is the server message
//   - an unreachable or malformed backend is a 502 with the generic text
//   - a domain rule violation gets the status of its code
//   - anything else is a 500 with the generic text
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	ctx := c.Request.Context()
	requestID := getRequestID(c)
	_ = c.Error(err)

	var be *backend.BusinessError
	if errors.As(err, &be) {
		logger.L(ctx).Info("Backend rejected request",
			zap.String("endpoint", be.Endpoint),
			zap.Int("backend_status", be.Status),
			zap.String("message", be.Message),
		)
		c.JSON(http.StatusUnprocessableEntity,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBackendRejected, be.UserMessage(), requestID))
		return
	}

	if errors.Is(err, backend.ErrBackendUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		logger.L(ctx).Error("Backend unavailable", zap.Error(err))
		c.JSON(http.StatusBadGateway,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBackendUnavailable, shared.GenericFailureMessage, requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.StatusForDomainCode(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.L(ctx).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, shared.GenericFailureMessage, requestID))
}
