package dto

import (
	"time"

	"github.com/marketplace/portal/internal/domain/shared"
)

// Response is the envelope of every portal response. Notification carries
// the toast the front end shows; CloseModal tells it to close the open form.
type Response struct {
	Success      bool                 `json:"success"`
	Data         any                  `json:"data,omitempty"`
	Error        *ErrorInfo           `json:"error,omitempty"`
	Meta         *Meta                `json:"meta,omitempty"`
	Notification *shared.Notification `json:"notification,omitempty"`
	CloseModal   bool                 `json:"close_modal,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail is one failed field of a request body
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewMutationResponse answers a form submission the backend accepted: the
// server message becomes a success toast and the form is closed.
func NewMutationResponse(data any, message string) Response {
	return Response{
		Success:      true,
		Data:         data,
		Notification: shared.Success(message),
		CloseModal:   true,
	}
}

// NewErrorResponse creates an error response with a failure toast
func NewErrorResponse(code, message string) Response {
	return NewErrorResponseWithRequestID(code, message, "")
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
		Notification: shared.Failure(message),
	}
}

// NewValidationErrorResponse creates a 400 response listing the failed fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// ListRequest represents common list/pagination request parameters
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

// DefaultListRequest returns a list request with defaults
func DefaultListRequest() ListRequest {
	return ListRequest{
		Page:     1,
		PageSize: 20,
	}
}

// IDRequest represents a request with a uuid path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
