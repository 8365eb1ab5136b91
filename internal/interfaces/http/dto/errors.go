package dto

import (
	"net/http"
	"strings"
)

// Standardized error codes, ERR_<CATEGORY>[_<DETAIL>]. Domain rule codes
// such as PAN_NOT_VERIFIED are sent as they are.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	// ErrCodeValidation carries per-field details
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"

	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	// ErrCodeBackendRejected is a marketplace backend envelope with status != 1
	ErrCodeBackendRejected = "ERR_BACKEND_REJECTED"
	// ErrCodeBackendUnavailable covers transport failures and timeouts
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeBackendRejected:    http.StatusUnprocessableEntity,
	ErrCodeBackendUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus returns the status for code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// genericDomainCodes maps the generic shared.DomainError codes to the
// standardized ones. Rule-specific codes are not listed.
var genericDomainCodes = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"RATE_LIMITED":     ErrCodeRateLimited,
	"VALIDATION_ERROR": ErrCodeValidation,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode returns the standardized code for a generic domain
// code and any other code unchanged
func NormalizeErrorCode(code string) string {
	if std, ok := genericDomainCodes[code]; ok {
		return std
	}
	return code
}

// domainCodeHTTPStatus pins the domain codes whose status cannot be read
// from their name.
var domainCodeHTTPStatus = map[string]int{
	"NO_FILE":             http.StatusBadRequest,
	"EMPTY_FILE":          http.StatusBadRequest,
	"EMPTY_WORKBOOK":      http.StatusBadRequest,
	"DUPLICATE_SKU":       http.StatusBadRequest,
	"REASON_REQUIRED":     http.StatusBadRequest,
	"SKU_NOT_IN_ORDER":    http.StatusBadRequest,
	"GSTIN_PAN_MISMATCH":  http.StatusUnprocessableEntity,
	"CANNOT_DELETE_SELF":  http.StatusForbidden,
	"CANNOT_EDIT_SELF":    http.StatusForbidden,
	"PERMISSION_NOT_HELD": http.StatusForbidden,
	"NOT_ARCHIVED":        http.StatusNotFound,
	"NO_IMPORT_ERRORS":    http.StatusNotFound,
}

// StatusForDomainCode returns the HTTP status for a domain error code.
// Generic codes go through the standardized map; INVALID_* codes are input
// errors, *_NOT_FOUND codes are 404 and any other rule violation is 422.
func StatusForDomainCode(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	normalized := NormalizeErrorCode(code)
	if status, ok := ErrorCodeHTTPStatus[normalized]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
