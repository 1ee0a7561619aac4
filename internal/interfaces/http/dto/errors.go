package dto

import (
	"net/http"

	"github.com/atelier-erp/backend/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep their own codes and map
// to HTTP status by kind via KindHTTPStatus.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound    = "ERR_NOT_FOUND"
	ErrCodeConflict    = "ERR_CONFLICT"
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// errorCodeHTTPStatus maps transport error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeConflict:    http.StatusConflict,
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for a transport error code.
// Unknown codes fall back to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// kindHTTPStatus maps domain error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:    http.StatusBadRequest,
	shared.KindNotFound:      http.StatusNotFound,
	shared.KindStateConflict: http.StatusConflict,
	shared.KindConcurrency:   http.StatusConflict,
	shared.KindStock:         http.StatusUnprocessableEntity,
}

// KindHTTPStatus returns the HTTP status for a domain error kind.
// Unknown kinds fall back to 500.
func KindHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
