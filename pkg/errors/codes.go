package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are stable API values:
// clients match on them, so an existing code is never renumbered.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	ErrCodeUnknown ErrorCode = "UNKNOWN"
	ErrCodeOK      ErrorCode = "OK"
)

// Service-wide codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
)

// Date engine codes. These are the failures a caller can provoke at the
// public boundary of the deadline engine; none of them is retryable.
const (
	ErrCodeInvalidDateFormat ErrorCode = "DATE_001"
	ErrCodeInvalidMagnitude  ErrorCode = "DATE_002"
	ErrCodeUnknownRule       ErrorCode = "DATE_003"
	ErrCodeInvalidYear       ErrorCode = "DATE_004"
	ErrCodeInvalidHoliday    ErrorCode = "DATE_005"
)

type codeInfo struct {
	status  int
	message string
}

var codeTable = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeValidation:         {http.StatusUnprocessableEntity, "validation failed"},
	ErrCodeSerialization:      {http.StatusInternalServerError, "serialization failed"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},

	ErrCodeInvalidDateFormat: {http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD"},
	ErrCodeInvalidMagnitude:  {http.StatusBadRequest, "invalid magnitude, counts must not be negative"},
	ErrCodeUnknownRule:       {http.StatusNotFound, "unknown deadline rule"},
	ErrCodeInvalidYear:       {http.StatusBadRequest, "year out of range"},
	ErrCodeInvalidHoliday:    {http.StatusBadRequest, "invalid holiday definition"},
}

// HTTPStatusForCode returns the HTTP status for code; unknown codes map to 500.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := codeTable[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the canonical message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := codeTable[code]; ok {
		return info.message
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}
