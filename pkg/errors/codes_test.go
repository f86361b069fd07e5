package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForCode(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidDateFormat, http.StatusBadRequest},
		{ErrCodeInvalidMagnitude, http.StatusBadRequest},
		{ErrCodeInvalidYear, http.StatusBadRequest},
		{ErrCodeUnknownRule, http.StatusNotFound},
		{ErrCodeValidation, http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatusForCode(tc.code), tc.code)
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "invalid date format, expected YYYY-MM-DD", DefaultMessageForCode(ErrCodeInvalidDateFormat))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
	assert.Equal(t, "year out of range", New(ErrCodeInvalidYear, "").Message)
}

func TestEveryCodeIsComplete(t *testing.T) {
	for code, info := range codeTable {
		assert.NotZero(t, info.status, code)
		assert.NotEmpty(t, info.message, code)
	}
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeInvalidMagnitude))
	assert.False(t, IsServerError(ErrCodeInvalidMagnitude))
	assert.True(t, IsServerError(ErrCodeCacheError))
	assert.False(t, IsClientError(ErrCodeCacheError))
}
