package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	withCode := &Error{Type: ErrorTypeHTTP, Message: "bad gateway", Code: 502}
	assert.Equal(t, "weibo http error (code 502): bad gateway", withCode.Error())

	withoutCode := &Error{Type: ErrorTypeMutation, Message: "operation too frequent"}
	assert.Equal(t, "weibo mutation error: operation too frequent", withoutCode.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeTransport))
	assert.True(t, IsRetryable(ErrorTypeHTTP))

	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeAPI))
	assert.False(t, IsRetryable(ErrorTypeMutation))
	assert.False(t, IsRetryable(ErrorTypeParse))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}

func TestIsRetryableStatusCode(t *testing.T) {
	assert.True(t, IsRetryableStatusCode(0), "no response at all")
	assert.True(t, IsRetryableStatusCode(429))
	assert.True(t, IsRetryableStatusCode(500))
	assert.True(t, IsRetryableStatusCode(302))

	assert.False(t, IsRetryableStatusCode(200))
	assert.False(t, IsRetryableStatusCode(204))
}
