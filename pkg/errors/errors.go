package errors

import "fmt"

// ErrorType classifies failures raised by the Weibo client and its callers
type ErrorType string

const (
	// ErrorTypeAuth means the cookie blob lacked the XSRF token; fatal at construction
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeTransport is a connection/DNS/timeout failure
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeHTTP is a non-2xx status before the envelope is interpreted
	ErrorTypeHTTP ErrorType = "http"
	// ErrorTypeAPI means the list envelope's ok flag signalled failure
	ErrorTypeAPI ErrorType = "api"
	// ErrorTypeMutation means the modify envelope signalled a per-item failure
	ErrorTypeMutation ErrorType = "mutation"
	// ErrorTypeParse means a response body did not match the expected envelope
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeUnknown covers everything else
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error represents a typed API error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("weibo %s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("weibo %s error: %s", e.Type, e.Message)
}

// IsRetryable reports whether an error type should be retried.
// Transport failures and failing HTTP statuses retry; everything the
// envelope itself reported (auth, api, mutation, parse) does not.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport, ErrorTypeHTTP:
		return true
	case ErrorTypeAuth, ErrorTypeAPI, ErrorTypeMutation, ErrorTypeParse:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode reports whether an HTTP status warrants another attempt.
// The batch client treats any failing status as transient until the retry
// budget runs out; only the final attempt's status is surfaced.
func IsRetryableStatusCode(statusCode int) bool {
	if statusCode == 0 { // transport failure, no response
		return true
	}
	return statusCode < 200 || statusCode >= 300
}
