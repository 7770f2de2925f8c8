package datura

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorType represents the category of a client error.
type ErrorType string

const (
	// ErrorTypeConfiguration indicates invalid client configuration,
	// such as a missing API key.
	ErrorTypeConfiguration ErrorType = "configuration_error"

	// ErrorTypeInvalidRequest indicates a request that failed local
	// validation before any network call was made.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeTransport indicates a network-level failure: connection
	// refused, DNS resolution failure, timeout, or a dropped stream.
	ErrorTypeTransport ErrorType = "transport_error"

	// ErrorTypeRemoteService indicates a non-2xx HTTP status from the
	// Datura API. StatusCode carries the original status.
	ErrorTypeRemoteService ErrorType = "remote_service_error"

	// ErrorTypeDecode indicates a response body that could not be parsed
	// into the expected shape.
	ErrorTypeDecode ErrorType = "decode_error"
)

// Error is the structured error type returned by all client operations.
type Error struct {
	Type       ErrorType `json:"type"`
	StatusCode int       `json:"status_code,omitempty"`
	Param      string    `json:"param,omitempty"`
	Message    string    `json:"message"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Type == ErrorTypeRemoteService && e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Type, e.StatusCode, e.Message)
	case e.Param != "":
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying cause, if any. Transport errors wrap the
// original network error so callers can match against net/url errors or
// context.Canceled.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewConfigurationError creates an Error for invalid client configuration.
func NewConfigurationError(message string) *Error {
	return &Error{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewInvalidRequestError creates an Error for a request that failed local
// validation. Param names the offending field.
func NewInvalidRequestError(param, message string) *Error {
	return &Error{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewTransportError creates an Error wrapping a network-level failure.
func NewTransportError(err error) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: err.Error(),
		cause:   err,
	}
}

// NewRemoteServiceError creates an Error for a non-2xx response.
func NewRemoteServiceError(statusCode int, message string) *Error {
	return &Error{
		Type:       ErrorTypeRemoteService,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewDecodeError creates an Error for a response body that could not be
// parsed.
func NewDecodeError(message string) *Error {
	return &Error{
		Type:    ErrorTypeDecode,
		Message: message,
	}
}

// IsType reports whether err is a *datura.Error of the given type.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// mapHTTPError converts a non-2xx HTTP response into a remote service error.
// It attempts to extract a descriptive message from the error body.
func mapHTTPError(resp *http.Response) *Error {
	message := extractErrorMessage(resp.Body)
	if message == "" {
		message = fmt.Sprintf("unexpected status from Datura API (HTTP %d)", resp.StatusCode)
	}
	return NewRemoteServiceError(resp.StatusCode, message)
}

// mapNetworkError converts a network-level error into a transport error,
// preserving context cancellation as the cause.
func mapNetworkError(err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Type:    ErrorTypeTransport,
			Message: "request aborted: " + err.Error(),
			cause:   err,
		}
	}
	return NewTransportError(err)
}

// errorEnvelope covers the error body shapes the service is known to return.
type errorEnvelope struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// extractErrorMessage tries to parse the response body as an error envelope
// and returns the most specific message found. Reads at most 4KB.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}

	if env.Error.Message != "" {
		return env.Error.Message
	}
	if env.Message != "" {
		return env.Message
	}
	if len(env.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(env.Detail, &detail); err == nil {
			return detail
		}
		return string(env.Detail)
	}

	return ""
}
