package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code
type ErrorCode string

const (
	// ErrorCodeConfiguration: required endpoint or credential configuration is missing.
	// Raised before any network activity.
	ErrorCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// ErrorCodeTransport: the HTTPS exchange with the gateway failed (DNS, connect, TLS, timeout, non-2xx).
	ErrorCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrorCodeProtocol: the gateway answered with something that does not match the wire contract
	// (not XML, or a required field is missing).
	ErrorCodeProtocol ErrorCode = "PROTOCOL_ERROR"

	// ErrorCodeValidationFailed: the purchase request was rejected locally before being sent.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// NewConfigurationError reports a missing or invalid configuration value.
func NewConfigurationError(message string) *DomainError {
	return NewDomainError(ErrorCodeConfiguration, message)
}

// NewTransportError wraps a failure of the underlying HTTPS call.
func NewTransportError(message string, err error) *DomainError {
	return WrapError(ErrorCodeTransport, message, err)
}

// NewProtocolError reports a response that breaks the wire contract.
// err may be nil when the document parsed but a field was missing.
func NewProtocolError(message string, err error) *DomainError {
	return WrapError(ErrorCodeProtocol, message, err)
}

// NewValidationError reports a request rejected before transmission.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrorCodeValidationFailed, message)
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

func IsConfigurationError(err error) bool {
	return IsDomainError(err, ErrorCodeConfiguration)
}

func IsTransportError(err error) bool {
	return IsDomainError(err, ErrorCodeTransport)
}

func IsProtocolError(err error) bool {
	return IsDomainError(err, ErrorCodeProtocol)
}

func IsValidationError(err error) bool {
	return IsDomainError(err, ErrorCodeValidationFailed)
}
