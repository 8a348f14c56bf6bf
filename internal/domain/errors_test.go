package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainErrors_Constructors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		err      *DomainError
		code     ErrorCode
		is       func(error) bool
		contains string
	}{
		{
			name:     "configuration",
			err:      NewConfigurationError("client id is required"),
			code:     ErrorCodeConfiguration,
			is:       IsConfigurationError,
			contains: "client id is required",
		},
		{
			name:     "transport",
			err:      NewTransportError("failed to send request", cause),
			code:     ErrorCodeTransport,
			is:       IsTransportError,
			contains: "connection refused",
		},
		{
			name:     "protocol",
			err:      NewProtocolError("response is missing TransactionRef", nil),
			code:     ErrorCodeProtocol,
			is:       IsProtocolError,
			contains: "TransactionRef",
		},
		{
			name:     "validation",
			err:      NewValidationError("at least one fund is required"),
			code:     ErrorCodeValidationFailed,
			is:       IsValidationError,
			contains: "at least one fund",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if !tt.is(tt.err) {
				t.Errorf("predicate did not match %v", tt.err)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("error message %q does not contain %q", tt.err.Error(), tt.contains)
			}
			if !strings.HasPrefix(tt.err.Error(), string(tt.code)) {
				t.Errorf("error message %q does not start with code %q", tt.err.Error(), tt.code)
			}
		})
	}
}

func TestDomainErrors_PredicatesAreExclusive(t *testing.T) {
	err := NewTransportError("timeout", nil)

	if IsConfigurationError(err) || IsProtocolError(err) || IsValidationError(err) {
		t.Errorf("transport error matched another category")
	}
}

func TestDomainErrors_Wrapping(t *testing.T) {
	cause := errors.New("EOF")
	err := NewProtocolError("response is not well-formed XML", cause)
	wrapped := fmt.Errorf("purchase: %w", err)

	if !errors.Is(wrapped, cause) {
		t.Errorf("errors.Is should reach the cause through DomainError")
	}
	if !IsProtocolError(wrapped) {
		t.Errorf("IsProtocolError should see through fmt.Errorf wrapping")
	}
	if GetErrorCode(wrapped) != ErrorCodeProtocol {
		t.Errorf("GetErrorCode = %q, want %q", GetErrorCode(wrapped), ErrorCodeProtocol)
	}
	if GetErrorCode(cause) != "" {
		t.Errorf("GetErrorCode on a plain error should be empty")
	}
}

func TestDomainErrors_WithDetail(t *testing.T) {
	err := NewValidationError("fund amount must be positive").
		WithDetail("index", 1).
		WithDetail("fund_id", "B")

	if err.Details["index"] != 1 {
		t.Errorf("Details[index] = %v, want 1", err.Details["index"])
	}
	if err.Details["fund_id"] != "B" {
		t.Errorf("Details[fund_id] = %v, want B", err.Details["fund_id"])
	}

	bare := &DomainError{Code: ErrorCodeProtocol, Message: "x"}
	bare.WithDetail("k", "v")
	if bare.Details["k"] != "v" {
		t.Errorf("WithDetail should initialise a nil map")
	}
}
