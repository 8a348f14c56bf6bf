package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditRecord is the persisted trace of one gateway exchange.
// Request is always the redacted document.
type AuditRecord struct {
	ID            uuid.UUID
	Operation     string // "login" or "purchase"
	RequestID     string // correlation id sent in Auth/RequestID
	Request       string
	Response      string
	Success       bool
	ErrorCodes    []int
	CustomerID    *int64
	PaymentID     *int64
	TransactionID *int64
	StartedAt     time.Time
	Duration      time.Duration
}

// AuditRecorder receives a record for every completed transaction call.
// Errors are logged by the caller and never fail the payment.
type AuditRecorder interface {
	Record(ctx context.Context, rec *AuditRecord) error
}
