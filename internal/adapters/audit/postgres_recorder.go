package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
)

// AuditSchema creates the audit table
const AuditSchema = `CREATE TABLE IF NOT EXISTS vanco_audit_log (
	id                 UUID PRIMARY KEY,
	operation          TEXT NOT NULL,
	request_id         TEXT NOT NULL,
	request_xml        TEXT NOT NULL,
	response_xml       TEXT NOT NULL,
	success            BOOLEAN NOT NULL,
	error_codes        INTEGER[] NOT NULL DEFAULT '{}',
	customer_ref       BIGINT,
	payment_method_ref BIGINT,
	transaction_ref    BIGINT,
	started_at         TIMESTAMPTZ NOT NULL,
	duration_ms        BIGINT NOT NULL
)`

const insertAuditSQL = `INSERT INTO vanco_audit_log (
	id, operation, request_id, request_xml, response_xml, success, error_codes,
	customer_ref, payment_method_ref, transaction_ref, started_at, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRecorder struct {
	db DBTX
}

// NewPostgresRecorder creates an AuditRecorder that inserts into vanco_audit_log
func NewPostgresRecorder(db DBTX) ports.AuditRecorder {
	return &postgresRecorder{db: db}
}

// EnsureAuditSchema creates the audit table if it does not exist
func EnsureAuditSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, AuditSchema); err != nil {
		return fmt.Errorf("create vanco_audit_log: %w", err)
	}
	return nil
}

func (r *postgresRecorder) Record(ctx context.Context, rec *ports.AuditRecord) error {
	errorCodes := rec.ErrorCodes
	if errorCodes == nil {
		errorCodes = []int{}
	}

	_, err := r.db.Exec(ctx, insertAuditSQL,
		rec.ID,
		rec.Operation,
		rec.RequestID,
		rec.Request,
		rec.Response,
		rec.Success,
		errorCodes,
		rec.CustomerID,
		rec.PaymentID,
		rec.TransactionID,
		rec.StartedAt,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record %s: %w", rec.ID, err)
	}
	return nil
}
