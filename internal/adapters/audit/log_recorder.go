package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
)

// logRecorder writes audit records to the structured log.
// The request is already redacted when it reaches a recorder.
type logRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder creates an AuditRecorder that logs every record at info level
func NewLogRecorder(logger *zap.Logger) ports.AuditRecorder {
	return &logRecorder{logger: logger.Named("audit")}
}

func (r *logRecorder) Record(ctx context.Context, rec *ports.AuditRecord) error {
	fields := []zap.Field{
		zap.String("audit_id", rec.ID.String()),
		zap.String("operation", rec.Operation),
		zap.String("request_id", rec.RequestID),
		zap.Bool("success", rec.Success),
		zap.Time("started_at", rec.StartedAt),
		zap.Duration("duration", rec.Duration),
		zap.String("request", rec.Request),
		zap.String("response", rec.Response),
	}
	if rec.Success {
		fields = append(fields,
			zap.Int64p("customer_ref", rec.CustomerID),
			zap.Int64p("payment_method_ref", rec.PaymentID),
			zap.Int64p("transaction_ref", rec.TransactionID),
		)
	} else {
		fields = append(fields, zap.Ints("error_codes", rec.ErrorCodes))
	}

	r.logger.Info("Vanco transaction", fields...)
	return nil
}
