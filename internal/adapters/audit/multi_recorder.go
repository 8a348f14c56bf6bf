package audit

import (
	"context"
	"errors"

	"github.com/kevin07696/vanco-gateway/internal/adapters/ports"
)

type multiRecorder []ports.AuditRecorder

// NewMultiRecorder fans a record out to every recorder; all are attempted even if one fails
func NewMultiRecorder(recorders ...ports.AuditRecorder) ports.AuditRecorder {
	return multiRecorder(recorders)
}

func (m multiRecorder) Record(ctx context.Context, rec *ports.AuditRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
