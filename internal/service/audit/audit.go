// Package audit implements the sink that receives one structured record per
// mutation. Emission is best effort: a failed write or forward is logged and
// never rolls back the already-committed transaction.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/domain/models"
	"github.com/mamadbah2/armory/internal/repository"
)

// Sink accepts audit records emitted by the write paths.
type Sink interface {
	Record(ctx context.Context, rec models.AuditRecord)
}

// Forwarder pushes records to an external collector.
type Forwarder interface {
	Forward(ctx context.Context, rec models.AuditRecord) error
}

const forwardTimeout = 10 * time.Second

// Service persists audit records and optionally forwards them.
type Service struct {
	store   repository.AuditStore
	relay   Forwarder // nil when no external collector is configured
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the audit sink. relay may be nil.
func NewService(store repository.AuditStore, relay Forwarder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, relay: relay, logger: logger, now: time.Now}
}

var _ Sink = (*Service)(nil)

// Record stores the audit entry and forwards it when a relay is configured.
func (s *Service) Record(ctx context.Context, rec models.AuditRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}

	if err := s.store.AppendAudit(ctx, rec); err != nil {
		s.logger.Warn("audit record not persisted",
			zap.String("user", rec.User),
			zap.String("action", rec.Action),
			zap.Error(err))
	}

	if s.relay == nil {
		return
	}
	fwdCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forwardTimeout)
	defer cancel()
	if err := s.relay.Forward(fwdCtx, rec); err != nil {
		s.logger.Warn("audit record not forwarded",
			zap.String("action", rec.Action),
			zap.Error(err))
	}
}

// List returns the audit trail, newest first.
func (s *Service) List(ctx context.Context) ([]models.AuditRecord, error) {
	return s.store.AuditRecords(ctx)
}
