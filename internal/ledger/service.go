package ledger

import (
	"context"
	"errors"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/models"

	"go.uber.org/zap"
)

// Actor işlemi yapan kullanıcı; audit kaydına yazılır.
type Actor struct {
	UserID uint
	Name   string
}

// Service stok mutabakatını yürütür: her alış, çıkış ve iade işlemi stok
// tablosuyla aynı transaction içinde uygulanır.
type Service struct {
	store   Store
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

func NewService(store Store, logger *zap.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, metrics: metrics, now: time.Now}
}

func (s *Service) mutate(ctx context.Context, d Domain, kind, op string, fn func(tx Tx) error) error {
	start := time.Now()
	err := s.store.InTx(ctx, d, fn)
	s.metrics.observe(d, kind, op, err, time.Since(start))

	fields := []zap.Field{
		zap.String("domain", string(d)),
		zap.String("kind", kind),
		zap.String("op", op),
		zap.Duration("duration", time.Since(start)),
	}
	switch {
	case err == nil:
		s.logger.Debug("ledger operation applied", fields...)
	case isBusinessError(err):
		s.logger.Info("ledger operation rejected", append(fields, zap.Error(err))...)
	default:
		s.logger.Error("ledger operation failed", append(fields, zap.Error(err))...)
	}
	return err
}

func (s *Service) view(ctx context.Context, d Domain, fn func(tx Tx) error) error {
	return s.store.View(ctx, d, fn)
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, context.Canceled)
}

func writeAudit(ctx context.Context, tx Tx, d Domain, actor Actor, entity string, id uint, action models.AuditAction, desc string, before, after any) error {
	return tx.WriteAudit(ctx, audit.NewEntry(audit.LogOptions{
		Domain:      string(d),
		UserID:      actor.UserID,
		UserName:    actor.Name,
		EntityType:  entity,
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	}))
}
