// Package memstore ledger.Store'un bellek içi uygulamasıdır; testlerde kullanılır.
package memstore

import (
	"context"
	"sync"
	"time"

	"ledger-backend/internal/ledger"
	"ledger-backend/internal/models"
)

// Store her alan için tek bir kilitle transaction'ları sıraya koyar. Transaction
// durumun bir kopyası üzerinde çalışır, hata yoksa kopya yerine geçer.
type Store struct {
	mu          sync.Mutex
	domains     map[ledger.Domain]*state
	locks       map[ledger.Domain]chan struct{}
	lockTimeout time.Duration
	now         func() time.Time
}

func New(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	s := &Store{
		domains:     make(map[ledger.Domain]*state),
		locks:       make(map[ledger.Domain]chan struct{}),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
	for _, d := range ledger.Domains {
		s.domains[d] = newState()
		s.locks[d] = make(chan struct{}, 1)
	}
	return s
}

func (s *Store) InTx(ctx context.Context, d ledger.Domain, fn func(tx ledger.Tx) error) error {
	return s.run(ctx, d, true, fn)
}

func (s *Store) View(ctx context.Context, d ledger.Domain, fn func(tx ledger.Tx) error) error {
	return s.run(ctx, d, false, fn)
}

// AuditLogs alanın audit kayıtlarını yazılma sırasıyla döner.
func (s *Store) AuditLogs(d ledger.Domain) []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.domains[d]
	if !ok {
		return nil
	}
	out := make([]models.AuditLog, len(st.audit))
	copy(out, st.audit)
	return out
}

func (s *Store) run(ctx context.Context, d ledger.Domain, writable bool, fn func(tx ledger.Tx) error) error {
	sem, ok := s.locks[d]
	if !ok {
		return &ledger.ValidationError{Field: "domain", Message: "unknown domain " + string(d)}
	}
	if err := acquire(ctx, sem, s.lockTimeout); err != nil {
		return err
	}
	defer func() { <-sem }()

	s.mu.Lock()
	staged := s.domains[d].clone()
	s.mu.Unlock()

	if err := fn(&tx{st: staged, writable: writable, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if writable {
		s.mu.Lock()
		s.domains[d] = staged
		s.mu.Unlock()
	}
	return nil
}

func acquire(ctx context.Context, sem chan struct{}, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return &ledger.ConflictError{Message: "timed out waiting for stock lock, please retry", Retryable: true}
	}
}
