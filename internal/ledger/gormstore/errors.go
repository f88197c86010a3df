package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"ledger-backend/internal/ledger"
)

// PostgreSQL SQLSTATE kodları
const (
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// translate veritabanı hatalarını ledger hata tiplerine çevirir. Ledger
// katmanının kendi hataları olduğu gibi geçer.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrValidation) || errors.Is(err, ledger.ErrNotFound) ||
		errors.Is(err, ledger.ErrConflict) || errors.Is(err, ledger.ErrInsufficientStock) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("record: %w", ledger.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return &ledger.ConflictError{Message: "timed out waiting for stock lock, please retry", Retryable: true}
		case codeUniqueViolation:
			return &ledger.ConflictError{Message: "record already exists"}
		case codeForeignKeyViolation:
			return &ledger.ConflictError{Message: "record is referenced by other records"}
		case codeCheckViolation:
			return &ledger.ConflictError{Message: "stock cannot go negative"}
		}
	}
	return fmt.Errorf("storage: %w", err)
}
