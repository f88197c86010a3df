package gormstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"ledger-backend/internal/ledger"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		retryable bool
	}{
		{"lock timeout", &pgconn.PgError{Code: codeLockNotAvailable}, ledger.ErrConflict, true},
		{"serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: codeSerializationFailure}), ledger.ErrConflict, true},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, ledger.ErrConflict, true},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, ledger.ErrConflict, false},
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, ledger.ErrConflict, false},
		{"check", &pgconn.PgError{Code: codeCheckViolation}, ledger.ErrConflict, false},
		{"record not found", gorm.ErrRecordNotFound, ledger.ErrNotFound, false},
		{"ledger error passes", ledger.NotFound("issue", 7), ledger.ErrNotFound, false},
		{"canceled", context.Canceled, context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if !errors.Is(got, tt.target) {
				t.Fatalf("translate(%v) = %v, want %v", tt.err, got, tt.target)
			}
			if ledger.IsRetryable(got) != tt.retryable {
				t.Errorf("retryable = %v, want %v", ledger.IsRetryable(got), tt.retryable)
			}
		})
	}

	if translate(nil) != nil {
		t.Error("translate(nil) should be nil")
	}
	other := errors.New("connection refused")
	if got := translate(other); !errors.Is(got, other) || errors.Is(got, ledger.ErrConflict) {
		t.Errorf("unexpected translation of generic error: %v", got)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"helmet":  "helmet",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`c:\path`: `c:\\path`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLockTimeoutStmt(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{5 * time.Second, "SET LOCAL lock_timeout = '5000ms'"},
		{time.Millisecond, "SET LOCAL lock_timeout = '1ms'"},
		{300 * time.Microsecond, "SET LOCAL lock_timeout = '1ms'"},
		{1500 * time.Microsecond, "SET LOCAL lock_timeout = '2ms'"},
	}
	for _, tt := range tests {
		if got := lockTimeoutStmt(tt.in); got != tt.want {
			t.Errorf("lockTimeoutStmt(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
