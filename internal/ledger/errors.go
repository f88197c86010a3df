package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type Shortage struct {
	ItemName  string  `json:"item"`
	Available float64 `json:"available"`
	Requested float64 `json:"requested"`
}

// InsufficientStockError: çıkış stoğu aşıyor ya da bağlı iade kalan miktarı aşıyor.
// Tüm sorunlu kalemler tek seferde raporlanır.
type InsufficientStockError struct {
	Shortages []Shortage
	Return    bool // bağlı iade: Available kalan iade edilebilir miktardır
}

func (e *InsufficientStockError) Error() string {
	prefix := "insufficient stock for "
	if e.Return {
		prefix = "return exceeds remaining quantity for "
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s%s (available %s, requested %s)",
			prefix, s.ItemName, formatQty(s.Available), formatQty(s.Requested)))
	}
	return strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConflictError: iş kuralı çakışması. Retryable ise aynı istek tekrar denenebilir
// (kilit zaman aşımı, serileştirme hatası).
type ConflictError struct {
	Message   string
	Retryable bool
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsRetryable kilit/serileştirme kaynaklı çakışmaları ayırt eder.
func IsRetryable(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce) && ce.Retryable
}

// NotFound store katmanının kayıt bulunamadı hatası
func NotFound(what string, id uint) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
