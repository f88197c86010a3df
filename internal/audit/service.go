package audit

import (
	"encoding/json"
	"fmt"

	"ledger-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	Domain      string
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// NewEntry, kaydedilecek audit satırını hazırlar. Ledger işlemleri bunu kendi
// transaction'ı içinde yazar.
func NewEntry(opts LogOptions) models.AuditLog {
	return models.AuditLog{
		Domain:      opts.Domain,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}
}

// WriteLog, ledger dışındaki kayıtlar (tedarikçi, iskele talebi) için log yazar.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	entry := NewEntry(opts)
	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

// PostgreSQL jsonb için boş string yerine "null" kullanılır
func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
