package models

import "time"

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleStorekeeper UserRole = "storekeeper"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`

	// Şifre sıfırlama kodu (bcrypt hash) ve son geçerlilik zamanı
	ResetOTPHash      string     `gorm:"size:255"`
	ResetOTPExpiresAt *time.Time
	ResetOTPAttempts  int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
