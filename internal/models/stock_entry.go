package models

import "time"

// StockEntry: Bir alandaki (ppe, mechanical, ...) tek kalemin anlık stoğu.
// Her alanın kendi tablosu vardır, satır hiç silinmez (sıfırda kalır).
type StockEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ItemName      string    `gorm:"size:150;not null" json:"itemName"`         // ilk kaydı açan hareketteki yazım
	ItemKey       string    `gorm:"size:150;not null;uniqueIndex" json:"-"`     // lower(trim(itemName))
	Unit          string    `gorm:"size:20;not null" json:"unit"`
	Quantity      float64   `gorm:"not null;default:0" json:"quantity"`
	PerUnitWeight float64   `gorm:"not null;default:0" json:"perUnitWeight"` // sadece scaffolding
	TotalWeight   float64   `gorm:"not null;default:0" json:"totalWeight"`   // sadece scaffolding
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
