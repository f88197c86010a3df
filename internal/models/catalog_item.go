package models

import "time"

// CatalogItem: Alan bazlı malzeme tanımı. Stok satırı henüz yokken birim ve
// birim ağırlık varsayılanları buradan gelir.
type CatalogItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ItemName      string    `gorm:"size:150;not null" json:"itemName"`
	ItemKey       string    `gorm:"size:150;not null;uniqueIndex" json:"-"`
	Unit          string    `gorm:"size:20;not null" json:"unit"`
	PerUnitWeight float64   `gorm:"not null;default:0" json:"perUnitWeight"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
