package models

import "time"

// Vendor: Alış faturalarındaki tedarikçi kartı
type Vendor struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PartyName     string    `gorm:"size:150;not null;uniqueIndex" json:"partyName"`
	Address       string    `gorm:"size:255;not null" json:"address"`
	GSTNumber     string    `gorm:"size:30;not null" json:"gstNumber"`
	ContactNumber string    `gorm:"size:30;not null" json:"contactNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
