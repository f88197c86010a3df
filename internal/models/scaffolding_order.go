package models

import "time"

type OrderMaterial struct {
	Material string  `json:"material"`
	Quantity float64 `json:"quantity"`
	Provider string  `json:"provider"`
}

// ScaffoldingOrder: İskele malzeme talebi. Stoğa dokunmaz, sadece kayıt tutar.
type ScaffoldingOrder struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	OrderNo    string          `gorm:"size:40;not null;uniqueIndex" json:"orderNo"`
	Supervisor string          `gorm:"size:150;not null" json:"supervisor"`
	EmployeeID string          `gorm:"size:60;not null" json:"employeeId"`
	IssueDate  time.Time       `gorm:"not null" json:"issueDate"`
	Location   string          `gorm:"size:150;not null" json:"location"`
	Materials  []OrderMaterial `gorm:"type:jsonb;serializer:json;not null" json:"materials"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
