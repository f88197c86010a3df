package models

import "time"

// LineItem: Alış/çıkış/iade kayıtlarının satırı. Kayıt üzerinde jsonb dizi olarak tutulur.
type LineItem struct {
	ItemName      string  `json:"itemName"`
	ItemKey       string  `json:"itemKey"`
	Unit          string  `json:"unit"`
	Quantity      float64 `json:"quantity"`
	Rate          float64 `json:"rate,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	PerUnitWeight float64 `json:"perUnitWeight,omitempty"`
	Weight        float64 `json:"weight,omitempty"` // hareketin stoğa yazdığı ağırlık

	// Çıkış satırı: bağlı iadelerle geri gelen miktar
	ReturnedQuantity float64 `json:"returnedQuantity,omitempty"`
	ReturnedWeight   float64 `json:"returnedWeight,omitempty"`

	// İade satırı: bağlandığı çıkış kaydı
	IssueID uint `json:"issueId,omitempty"`
}

// Remaining: çıkış satırında henüz iade edilmemiş miktar
func (l LineItem) Remaining() float64 {
	return l.Quantity - l.ReturnedQuantity
}

func CloneLines(in []LineItem) []LineItem {
	if in == nil {
		return nil
	}
	out := make([]LineItem, len(in))
	copy(out, in)
	return out
}

// Purchase: Tedarikçiden alış faturası
type Purchase struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PartyName     string     `gorm:"size:150;not null" json:"partyName"`
	InvoiceNumber string     `gorm:"size:60;not null" json:"invoiceNumber"`
	InvoiceDate   time.Time  `gorm:"not null" json:"invoiceDate"`
	Items         []LineItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	Subtotal      float64    `gorm:"not null;default:0" json:"subtotal"`
	GSTPercent    float64    `gorm:"not null;default:0" json:"gstPercent"`
	GSTAmount     float64    `gorm:"not null;default:0" json:"gstAmount"`
	Total         float64    `gorm:"not null;default:0" json:"total"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (p *Purchase) Clone() *Purchase {
	c := *p
	c.Items = CloneLines(p.Items)
	return &c
}

// Issue: Sahaya/kişiye malzeme çıkışı
type Issue struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	IssuedTo        string     `gorm:"size:150;not null" json:"issuedTo"`
	CounterpartyKey string     `gorm:"size:150;not null;index" json:"-"`
	IssueDate       time.Time  `gorm:"not null" json:"issueDate"`
	Location        string     `gorm:"size:150" json:"location"`
	WONumber        string     `gorm:"size:60" json:"woNumber,omitempty"`
	SupervisorName  string     `gorm:"size:150" json:"supervisorName,omitempty"`
	TSLName         string     `gorm:"size:150" json:"tslName,omitempty"`
	Items           []LineItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (i *Issue) Clone() *Issue {
	c := *i
	c.Items = CloneLines(i.Items)
	return &c
}

// HasReturns: herhangi bir satıra iade bağlanmış mı
func (i *Issue) HasReturns() bool {
	for _, l := range i.Items {
		if l.ReturnedQuantity > 0 {
			return true
		}
	}
	return false
}

// Return: Sahadan depoya iade
type Return struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PersonName      string     `gorm:"size:150;not null" json:"personName"`
	CounterpartyKey string     `gorm:"size:150;not null;index" json:"-"`
	ReturnDate      time.Time  `gorm:"not null" json:"returnDate"`
	Location        string     `gorm:"size:150" json:"location"`
	WONumber        string     `gorm:"size:60" json:"woNumber,omitempty"`
	SupervisorName  string     `gorm:"size:150" json:"supervisorName,omitempty"`
	TSLName         string     `gorm:"size:150" json:"tslName,omitempty"`
	IssueID         *uint      `json:"issueId,omitempty"` // istekte açıkça verilen çıkış kaydı
	Items           []LineItem `gorm:"type:jsonb;serializer:json;not null" json:"items"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (r *Return) Clone() *Return {
	c := *r
	c.Items = CloneLines(r.Items)
	if r.IssueID != nil {
		id := *r.IssueID
		c.IssueID = &id
	}
	return &c
}
