package ledger

import (
	"strings"
)

// Domain: malzeme alanı. Her alanın stok, katalog ve hareket tabloları ayrıdır.
type Domain string

const (
	PPE         Domain = "ppe"
	Mechanical  Domain = "mechanical"
	Scaffolding Domain = "scaffolding"
	Old         Domain = "old"
)

var Domains = []Domain{PPE, Mechanical, Scaffolding, Old}

func ParseDomain(s string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case PPE, Mechanical, Scaffolding, Old:
		return d, nil
	}
	return "", &ValidationError{Field: "domain", Message: "unknown domain " + s}
}

// TracksWeight: stok ve hareket satırları ağırlık taşır
func (d Domain) TracksWeight() bool {
	return d == Scaffolding
}

// LinkedReturns: iade satırları bir çıkış satırına bağlanır ve onunla sınırlanır
func (d Domain) LinkedReturns() bool {
	return d == Scaffolding || d == Mechanical
}

// LinePolicy geçersiz satırların nasıl ele alınacağını belirler.
type LinePolicy int

const (
	// RejectInvalid: tek bir geçersiz satır tüm isteği reddeder
	RejectInvalid LinePolicy = iota
	// SkipInvalid: geçersiz satırlar atlanır, geçerli satır kalmazsa istek reddedilir
	SkipInvalid
)

func (d Domain) LinePolicy() LinePolicy {
	if d == Old {
		return SkipInvalid
	}
	return RejectInvalid
}

// Table alanın ilgili tablosunun adını döner (ör: scaffolding_issues).
type Table string

const (
	TableStock     Table = "stock"
	TableItems     Table = "items"
	TablePurchases Table = "purchases"
	TableIssues    Table = "issues"
	TableReturns   Table = "returns"
)

func (d Domain) Table(t Table) string {
	return string(d) + "_" + string(t)
}

// ItemKey stok eşleştirmesinde kullanılan büyük/küçük harf duyarsız anahtar.
func ItemKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
