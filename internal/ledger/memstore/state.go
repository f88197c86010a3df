package memstore

import (
	"time"

	"ledger-backend/internal/models"
)

type state struct {
	nextID    uint
	stock     map[string]*models.StockEntry
	items     map[string]*models.CatalogItem
	purchases map[uint]*models.Purchase
	issues    map[uint]*models.Issue
	returns   map[uint]*models.Return
	audit     []models.AuditLog
}

func newState() *state {
	return &state{
		stock:     make(map[string]*models.StockEntry),
		items:     make(map[string]*models.CatalogItem),
		purchases: make(map[uint]*models.Purchase),
		issues:    make(map[uint]*models.Issue),
		returns:   make(map[uint]*models.Return),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextID:    s.nextID,
		stock:     make(map[string]*models.StockEntry, len(s.stock)),
		items:     make(map[string]*models.CatalogItem, len(s.items)),
		purchases: cloneRows(s.purchases, (*models.Purchase).Clone),
		issues:    cloneRows(s.issues, (*models.Issue).Clone),
		returns:   cloneRows(s.returns, (*models.Return).Clone),
		audit:     append([]models.AuditLog(nil), s.audit...),
	}
	for k, v := range s.stock {
		e := *v
		c.stock[k] = &e
	}
	for k, v := range s.items {
		it := *v
		c.items[k] = &it
	}
	return c
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

func cloneRows[T any](rows map[uint]*T, clone func(*T) *T) map[uint]*T {
	out := make(map[uint]*T, len(rows))
	for id, r := range rows {
		out[id] = clone(r)
	}
	return out
}

// meta hareket kayıtlarının ortak alanlarına erişim
type meta[T any] func(rec *T) (id *uint, date time.Time, created, updated *time.Time)

func purchaseMeta(p *models.Purchase) (*uint, time.Time, *time.Time, *time.Time) {
	return &p.ID, p.InvoiceDate, &p.CreatedAt, &p.UpdatedAt
}

func issueMeta(i *models.Issue) (*uint, time.Time, *time.Time, *time.Time) {
	return &i.ID, i.IssueDate, &i.CreatedAt, &i.UpdatedAt
}

func returnMeta(r *models.Return) (*uint, time.Time, *time.Time, *time.Time) {
	return &r.ID, r.ReturnDate, &r.CreatedAt, &r.UpdatedAt
}
