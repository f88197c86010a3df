package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ledger-backend/internal/ledger"
	"ledger-backend/internal/models"
)

var errReadOnly = errors.New("memstore: write in read-only transaction")

type tx struct {
	st       *state
	writable bool
	now      func() time.Time
}

func (t *tx) Stock() ledger.StockTable     { return stockTable{t} }
func (t *tx) Catalog() ledger.CatalogTable { return catalogTable{t} }

func (t *tx) Purchases() ledger.Journal[models.Purchase] {
	return &journal[models.Purchase]{t: t, what: "purchase", rows: t.st.purchases, clone: (*models.Purchase).Clone, meta: purchaseMeta}
}

func (t *tx) Issues() ledger.IssueJournal {
	return issueJournal{&journal[models.Issue]{t: t, what: "issue", rows: t.st.issues, clone: (*models.Issue).Clone, meta: issueMeta}}
}

func (t *tx) Returns() ledger.Journal[models.Return] {
	return &journal[models.Return]{t: t, what: "return", rows: t.st.returns, clone: (*models.Return).Clone, meta: returnMeta}
}

func (t *tx) WriteAudit(ctx context.Context, entry models.AuditLog) error {
	if !t.writable {
		return errReadOnly
	}
	entry.ID = t.st.id()
	entry.CreatedAt = t.now()
	t.st.audit = append(t.st.audit, entry)
	return nil
}

type stockTable struct{ t *tx }

func (s stockTable) Lock(ctx context.Context, keys []string) (map[string]*models.StockEntry, error) {
	out := make(map[string]*models.StockEntry, len(keys))
	for _, k := range keys {
		if e, ok := s.t.st.stock[k]; ok {
			c := *e
			out[k] = &c
		}
	}
	return out, nil
}

func (s stockTable) ApplyDelta(ctx context.Context, d ledger.StockDelta) (*models.StockEntry, error) {
	if !s.t.writable {
		return nil, errReadOnly
	}
	now := s.t.now()
	e, ok := s.t.st.stock[d.Key]
	if !ok {
		e = &models.StockEntry{
			ID:            s.t.st.id(),
			ItemName:      d.Name,
			ItemKey:       d.Key,
			Unit:          d.Unit,
			PerUnitWeight: d.PerUnitWeight,
			CreatedAt:     now,
		}
		s.t.st.stock[d.Key] = e
	}
	e.Quantity += d.Quantity
	e.TotalWeight += d.Weight
	e.UpdatedAt = now
	c := *e
	return &c, nil
}

func (s stockTable) All(ctx context.Context) ([]models.StockEntry, error) {
	out := make([]models.StockEntry, 0, len(s.t.st.stock))
	for _, e := range s.t.st.stock {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemKey < out[j].ItemKey })
	return out, nil
}

func (s stockTable) List(ctx context.Context, q ledger.StockQuery) ([]models.StockEntry, int64, error) {
	all, _ := s.All(ctx)
	search := strings.ToLower(q.Search)
	filtered := all[:0]
	for _, e := range all {
		if search == "" || strings.Contains(e.ItemKey, search) {
			filtered = append(filtered, e)
		}
	}
	total := int64(len(filtered))

	start := (q.Page - 1) * q.Limit
	if start >= len(filtered) {
		return []models.StockEntry{}, total, nil
	}
	end := min(start+q.Limit, len(filtered))
	return filtered[start:end], total, nil
}

type catalogTable struct{ t *tx }

func (c catalogTable) Get(ctx context.Context, key string) (*models.CatalogItem, error) {
	it, ok := c.t.st.items[key]
	if !ok {
		return nil, fmt.Errorf("item %q: %w", key, ledger.ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (c catalogTable) List(ctx context.Context) ([]models.CatalogItem, error) {
	out := make([]models.CatalogItem, 0, len(c.t.st.items))
	for _, it := range c.t.st.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemKey < out[j].ItemKey })
	return out, nil
}

func (c catalogTable) Create(ctx context.Context, item *models.CatalogItem) error {
	if !c.t.writable {
		return errReadOnly
	}
	if _, ok := c.t.st.items[item.ItemKey]; ok {
		return &ledger.ConflictError{Message: "item already exists"}
	}
	now := c.t.now()
	item.ID = c.t.st.id()
	item.CreatedAt, item.UpdatedAt = now, now
	cp := *item
	c.t.st.items[item.ItemKey] = &cp
	return nil
}

// journal alış, çıkış ve iade tabloları için ortak bellek içi uygulama
type journal[T any] struct {
	t     *tx
	what  string
	rows  map[uint]*T
	clone func(*T) *T
	meta  meta[T]
}

func (j *journal[T]) Create(ctx context.Context, rec *T) error {
	if !j.t.writable {
		return errReadOnly
	}
	id, _, created, updated := j.meta(rec)
	now := j.t.now()
	*id = j.t.st.id()
	*created, *updated = now, now
	j.rows[*id] = j.clone(rec)
	return nil
}

func (j *journal[T]) Get(ctx context.Context, id uint) (*T, error) {
	rec, ok := j.rows[id]
	if !ok {
		return nil, ledger.NotFound(j.what, id)
	}
	return j.clone(rec), nil
}

func (j *journal[T]) Save(ctx context.Context, rec *T) error {
	if !j.t.writable {
		return errReadOnly
	}
	id, _, _, updated := j.meta(rec)
	if _, ok := j.rows[*id]; !ok {
		return ledger.NotFound(j.what, *id)
	}
	*updated = j.t.now()
	j.rows[*id] = j.clone(rec)
	return nil
}

func (j *journal[T]) Delete(ctx context.Context, id uint) error {
	if !j.t.writable {
		return errReadOnly
	}
	if _, ok := j.rows[id]; !ok {
		return ledger.NotFound(j.what, id)
	}
	delete(j.rows, id)
	return nil
}

func (j *journal[T]) List(ctx context.Context) ([]T, error) {
	recs := make([]*T, 0, len(j.rows))
	for _, r := range j.rows {
		recs = append(recs, r)
	}
	j.sortNewestFirst(recs)

	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, *j.clone(r))
	}
	return out, nil
}

func (j *journal[T]) sortNewestFirst(recs []*T) {
	sort.Slice(recs, func(a, b int) bool {
		ida, da, _, _ := j.meta(recs[a])
		idb, db, _, _ := j.meta(recs[b])
		if !da.Equal(db) {
			return da.After(db)
		}
		return *ida > *idb
	})
}

type issueJournal struct {
	*journal[models.Issue]
}

func (j issueJournal) ForCounterparty(ctx context.Context, counterpartyKey, itemKey string) ([]models.Issue, error) {
	var recs []*models.Issue
	for _, is := range j.rows {
		if is.CounterpartyKey != counterpartyKey {
			continue
		}
		for _, l := range is.Items {
			if l.ItemKey == itemKey {
				recs = append(recs, is)
				break
			}
		}
	}
	j.sortNewestFirst(recs)

	out := make([]models.Issue, 0, len(recs))
	for _, r := range recs {
		out = append(out, *r.Clone())
	}
	return out, nil
}
