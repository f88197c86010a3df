package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger-backend/internal/ledger"
	"ledger-backend/internal/models"
)

type gormTx struct {
	db      *gorm.DB
	d       ledger.Domain
	locking bool // yazma transaction'ı: okunan kayıtlar FOR UPDATE ile kilitlenir
}

func (t *gormTx) table(tb ledger.Table) *gorm.DB {
	return t.db.Table(t.d.Table(tb))
}

func (t *gormTx) lock(q *gorm.DB) *gorm.DB {
	if !t.locking {
		return q
	}
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) Stock() ledger.StockTable     { return stockTable{t} }
func (t *gormTx) Catalog() ledger.CatalogTable { return catalogTable{t} }

func (t *gormTx) Purchases() ledger.Journal[models.Purchase] {
	return &journal[models.Purchase]{t: t, tb: ledger.TablePurchases, what: "purchase", order: "invoice_date DESC, id DESC"}
}

func (t *gormTx) Issues() ledger.IssueJournal {
	return issueJournal{&journal[models.Issue]{t: t, tb: ledger.TableIssues, what: "issue", order: "issue_date DESC, id DESC"}}
}

func (t *gormTx) Returns() ledger.Journal[models.Return] {
	return &journal[models.Return]{t: t, tb: ledger.TableReturns, what: "return", order: "return_date DESC, id DESC"}
}

func (t *gormTx) WriteAudit(ctx context.Context, entry models.AuditLog) error {
	return t.db.WithContext(ctx).Create(&entry).Error
}

// ---------- stok ----------

type stockTable struct{ t *gormTx }

func (s stockTable) Lock(ctx context.Context, keys []string) (map[string]*models.StockEntry, error) {
	out := make(map[string]*models.StockEntry, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []models.StockEntry
	q := s.t.table(ledger.TableStock).WithContext(ctx).
		Where("item_key IN ?", keys).
		Order("item_key")
	if err := s.t.lock(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ItemKey] = &rows[i]
	}
	return out, nil
}

// ApplyDelta satırı yoksa açar, varsa miktarı tek ifadede günceller.
func (s stockTable) ApplyDelta(ctx context.Context, d ledger.StockDelta) (*models.StockEntry, error) {
	name := s.t.d.Table(ledger.TableStock)
	stmt := fmt.Sprintf(`INSERT INTO %[1]s (item_name, item_key, unit, quantity, per_unit_weight, total_weight, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, now(), now())
ON CONFLICT (item_key) DO UPDATE SET
	quantity = %[1]s.quantity + EXCLUDED.quantity,
	total_weight = %[1]s.total_weight + EXCLUDED.total_weight,
	updated_at = now()
RETURNING id, item_name, item_key, unit, quantity, per_unit_weight, total_weight, created_at, updated_at`, name)

	var entry models.StockEntry
	err := s.t.db.WithContext(ctx).
		Raw(stmt, d.Name, d.Key, d.Unit, d.Quantity, d.PerUnitWeight, d.Weight).
		Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s stockTable) filtered(ctx context.Context, search string) *gorm.DB {
	q := s.t.table(ledger.TableStock).WithContext(ctx)
	if key := ledger.ItemKey(search); key != "" {
		q = q.Where("item_key LIKE ? ESCAPE '\\'", "%"+escapeLike(key)+"%")
	}
	return q
}

func (s stockTable) List(ctx context.Context, q ledger.StockQuery) ([]models.StockEntry, int64, error) {
	var total int64
	if err := s.filtered(ctx, q.Search).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []models.StockEntry{}
	err := s.filtered(ctx, q.Search).
		Order("item_key").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s stockTable) All(ctx context.Context) ([]models.StockEntry, error) {
	rows := []models.StockEntry{}
	err := s.t.table(ledger.TableStock).WithContext(ctx).Order("item_key").Find(&rows).Error
	return rows, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// ---------- katalog ----------

type catalogTable struct{ t *gormTx }

func (c catalogTable) Get(ctx context.Context, key string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := c.t.table(ledger.TableItems).WithContext(ctx).Where("item_key = ?", key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("item %s: %w", key, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c catalogTable) List(ctx context.Context) ([]models.CatalogItem, error) {
	rows := []models.CatalogItem{}
	err := c.t.table(ledger.TableItems).WithContext(ctx).Order("item_key").Find(&rows).Error
	return rows, err
}

func (c catalogTable) Create(ctx context.Context, item *models.CatalogItem) error {
	err := c.t.table(ledger.TableItems).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "item_key"}}, DoNothing: true}).
		Create(item).Error
	if err != nil {
		return err
	}
	if item.ID == 0 {
		return &ledger.ConflictError{Message: "item already exists"}
	}
	return nil
}

// ---------- hareket kayıtları ----------

type journal[T any] struct {
	t     *gormTx
	tb    ledger.Table
	what  string
	order string
}

func (j *journal[T]) query(ctx context.Context) *gorm.DB {
	return j.t.table(j.tb).WithContext(ctx)
}

func (j *journal[T]) Create(ctx context.Context, rec *T) error {
	return j.query(ctx).Create(rec).Error
}

func (j *journal[T]) Get(ctx context.Context, id uint) (*T, error) {
	var rec T
	err := j.t.lock(j.query(ctx)).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.NotFound(j.what, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (j *journal[T]) Save(ctx context.Context, rec *T) error {
	return j.query(ctx).Save(rec).Error
}

func (j *journal[T]) Delete(ctx context.Context, id uint) error {
	res := j.query(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.NotFound(j.what, id)
	}
	return nil
}

func (j *journal[T]) List(ctx context.Context) ([]T, error) {
	rows := []T{}
	err := j.query(ctx).Order(j.order).Find(&rows).Error
	return rows, err
}

type issueJournal struct{ *journal[models.Issue] }

// ForCounterparty jsonb içerme (@>) ile kalemi taşıyan çıkışları bulur.
func (j issueJournal) ForCounterparty(ctx context.Context, counterpartyKey, itemKey string) ([]models.Issue, error) {
	filter, err := json.Marshal([]map[string]string{{"itemKey": itemKey}})
	if err != nil {
		return nil, err
	}
	rows := []models.Issue{}
	q := j.query(ctx).
		Where("counterparty_key = ? AND items @> ?::jsonb", counterpartyKey, string(filter)).
		Order(j.order)
	if err := j.t.lock(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
