package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledger-backend/internal/models"
)

type ReturnInput struct {
	PersonName     string
	ReturnDate     time.Time
	Location       string
	WONumber       string
	SupervisorName string
	TSLName        string
	// Bağlı iade alanlarında tüm satırları bu çıkışa bağlar; 0 ise kişi+kalem
	// için en yeni açık çıkış bulunur.
	IssueID uint
	// nil: güncellemede satırlara dokunulmaz
	Items []LineInput
}

func (in ReturnInput) validate() error {
	switch {
	case strings.TrimSpace(in.PersonName) == "":
		return invalid("personName", "person name is required")
	case in.ReturnDate.IsZero():
		return invalid("returnDate", "return date is required")
	}
	return nil
}

func (in ReturnInput) applyHeader(r *models.Return) {
	r.PersonName = strings.TrimSpace(in.PersonName)
	r.CounterpartyKey = ItemKey(in.PersonName)
	r.ReturnDate = in.ReturnDate
	r.Location = strings.TrimSpace(in.Location)
	r.WONumber = strings.TrimSpace(in.WONumber)
	r.SupervisorName = strings.TrimSpace(in.SupervisorName)
	r.TSLName = strings.TrimSpace(in.TSLName)
}

func (s *Service) CreateReturn(ctx context.Context, d Domain, actor Actor, in ReturnInput) (*models.Return, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lines, err := normalizeLines(d, in.Items)
	if err != nil {
		return nil, err
	}
	if err := requireLines(lines); err != nil {
		return nil, err
	}

	var created *models.Return
	err = s.mutate(ctx, d, "return", "create", func(tx Tx) error {
		rec := &models.Return{}
		in.applyHeader(rec)

		// Önce çıkış kayıtları, sonra stok satırları kilitlenir
		var links *issueLinks
		if d.LinkedReturns() {
			links = newIssueLinks(tx, rec.CounterpartyKey, in.IssueID)
			if err := links.bind(ctx, lines); err != nil {
				return err
			}
		}

		stock, err := tx.Stock().Lock(ctx, lineKeys(lines))
		if err != nil {
			return err
		}
		if err := resolveLines(ctx, tx, d, lines, stock, true); err != nil {
			return err
		}

		plan := newStockPlan()
		plan.add(lines...)
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		if links != nil {
			if err := links.save(ctx); err != nil {
				return err
			}
			rec.IssueID = links.explicitID()
		}

		rec.Items = lines
		if err := tx.Returns().Create(ctx, rec); err != nil {
			return err
		}
		created = rec
		return writeAudit(ctx, tx, d, actor, "return", rec.ID, models.AuditActionCreate,
			fmt.Sprintf("Return from %s", rec.PersonName), nil, rec)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateReturn eski iadenin stok ve çıkış etkisini geri alır, yenisini uygular.
func (s *Service) UpdateReturn(ctx context.Context, d Domain, actor Actor, id uint, in ReturnInput) (*models.Return, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var lines []models.LineItem
	if in.Items != nil {
		var err error
		if lines, err = normalizeLines(d, in.Items); err != nil {
			return nil, err
		}
		if err := requireLines(lines); err != nil {
			return nil, err
		}
	}

	var updated *models.Return
	err := s.mutate(ctx, d, "return", "update", func(tx Tx) error {
		rec, err := tx.Returns().Get(ctx, id)
		if err != nil {
			return err
		}
		before := rec.Clone()
		in.applyHeader(rec)

		// Satırlar verilmeden kişi ya da çıkış değişirse mevcut satırlar yeniden bağlanır
		if in.Items == nil && d.LinkedReturns() && needsRebind(before, rec, in.IssueID) {
			lines := models.CloneLines(before.Items)
			links := newIssueLinks(tx, rec.CounterpartyKey, in.IssueID)
			if err := links.release(ctx, before.Items); err != nil {
				return err
			}
			if err := links.bind(ctx, lines); err != nil {
				return err
			}
			if err := links.save(ctx); err != nil {
				return err
			}
			rec.IssueID = links.explicitID()
			rec.Items = lines
		}

		if in.Items != nil {
			var links *issueLinks
			if d.LinkedReturns() {
				links = newIssueLinks(tx, rec.CounterpartyKey, in.IssueID)
				if err := links.release(ctx, before.Items); err != nil {
					return err
				}
				if err := links.bind(ctx, lines); err != nil {
					return err
				}
			}

			stock, err := tx.Stock().Lock(ctx, lineKeys(before.Items, lines))
			if err != nil {
				return err
			}
			if err := resolveLines(ctx, tx, d, lines, stock, true); err != nil {
				return err
			}

			plan := newStockPlan()
			plan.remove(before.Items...)
			plan.add(lines...)
			if sh := plan.shortages(stock); len(sh) > 0 {
				return conflict("cannot update return: stock already issued for %s", shortageNames(sh))
			}
			if err := plan.apply(ctx, tx); err != nil {
				return err
			}
			if links != nil {
				if err := links.save(ctx); err != nil {
					return err
				}
				rec.IssueID = links.explicitID()
			}
			rec.Items = lines
		}

		if err := tx.Returns().Save(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return writeAudit(ctx, tx, d, actor, "return", rec.ID, models.AuditActionUpdate,
			fmt.Sprintf("Return from %s updated", rec.PersonName), before, rec)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReturn iade edilen miktarı stoktan düşer ve bağlı çıkışın iade
// sayaçlarını geri alır.
func (s *Service) DeleteReturn(ctx context.Context, d Domain, actor Actor, id uint) error {
	return s.mutate(ctx, d, "return", "delete", func(tx Tx) error {
		rec, err := tx.Returns().Get(ctx, id)
		if err != nil {
			return err
		}

		var links *issueLinks
		if d.LinkedReturns() {
			links = newIssueLinks(tx, rec.CounterpartyKey, 0)
			if err := links.release(ctx, rec.Items); err != nil {
				return err
			}
		}

		stock, err := tx.Stock().Lock(ctx, lineKeys(rec.Items))
		if err != nil {
			return err
		}
		plan := newStockPlan()
		plan.remove(rec.Items...)
		if sh := plan.shortages(stock); len(sh) > 0 {
			return conflict("cannot delete return: stock already issued for %s", shortageNames(sh))
		}
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		if links != nil {
			if err := links.save(ctx); err != nil {
				return err
			}
		}
		if err := tx.Returns().Delete(ctx, id); err != nil {
			return err
		}
		return writeAudit(ctx, tx, d, actor, "return", id, models.AuditActionDelete,
			fmt.Sprintf("Return from %s deleted", rec.PersonName), rec, nil)
	})
}

func (s *Service) GetReturn(ctx context.Context, d Domain, id uint) (*models.Return, error) {
	var rec *models.Return
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		rec, err = tx.Returns().Get(ctx, id)
		return err
	})
	return rec, err
}

func (s *Service) ListReturns(ctx context.Context, d Domain) ([]models.Return, error) {
	var out []models.Return
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		out, err = tx.Returns().List(ctx)
		return err
	})
	return out, err
}

func needsRebind(before, after *models.Return, issueID uint) bool {
	if before.CounterpartyKey != after.CounterpartyKey {
		return true
	}
	return issueID != 0 && (before.IssueID == nil || *before.IssueID != issueID)
}

// issueLinks bir işlem boyunca dokunulan çıkış kayıtlarını tutar. Aynı çıkışa
// bağlanan birden fazla satır güncel kalan miktarı görür.
type issueLinks struct {
	tx       Tx
	person   string
	explicit uint

	issues     map[uint]*models.Issue
	candidates map[string][]uint
	dirty      []uint
}

func newIssueLinks(tx Tx, personKey string, explicit uint) *issueLinks {
	return &issueLinks{
		tx:         tx,
		person:     personKey,
		explicit:   explicit,
		issues:     make(map[uint]*models.Issue),
		candidates: make(map[string][]uint),
	}
}

func (l *issueLinks) explicitID() *uint {
	if l.explicit == 0 {
		return nil
	}
	id := l.explicit
	return &id
}

func (l *issueLinks) load(ctx context.Context, id uint) (*models.Issue, error) {
	if is, ok := l.issues[id]; ok {
		return is, nil
	}
	is, err := l.tx.Issues().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.issues[id] = is
	return is, nil
}

func (l *issueLinks) touch(id uint) {
	for _, d := range l.dirty {
		if d == id {
			return
		}
	}
	l.dirty = append(l.dirty, id)
}

// pick satırın bağlanacağı çıkışı seçer: açık id verilmişse o, değilse kalan
// miktarı olan en yeni çıkış. Hiç açık çıkış yoksa en yenisi döner (kalan 0).
func (l *issueLinks) pick(ctx context.Context, itemKey string) (*models.Issue, error) {
	if l.explicit != 0 {
		is, err := l.load(ctx, l.explicit)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("issueId", "issue %d not found", l.explicit)
			}
			return nil, err
		}
		if is.CounterpartyKey != l.person {
			return nil, invalid("issueId", "issue %d was not issued to this person", l.explicit)
		}
		return is, nil
	}

	ids, ok := l.candidates[itemKey]
	if !ok {
		found, err := l.tx.Issues().ForCounterparty(ctx, l.person, itemKey)
		if err != nil {
			return nil, err
		}
		for i := range found {
			if _, cached := l.issues[found[i].ID]; !cached {
				l.issues[found[i].ID] = &found[i]
			}
			ids = append(ids, found[i].ID)
		}
		l.candidates[itemKey] = ids
	}

	for _, id := range ids {
		if remainingFor(l.issues[id], itemKey) > epsilon {
			return l.issues[id], nil
		}
	}
	if len(ids) > 0 {
		return l.issues[ids[0]], nil
	}
	return nil, nil
}

// bind her satırı bir çıkışa bağlar ve çıkışın iade miktarını artırır.
// Kalanı aşan satırlar toplanıp tek hata olarak döner.
func (l *issueLinks) bind(ctx context.Context, lines []models.LineItem) error {
	var short []Shortage
	for i := range lines {
		line := &lines[i]
		is, err := l.pick(ctx, line.ItemKey)
		if err != nil {
			return err
		}
		if is == nil {
			short = append(short, Shortage{ItemName: line.ItemName, Requested: line.Quantity})
			continue
		}
		if !hasItem(is, line.ItemKey) {
			return invalid("items", "%s is not on issue %d", line.ItemName, is.ID)
		}
		remaining := remainingFor(is, line.ItemKey)
		if line.Quantity > remaining+epsilon {
			short = append(short, Shortage{ItemName: line.ItemName, Available: remaining, Requested: line.Quantity})
			continue
		}
		consume(is, line.ItemKey, line.Quantity)
		line.IssueID = is.ID
		l.touch(is.ID)
	}
	if len(short) > 0 {
		return &InsufficientStockError{Shortages: short, Return: true}
	}
	return nil
}

// release silinen/düzenlenen iade satırlarını bağlı çıkışlardan geri alır.
func (l *issueLinks) release(ctx context.Context, lines []models.LineItem) error {
	for _, line := range lines {
		if line.IssueID == 0 {
			continue
		}
		is, err := l.load(ctx, line.IssueID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		unconsume(is, line.ItemKey, line.Quantity)
		l.touch(is.ID)
	}
	return nil
}

func (l *issueLinks) save(ctx context.Context) error {
	for _, id := range l.dirty {
		if err := l.tx.Issues().Save(ctx, l.issues[id]); err != nil {
			return err
		}
	}
	return nil
}

func hasItem(is *models.Issue, key string) bool {
	for _, it := range is.Items {
		if it.ItemKey == key {
			return true
		}
	}
	return false
}

func remainingFor(is *models.Issue, key string) float64 {
	var rem float64
	for _, it := range is.Items {
		if it.ItemKey == key {
			rem += it.Remaining()
		}
	}
	return rem
}

// consume iade miktarını kalanı olan satırlara sırayla yazar. Her satırın
// iade ağırlığı kendi birim ağırlığıyla hesaplanır.
func consume(is *models.Issue, key string, qty float64) {
	for i := range is.Items {
		it := &is.Items[i]
		if it.ItemKey != key || qty <= epsilon {
			continue
		}
		take := min(it.Remaining(), qty)
		if take <= 0 {
			continue
		}
		it.ReturnedQuantity += take
		it.ReturnedWeight = returnedWeight(*it)
		qty -= take
	}
}

// unconsume consume'un tersi; sondaki satırdan başlayarak geri alır.
func unconsume(is *models.Issue, key string, qty float64) {
	for i := len(is.Items) - 1; i >= 0; i-- {
		it := &is.Items[i]
		if it.ItemKey != key || qty <= epsilon || it.ReturnedQuantity <= 0 {
			continue
		}
		take := min(it.ReturnedQuantity, qty)
		it.ReturnedQuantity -= take
		it.ReturnedWeight = returnedWeight(*it)
		qty -= take
	}
}

// returnedWeight satırın iade edilen miktarına düşen ağırlık; satırın çıkış
// ağırlığını aşmaz.
func returnedWeight(it models.LineItem) float64 {
	if it.ReturnedQuantity <= epsilon {
		return 0
	}
	w := it.ReturnedQuantity * it.PerUnitWeight
	if it.PerUnitWeight == 0 && it.Quantity > 0 {
		w = it.Weight * it.ReturnedQuantity / it.Quantity
	}
	if it.Weight > 0 {
		w = min(w, it.Weight)
	}
	return w
}
