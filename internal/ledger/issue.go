package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ledger-backend/internal/models"
)

type IssueInput struct {
	IssuedTo       string
	IssueDate      time.Time
	Location       string
	WONumber       string
	SupervisorName string
	TSLName        string
	// nil: güncellemede satırlara dokunulmaz
	Items []LineInput
}

func (in IssueInput) validate() error {
	switch {
	case strings.TrimSpace(in.IssuedTo) == "":
		return invalid("issuedTo", "issued to is required")
	case in.IssueDate.IsZero():
		return invalid("issueDate", "issue date is required")
	}
	return nil
}

func (in IssueInput) applyHeader(i *models.Issue) {
	i.IssuedTo = strings.TrimSpace(in.IssuedTo)
	i.CounterpartyKey = ItemKey(in.IssuedTo)
	i.IssueDate = in.IssueDate
	i.Location = strings.TrimSpace(in.Location)
	i.WONumber = strings.TrimSpace(in.WONumber)
	i.SupervisorName = strings.TrimSpace(in.SupervisorName)
	i.TSLName = strings.TrimSpace(in.TSLName)
}

// CreateIssue tüm satırları stoğa karşı birlikte kontrol eder; tek bir eksik
// kalem bile varsa hiçbir değişiklik yapılmaz.
func (s *Service) CreateIssue(ctx context.Context, d Domain, actor Actor, in IssueInput) (*models.Issue, error) {
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

	var created *models.Issue
	err = s.mutate(ctx, d, "issue", "create", func(tx Tx) error {
		stock, err := tx.Stock().Lock(ctx, lineKeys(lines))
		if err != nil {
			return err
		}
		if err := resolveLines(ctx, tx, d, lines, stock, false); err != nil {
			return err
		}

		plan := newStockPlan()
		plan.remove(lines...)
		if sh := plan.shortages(stock); len(sh) > 0 {
			return &InsufficientStockError{Shortages: sh}
		}

		for i := range lines {
			lines[i].ReturnedQuantity = 0
			lines[i].ReturnedWeight = 0
		}
		rec := &models.Issue{Items: lines}
		in.applyHeader(rec)
		if err := tx.Issues().Create(ctx, rec); err != nil {
			return err
		}
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		created = rec
		return writeAudit(ctx, tx, d, actor, "issue", rec.ID, models.AuditActionCreate,
			fmt.Sprintf("Issued to %s", rec.IssuedTo), nil, rec)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateIssue eski satırları stoğa geri koyar, yenilerini düşer. Bağlı iade
// alanlarında daha önce iade edilmiş miktar yeni satırlara taşınır.
func (s *Service) UpdateIssue(ctx context.Context, d Domain, actor Actor, id uint, in IssueInput) (*models.Issue, error) {
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

	var updated *models.Issue
	err := s.mutate(ctx, d, "issue", "update", func(tx Tx) error {
		rec, err := tx.Issues().Get(ctx, id)
		if err != nil {
			return err
		}
		before := rec.Clone()

		if in.Items != nil {
			if d.LinkedReturns() {
				if err := carryReturned(rec.Items, lines); err != nil {
					return err
				}
			}

			stock, err := tx.Stock().Lock(ctx, lineKeys(rec.Items, lines))
			if err != nil {
				return err
			}
			if err := resolveLines(ctx, tx, d, lines, stock, false); err != nil {
				return err
			}
			for i := range lines {
				lines[i].ReturnedWeight = returnedWeight(lines[i])
			}

			plan := newStockPlan()
			plan.add(rec.Items...)
			plan.remove(lines...)
			if sh := plan.shortages(stock); len(sh) > 0 {
				return &InsufficientStockError{Shortages: sh}
			}
			if err := plan.apply(ctx, tx); err != nil {
				return err
			}
			rec.Items = lines
		}

		in.applyHeader(rec)
		if err := tx.Issues().Save(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return writeAudit(ctx, tx, d, actor, "issue", rec.ID, models.AuditActionUpdate,
			fmt.Sprintf("Issue to %s updated", rec.IssuedTo), before, rec)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteIssue çıkan miktarı stoğa geri koyar. Bağlı iade alanlarında iadesi
// olan çıkış silinemez; önce iadeler silinmelidir.
func (s *Service) DeleteIssue(ctx context.Context, d Domain, actor Actor, id uint) error {
	return s.mutate(ctx, d, "issue", "delete", func(tx Tx) error {
		rec, err := tx.Issues().Get(ctx, id)
		if err != nil {
			return err
		}
		if d.LinkedReturns() && rec.HasReturns() {
			return conflict("issue %d has returns recorded against it, delete the returns first", id)
		}
		if _, err := tx.Stock().Lock(ctx, lineKeys(rec.Items)); err != nil {
			return err
		}

		plan := newStockPlan()
		plan.add(rec.Items...)
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		if err := tx.Issues().Delete(ctx, id); err != nil {
			return err
		}
		return writeAudit(ctx, tx, d, actor, "issue", id, models.AuditActionDelete,
			fmt.Sprintf("Issue to %s deleted", rec.IssuedTo), rec, nil)
	})
}

func (s *Service) GetIssue(ctx context.Context, d Domain, id uint) (*models.Issue, error) {
	var rec *models.Issue
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		rec, err = tx.Issues().Get(ctx, id)
		return err
	})
	return rec, err
}

func (s *Service) ListIssues(ctx context.Context, d Domain) ([]models.Issue, error) {
	var out []models.Issue
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		out, err = tx.Issues().List(ctx)
		return err
	})
	return out, err
}

// carryReturned eski satırlardaki iade edilmiş miktarı aynı kalemin yeni
// satırlarına sırayla dağıtır. Yeni miktar iade edilenin altına inemez.
func carryReturned(old, next []models.LineItem) error {
	type returned struct {
		name string
		qty  float64
	}
	byKey := make(map[string]*returned)
	for _, l := range old {
		if l.ReturnedQuantity <= 0 {
			continue
		}
		r, ok := byKey[l.ItemKey]
		if !ok {
			r = &returned{name: l.ItemName}
			byKey[l.ItemKey] = r
		}
		r.qty += l.ReturnedQuantity
	}

	for i := range next {
		next[i].ReturnedQuantity = 0
		next[i].ReturnedWeight = 0
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		r := byKey[key]
		left := r.qty
		for i := range next {
			if next[i].ItemKey != key || left <= epsilon {
				continue
			}
			take := min(next[i].Quantity, left)
			next[i].ReturnedQuantity = take
			left -= take
		}
		if left > epsilon {
			return conflict("cannot reduce %s below its returned quantity %s", r.name, formatQty(r.qty))
		}
	}
	return nil
}
