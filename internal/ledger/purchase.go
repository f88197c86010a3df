package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

type PurchaseInput struct {
	PartyName     string
	InvoiceNumber string
	InvoiceDate   time.Time
	GSTPercent    float64
	// nil: güncellemede satırlara dokunulmaz
	Items []LineInput
}

func (in PurchaseInput) validate() error {
	switch {
	case strings.TrimSpace(in.PartyName) == "":
		return invalid("partyName", "party name is required")
	case strings.TrimSpace(in.InvoiceNumber) == "":
		return invalid("invoiceNumber", "invoice number is required")
	case in.InvoiceDate.IsZero():
		return invalid("invoiceDate", "invoice date is required")
	case !finiteNonNegative(in.GSTPercent) || in.GSTPercent > 100:
		return invalid("gstPercent", "gst percent must be between 0 and 100")
	}
	return nil
}

func (in PurchaseInput) applyHeader(p *models.Purchase) {
	p.PartyName = strings.TrimSpace(in.PartyName)
	p.InvoiceNumber = strings.TrimSpace(in.InvoiceNumber)
	p.InvoiceDate = in.InvoiceDate
	p.GSTPercent = in.GSTPercent
}

// CreatePurchase alışı kaydeder; her satır stoğa upsert ile eklenir.
func (s *Service) CreatePurchase(ctx context.Context, d Domain, actor Actor, in PurchaseInput) (*models.Purchase, error) {
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

	var created *models.Purchase
	err = s.mutate(ctx, d, "purchase", "create", func(tx Tx) error {
		stock, err := tx.Stock().Lock(ctx, lineKeys(lines))
		if err != nil {
			return err
		}
		if err := resolveLines(ctx, tx, d, lines, stock, true); err != nil {
			return err
		}

		rec := &models.Purchase{Items: lines}
		in.applyHeader(rec)
		pricePurchase(rec)

		plan := newStockPlan()
		plan.add(lines...)
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		if err := tx.Purchases().Create(ctx, rec); err != nil {
			return err
		}
		created = rec
		return writeAudit(ctx, tx, d, actor, "purchase", rec.ID, models.AuditActionCreate,
			fmt.Sprintf("Purchase %s from %s", rec.InvoiceNumber, rec.PartyName), nil, rec)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdatePurchase eski satırların etkisini geri alır, yenilerini uygular.
// Items nil ise sadece başlık alanları değişir.
func (s *Service) UpdatePurchase(ctx context.Context, d Domain, actor Actor, id uint, in PurchaseInput) (*models.Purchase, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var lines []models.LineItem
	if in.Items != nil {
		var err error
		if lines, err = normalizeLines(d, in.Items); err != nil {
			return nil, err
		}
	}

	var updated *models.Purchase
	err := s.mutate(ctx, d, "purchase", "update", func(tx Tx) error {
		rec, err := tx.Purchases().Get(ctx, id)
		if err != nil {
			return err
		}
		before := rec.Clone()

		if in.Items != nil {
			stock, err := tx.Stock().Lock(ctx, lineKeys(rec.Items, lines))
			if err != nil {
				return err
			}
			if err := resolveLines(ctx, tx, d, lines, stock, true); err != nil {
				return err
			}

			plan := newStockPlan()
			plan.remove(rec.Items...)
			plan.add(lines...)
			if sh := plan.shortages(stock); len(sh) > 0 {
				return conflict("cannot update purchase: stock already issued for %s", shortageNames(sh))
			}
			if err := plan.apply(ctx, tx); err != nil {
				return err
			}
			rec.Items = lines
		}

		in.applyHeader(rec)
		pricePurchase(rec)
		if err := tx.Purchases().Save(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return writeAudit(ctx, tx, d, actor, "purchase", rec.ID, models.AuditActionUpdate,
			fmt.Sprintf("Purchase %s updated", rec.InvoiceNumber), before, rec)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePurchase, alınan miktar stokta hâlâ duruyorsa kaydı siler ve stoğu düşer.
func (s *Service) DeletePurchase(ctx context.Context, d Domain, actor Actor, id uint) error {
	return s.mutate(ctx, d, "purchase", "delete", func(tx Tx) error {
		rec, err := tx.Purchases().Get(ctx, id)
		if err != nil {
			return err
		}
		stock, err := tx.Stock().Lock(ctx, lineKeys(rec.Items))
		if err != nil {
			return err
		}

		plan := newStockPlan()
		plan.remove(rec.Items...)
		if sh := plan.shortages(stock); len(sh) > 0 {
			return conflict("cannot delete purchase: stock already issued for %s", shortageNames(sh))
		}
		if err := plan.apply(ctx, tx); err != nil {
			return err
		}
		if err := tx.Purchases().Delete(ctx, id); err != nil {
			return err
		}
		return writeAudit(ctx, tx, d, actor, "purchase", id, models.AuditActionDelete,
			fmt.Sprintf("Purchase %s deleted", rec.InvoiceNumber), rec, nil)
	})
}

func (s *Service) GetPurchase(ctx context.Context, d Domain, id uint) (*models.Purchase, error) {
	var rec *models.Purchase
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		rec, err = tx.Purchases().Get(ctx, id)
		return err
	})
	return rec, err
}

func (s *Service) ListPurchases(ctx context.Context, d Domain) ([]models.Purchase, error) {
	var out []models.Purchase
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		out, err = tx.Purchases().List(ctx)
		return err
	})
	return out, err
}

// pricePurchase satır tutarlarını ve fatura toplamlarını kuruş hassasiyetinde hesaplar.
// Fiyat verilen satırda tutar = fiyat x miktar; fiyatsız satırda gelen tutar korunur.
func pricePurchase(p *models.Purchase) {
	subtotal := decimal.Zero
	for i := range p.Items {
		l := &p.Items[i]
		amount := decimal.NewFromFloat(l.Amount)
		if l.Rate > 0 {
			amount = decimal.NewFromFloat(l.Rate).Mul(decimal.NewFromFloat(l.Quantity))
		}
		amount = amount.Round(2)
		l.Amount = amount.InexactFloat64()
		subtotal = subtotal.Add(amount)
	}

	gst := subtotal.Mul(decimal.NewFromFloat(p.GSTPercent)).Div(decimal.NewFromInt(100)).Round(2)
	p.Subtotal = subtotal.InexactFloat64()
	p.GSTAmount = gst.InexactFloat64()
	p.Total = subtotal.Add(gst).InexactFloat64()
}
