package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"ledger-backend/internal/models"
)

// LineInput istemciden gelen ham satır
type LineInput struct {
	ItemName      string
	Unit          string
	Quantity      float64
	Rate          float64
	Amount        float64
	PerUnitWeight float64
}

// Old alanında birimi çözülemeyen satırların birimi
const unknownUnit = "-"

// normalizeLines ad ve miktar kontrolünü alanın satır politikasına göre yapar.
// Birim ve ağırlık transaction içinde resolveLines ile tamamlanır.
func normalizeLines(d Domain, in []LineInput) ([]models.LineItem, error) {
	out := make([]models.LineItem, 0, len(in))
	for i, l := range in {
		name := strings.TrimSpace(l.ItemName)

		var reason string
		switch {
		case name == "":
			reason = "item name is required"
		case math.IsNaN(l.Quantity) || math.IsInf(l.Quantity, 0) || l.Quantity <= 0:
			reason = "quantity must be a positive number"
		case !finiteNonNegative(l.Rate) || !finiteNonNegative(l.Amount):
			reason = "rate and amount must not be negative"
		case !finiteNonNegative(l.PerUnitWeight):
			reason = "per unit weight must not be negative"
		}
		if reason != "" {
			if d.LinePolicy() == SkipInvalid {
				continue
			}
			return nil, invalid(fmt.Sprintf("items[%d]", i), "%s", reason)
		}

		out = append(out, models.LineItem{
			ItemName:      name,
			ItemKey:       ItemKey(name),
			Unit:          strings.TrimSpace(l.Unit),
			Quantity:      l.Quantity,
			Rate:          l.Rate,
			Amount:        l.Amount,
			PerUnitWeight: l.PerUnitWeight,
		})
	}

	if len(in) > 0 && len(out) == 0 {
		return nil, invalid("items", "no valid line items")
	}
	return out, nil
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// resolveLines birim ve birim ağırlığı mevcut stok satırından, yoksa katalogdan
// tamamlar. requireUnit false ise birimsiz satır bırakılır (çıkışlarda stok
// kontrolü zaten yakalar).
func resolveLines(ctx context.Context, tx Tx, d Domain, lines []models.LineItem, stock map[string]*models.StockEntry, requireUnit bool) error {
	for i := range lines {
		l := &lines[i]
		entry := stock[l.ItemKey]

		var item *models.CatalogItem
		if entry == nil && (l.Unit == "" || (d.TracksWeight() && l.PerUnitWeight == 0)) {
			found, err := tx.Catalog().Get(ctx, l.ItemKey)
			switch {
			case err == nil:
				item = found
			case !errors.Is(err, ErrNotFound):
				return err
			}
		}

		if l.Unit == "" {
			switch {
			case entry != nil:
				l.Unit = entry.Unit
			case item != nil:
				l.Unit = item.Unit
			case d == Old:
				l.Unit = unknownUnit
			case requireUnit:
				return invalid(fmt.Sprintf("items[%d]", i), "unit is required for %s", l.ItemName)
			}
		}

		if !d.TracksWeight() {
			l.PerUnitWeight = 0
			l.Weight = 0
			continue
		}
		switch {
		case entry != nil && entry.PerUnitWeight > 0:
			l.PerUnitWeight = entry.PerUnitWeight
		case l.PerUnitWeight > 0:
		case item != nil:
			l.PerUnitWeight = item.PerUnitWeight
		}
		l.Weight = l.Quantity * l.PerUnitWeight
	}
	return nil
}

func lineKeys(sets ...[]models.LineItem) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, lines := range sets {
		for _, l := range lines {
			if _, ok := seen[l.ItemKey]; ok {
				continue
			}
			seen[l.ItemKey] = struct{}{}
			keys = append(keys, l.ItemKey)
		}
	}
	sort.Strings(keys)
	return keys
}

func requireLines(lines []models.LineItem) error {
	if len(lines) == 0 {
		return invalid("items", "at least one line item is required")
	}
	return nil
}
