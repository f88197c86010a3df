package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledger-backend/internal/models"
)

type ItemInput struct {
	ItemName      string
	Unit          string
	PerUnitWeight float64
}

func (in ItemInput) validate(d Domain) error {
	switch {
	case strings.TrimSpace(in.ItemName) == "":
		return invalid("itemName", "item name is required")
	case strings.TrimSpace(in.Unit) == "":
		return invalid("unit", "unit is required")
	case !finiteNonNegative(in.PerUnitWeight):
		return invalid("perUnitWeight", "per unit weight must not be negative")
	case d.TracksWeight() && in.PerUnitWeight <= 0:
		return invalid("perUnitWeight", "per unit weight is required")
	}
	return nil
}

func (in ItemInput) model(d Domain) *models.CatalogItem {
	item := &models.CatalogItem{
		ItemName: strings.TrimSpace(in.ItemName),
		ItemKey:  ItemKey(in.ItemName),
		Unit:     strings.TrimSpace(in.Unit),
	}
	if d.TracksWeight() {
		item.PerUnitWeight = in.PerUnitWeight
	}
	return item
}

func (s *Service) ListItems(ctx context.Context, d Domain) ([]models.CatalogItem, error) {
	var out []models.CatalogItem
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		out, err = tx.Catalog().List(ctx)
		return err
	})
	return out, err
}

func (s *Service) CreateItem(ctx context.Context, d Domain, actor Actor, in ItemInput) (*models.CatalogItem, error) {
	if err := in.validate(d); err != nil {
		return nil, err
	}
	item := in.model(d)

	err := s.mutate(ctx, d, "item", "create", func(tx Tx) error {
		if _, err := tx.Catalog().Get(ctx, item.ItemKey); err == nil {
			return conflict("item already exists")
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := tx.Catalog().Create(ctx, item); err != nil {
			return err
		}
		return writeAudit(ctx, tx, d, actor, "catalog_item", item.ID, models.AuditActionCreate,
			"Item "+item.ItemName+" created", nil, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportItems toplu katalog yüklemesi. Geçersiz ve zaten var olan satırlar
// atlanır, geri kalanı tek transaction içinde eklenir.
func (s *Service) ImportItems(ctx context.Context, d Domain, actor Actor, rows []ItemInput) (*ImportResult, error) {
	res := &ImportResult{}
	err := s.mutate(ctx, d, "item", "import", func(tx Tx) error {
		*res = ImportResult{}
		seen := make(map[string]struct{})
		for i, row := range rows {
			if err := row.validate(d); err != nil {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			item := row.model(d)
			if _, dup := seen[item.ItemKey]; dup {
				res.Skipped++
				continue
			}
			seen[item.ItemKey] = struct{}{}

			_, err := tx.Catalog().Get(ctx, item.ItemKey)
			if err == nil {
				res.Skipped++
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			if err := tx.Catalog().Create(ctx, item); err != nil {
				return err
			}
			res.Created++
		}
		if res.Created == 0 {
			return nil
		}
		return writeAudit(ctx, tx, d, actor, "catalog_item", 0, models.AuditActionCreate,
			fmt.Sprintf("%d items imported", res.Created), nil, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
