package ledger

import (
	"context"
	"strings"

	"ledger-backend/internal/models"
)

const (
	defaultStockLimit = 50
	maxStockLimit     = 500
)

type StockPage struct {
	Data  []models.StockEntry `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func (s *Service) ListStock(ctx context.Context, d Domain, q StockQuery) (*StockPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultStockLimit
	}
	q.Limit = min(q.Limit, maxStockLimit)
	q.Search = strings.TrimSpace(q.Search)

	page := &StockPage{Page: q.Page, Limit: q.Limit}
	err := s.view(ctx, d, func(tx Tx) error {
		var err error
		page.Data, page.Total, err = tx.Stock().List(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	if page.Data == nil {
		page.Data = []models.StockEntry{}
	}
	return page, nil
}

// OpeningStockInput sisteme geçişte elde bulunan stok
type OpeningStockInput struct {
	ItemName      string
	Unit          string
	Quantity      float64
	PerUnitWeight float64
}

// Açılış stoğu da bir alış kaydıdır; böylece stok = alış - çıkış + iade eşitliği bozulmaz.
const openingParty = "Opening balance"

func (s *Service) AddOpeningStock(ctx context.Context, d Domain, actor Actor, in OpeningStockInput) (*models.Purchase, error) {
	if d.TracksWeight() && in.PerUnitWeight <= 0 {
		return nil, invalid("perUnitWeight", "per unit weight is required")
	}
	now := s.now()
	return s.CreatePurchase(ctx, d, actor, PurchaseInput{
		PartyName:     openingParty,
		InvoiceNumber: "OPENING-" + now.Format("20060102150405"),
		InvoiceDate:   now,
		Items: []LineInput{{
			ItemName:      in.ItemName,
			Unit:          in.Unit,
			Quantity:      in.Quantity,
			PerUnitWeight: in.PerUnitWeight,
		}},
	})
}
