package inventory

import (
	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// GET /api/ledger/:domain/stock?search=&page=&limit=
func ListStockHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		page, err := svc.ListStock(c.UserContext(), d, ledger.StockQuery{
			Search: c.Query("search"),
			Page:   c.QueryInt("page", 1),
			Limit:  c.QueryInt("limit", 50),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	}
}

// POST /api/ledger/:domain/stock
// Açılış stoğu; "Opening balance" alış kaydı olarak yazılır.
func AddOpeningStockHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body OpeningStockRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}

		p, err := svc.AddOpeningStock(c.UserContext(), d, actor(c), ledger.OpeningStockInput{
			ItemName:      body.ItemName,
			Unit:          body.Unit,
			Quantity:      firstNonNil(body.Quantity, body.Qty),
			PerUnitWeight: firstNonNil(body.PerUnitWeight, body.PUW),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}
