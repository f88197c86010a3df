package inventory

import (
	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ledger/:domain/purchases
func CreatePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body PurchaseRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		p, err := svc.CreatePurchase(c.UserContext(), d, actor(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/ledger/:domain/purchases
func ListPurchasesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		list, err := svc.ListPurchases(c.UserContext(), d)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// GET /api/ledger/:domain/purchases/:id
func GetPurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		p, err := svc.GetPurchase(c.UserContext(), d, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// PUT /api/ledger/:domain/purchases/:id
// Eski satırlar stoktan geri alınır, yenileri uygulanır. "items" gönderilmezse
// sadece başlık güncellenir.
func UpdatePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body PurchaseRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		p, err := svc.UpdatePurchase(c.UserContext(), d, actor(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// DELETE /api/ledger/:domain/purchases/:id
func DeletePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.DeletePurchase(c.UserContext(), d, actor(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Purchase deleted and stock reverted"})
	}
}
