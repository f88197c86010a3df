package inventory

import (
	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ledger/:domain/returns
func CreateReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body ReturnRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		r, err := svc.CreateReturn(c.UserContext(), d, actor(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// GET /api/ledger/:domain/returns
func ListReturnsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		list, err := svc.ListReturns(c.UserContext(), d)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// GET /api/ledger/:domain/returns/:id
func GetReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		r, err := svc.GetReturn(c.UserContext(), d, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(r)
	}
}

// PUT /api/ledger/:domain/returns/:id
func UpdateReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body ReturnRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		r, err := svc.UpdateReturn(c.UserContext(), d, actor(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(r)
	}
}

// DELETE /api/ledger/:domain/returns/:id
func DeleteReturnHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.DeleteReturn(c.UserContext(), d, actor(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Return deleted and stock reverted"})
	}
}
