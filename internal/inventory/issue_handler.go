package inventory

import (
	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// POST /api/ledger/:domain/issues
// Stok yetersizse hiçbir satır düşülmez; 409 ile eksik kalemler döner.
func CreateIssueHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body IssueRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		is, err := svc.CreateIssue(c.UserContext(), d, actor(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(is)
	}
}

// GET /api/ledger/:domain/issues
func ListIssuesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		list, err := svc.ListIssues(c.UserContext(), d)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	}
}

// GET /api/ledger/:domain/issues/:id
func GetIssueHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		is, err := svc.GetIssue(c.UserContext(), d, id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(is)
	}
}

// PUT /api/ledger/:domain/issues/:id
func UpdateIssueHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body IssueRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}
		in, err := body.input()
		if err != nil {
			return respondError(c, err)
		}

		is, err := svc.UpdateIssue(c.UserContext(), d, actor(c), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(is)
	}
}

// DELETE /api/ledger/:domain/issues/:id
func DeleteIssueHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		id, err := idParam(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.DeleteIssue(c.UserContext(), d, actor(c), id); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "Issue deleted and stock restored"})
	}
}
