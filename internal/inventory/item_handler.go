package inventory

import (
	"strings"

	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// GET /api/ledger/:domain/items
func ListItemsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		items, err := svc.ListItems(c.UserContext(), d)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	}
}

// POST /api/ledger/:domain/items
func CreateItemHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		var body ItemRequest
		if err := parseBody(c, &body); err != nil {
			return respondError(c, err)
		}

		item, err := svc.CreateItem(c.UserContext(), d, actor(c), ledger.ItemInput{
			ItemName:      body.ItemName,
			Unit:          body.Unit,
			PerUnitWeight: firstNonNil(body.PerUnitWeight, body.PUW),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// POST /api/ledger/:domain/items/import (multipart, "file" alanında .xlsx)
// Kolonlar: ürün adı, birim, birim ağırlık. Başlık satırı varsa atlanır.
func ImportItemsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File could not be uploaded: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "File could not be opened")
		}
		defer file.Close()

		rows, badRows, err := parseItemSheet(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := svc.ImportItems(c.UserContext(), d, actor(c), rows)
		if err != nil {
			return respondError(c, err)
		}
		res.Skipped += len(badRows)
		res.Errors = append(badRows, res.Errors...)
		return c.JSON(res)
	}
}
