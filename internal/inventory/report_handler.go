package inventory

import (
	"fmt"
	"net/url"
	"time"

	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// GET /api/ledger/:domain/report?item=
func ReportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		rep, err := svc.Report(c.UserContext(), d, c.Query("item"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rep)
	}
}

// GET /api/ledger/:domain/report/items/:itemName
func ItemReportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		name, err := url.PathUnescape(c.Params("itemName"))
		if err != nil {
			return respondError(c, &ledger.ValidationError{Field: "itemName", Message: "invalid item name"})
		}
		rep, err := svc.ItemReport(c.UserContext(), d, name)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rep)
	}
}

// GET /api/ledger/:domain/report/export
func ExportReportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := domainParam(c)
		if err != nil {
			return respondError(c, err)
		}
		rep, err := svc.Report(c.UserContext(), d, c.Query("item"))
		if err != nil {
			return respondError(c, err)
		}

		buf, err := writeReportSheet(rep)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Report file could not be created")
		}

		fileName := fmt.Sprintf("%s_report_%s.xlsx", d, time.Now().Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))
		return c.Send(buf.Bytes())
	}
}
