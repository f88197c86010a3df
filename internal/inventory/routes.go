package inventory

import (
	"ledger-backend/internal/auth"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Mount alan bazlı stok uçlarını r altına /ledger/:domain olarak bağlar.
// Katalog değişiklikleri ve açılış stoğu sadece admin içindir.
func Mount(r fiber.Router, svc *ledger.Service) {
	g := r.Group("/ledger/:domain")
	adminOnly := auth.RequireRole(models.RoleAdmin)

	g.Get("/purchases", ListPurchasesHandler(svc))
	g.Post("/purchases", CreatePurchaseHandler(svc))
	g.Get("/purchases/:id", GetPurchaseHandler(svc))
	g.Put("/purchases/:id", UpdatePurchaseHandler(svc))
	g.Delete("/purchases/:id", DeletePurchaseHandler(svc))

	g.Get("/issues", ListIssuesHandler(svc))
	g.Post("/issues", CreateIssueHandler(svc))
	g.Get("/issues/:id", GetIssueHandler(svc))
	g.Put("/issues/:id", UpdateIssueHandler(svc))
	g.Delete("/issues/:id", DeleteIssueHandler(svc))

	g.Get("/returns", ListReturnsHandler(svc))
	g.Post("/returns", CreateReturnHandler(svc))
	g.Get("/returns/:id", GetReturnHandler(svc))
	g.Put("/returns/:id", UpdateReturnHandler(svc))
	g.Delete("/returns/:id", DeleteReturnHandler(svc))

	g.Get("/stock", ListStockHandler(svc))
	g.Post("/stock", adminOnly, AddOpeningStockHandler(svc))

	g.Get("/items", ListItemsHandler(svc))
	g.Post("/items", adminOnly, CreateItemHandler(svc))
	g.Post("/items/import", adminOnly, ImportItemsHandler(svc))

	g.Get("/report", ReportHandler(svc))
	g.Get("/report/export", ExportReportHandler(svc))
	g.Get("/report/items/:itemName", ItemReportHandler(svc))
}
