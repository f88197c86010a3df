package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	Supervisor string                 `json:"supervisor"`
	EmployeeID string                 `json:"employeeId"`
	IssueDate  string                 `json:"issueDate"`
	Location   string                 `json:"location"`
	Materials  []models.OrderMaterial `json:"materials"`
}

// newOrderNo: ORD-<yıl>-<unix ms>
func newOrderNo(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%d", now.Year(), now.UnixMilli())
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// build isteği doğrular ve kaydı hazırlar.
func (r *CreateOrderRequest) build(now time.Time) (*models.ScaffoldingOrder, error) {
	r.Supervisor = strings.TrimSpace(r.Supervisor)
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	r.Location = strings.TrimSpace(r.Location)

	if r.Supervisor == "" || r.EmployeeID == "" || r.IssueDate == "" || r.Location == "" || len(r.Materials) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid order data")
	}
	issueDate, err := parseDate(r.IssueDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "issueDate must be YYYY-MM-DD or RFC3339")
	}

	materials := make([]models.OrderMaterial, 0, len(r.Materials))
	for _, m := range r.Materials {
		m.Material = strings.TrimSpace(m.Material)
		m.Provider = strings.TrimSpace(m.Provider)
		if m.Material == "" || m.Provider == "" || m.Quantity <= 0 || math.IsInf(m.Quantity, 0) || math.IsNaN(m.Quantity) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid material row")
		}
		materials = append(materials, m)
	}

	return &models.ScaffoldingOrder{
		OrderNo:    newOrderNo(now),
		Supervisor: r.Supervisor,
		EmployeeID: r.EmployeeID,
		IssueDate:  issueDate,
		Location:   r.Location,
		Materials:  materials,
	}, nil
}

// POST /api/scaffolding-orders
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		o, err := body.build(time.Now())
		if err != nil {
			return err
		}

		userID, userName := auth.CurrentUser(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(o).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Domain:      "scaffolding",
				UserID:      userID,
				UserName:    userName,
				EntityType:  "scaffolding_order",
				EntityID:    o.ID,
				Action:      models.AuditActionCreate,
				Description: "Order " + o.OrderNo + " created",
				After:       o,
			})
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to create order")
		}

		return c.Status(fiber.StatusCreated).JSON(o)
	}
}

// GET /api/scaffolding-orders
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orders []models.ScaffoldingOrder
		if err := database.DB.Order("created_at DESC").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch orders")
		}
		return c.JSON(orders)
	}
}

// DELETE /api/scaffolding-orders/:id
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName := auth.CurrentUser(c)
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var o models.ScaffoldingOrder
			if err := tx.First(&o, "id = ?", c.Params("id")).Error; err != nil {
				return err
			}
			if err := tx.Delete(&o).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Domain:      "scaffolding",
				UserID:      userID,
				UserName:    userName,
				EntityType:  "scaffolding_order",
				EntityID:    o.ID,
				Action:      models.AuditActionDelete,
				Description: "Order " + o.OrderNo + " deleted",
				Before:      o,
			})
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Delete failed")
		}
		return c.JSON(fiber.Map{"message": "Order deleted"})
	}
}
