package vendors

import (
	"errors"
	"strings"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type VendorRequest struct {
	PartyName     string `json:"partyName"`
	Address       string `json:"address"`
	GSTNumber     string `json:"gstNumber"`
	ContactNumber string `json:"contactNumber"`
}

func (r *VendorRequest) normalize() error {
	r.PartyName = strings.TrimSpace(r.PartyName)
	r.Address = strings.TrimSpace(r.Address)
	r.GSTNumber = strings.ToUpper(strings.TrimSpace(r.GSTNumber))
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)

	if r.PartyName == "" || r.Address == "" || r.GSTNumber == "" || r.ContactNumber == "" {
		return fiber.NewError(fiber.StatusBadRequest, "partyName, address, gstNumber and contactNumber are required")
	}
	return nil
}

func (r *VendorRequest) apply(v *models.Vendor) {
	v.PartyName = r.PartyName
	v.Address = r.Address
	v.GSTNumber = r.GSTNumber
	v.ContactNumber = r.ContactNumber
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func writeLog(c *fiber.Ctx, tx *gorm.DB, id uint, action models.AuditAction, desc string, before, after any) error {
	userID, userName := auth.CurrentUser(c)
	return audit.WriteLog(tx, audit.LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  "vendor",
		EntityID:    id,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}

// POST /api/vendors
func CreateVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		var v models.Vendor
		body.apply(&v)

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&v).Error; err != nil {
				return err
			}
			return writeLog(c, tx, v.ID, models.AuditActionCreate, "Vendor "+v.PartyName+" created", nil, v)
		})
		if isDuplicate(err) {
			return fiber.NewError(fiber.StatusConflict, "Vendor already exists")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vendor could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// GET /api/vendors?search=
func ListVendorsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := database.DB.Model(&models.Vendor{})
		if s := strings.TrimSpace(c.Query("search")); s != "" {
			q = q.Where("party_name ILIKE ?", "%"+s+"%")
		}

		var vendors []models.Vendor
		if err := q.Order("party_name").Find(&vendors).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vendors could not be listed")
		}
		return c.JSON(vendors)
	}
}

// GET /api/vendors/:id
func GetVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v models.Vendor
		if err := database.DB.First(&v, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
		}
		return c.JSON(v)
	}
}

// PUT /api/vendors/:id
func UpdateVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		var v models.Vendor
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&v, "id = ?", c.Params("id")).Error; err != nil {
				return err
			}
			before := v
			body.apply(&v)
			if err := tx.Save(&v).Error; err != nil {
				return err
			}
			return writeLog(c, tx, v.ID, models.AuditActionUpdate, "Vendor "+v.PartyName+" updated", before, v)
		})
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
		case isDuplicate(err):
			return fiber.NewError(fiber.StatusConflict, "Vendor already exists")
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "Vendor could not be updated")
		}

		return c.JSON(v)
	}
}

// DELETE /api/vendors/:id
func DeleteVendorHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var v models.Vendor
			if err := tx.First(&v, "id = ?", c.Params("id")).Error; err != nil {
				return err
			}
			if err := tx.Delete(&v).Error; err != nil {
				return err
			}
			return writeLog(c, tx, v.ID, models.AuditActionDelete, "Vendor "+v.PartyName+" deleted", v, nil)
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Vendor not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Vendor could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
