package admin

import (
	"errors"
	"strings"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"` // boşsa storekeeper
}

type UserListItem struct {
	auth.UserResponse
	CreatedAt string `json:"created_at"`
}

// ----------------------------------------
// KULLANICI YÖNETİMİ (sadece admin)
// ----------------------------------------

// POST /api/admin/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)
		if body.Role == "" {
			body.Role = models.RoleStorekeeper
		}

		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}
		if body.Role != models.RoleAdmin && body.Role != models.RoleStorekeeper {
			return fiber.NewError(fiber.StatusBadRequest, "Role must be admin or storekeeper")
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict, "Email already registered")
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         body.Role,
		}

		actorID, actorName := auth.CurrentUser(c)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionCreate,
				Description: "User " + user.Email + " created as " + string(user.Role),
				After:       auth.NewUserResponse(&user),
			})
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be created")
		}

		return c.Status(fiber.StatusCreated).JSON(auth.NewUserResponse(&user))
	}
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("created_at DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Users could not be listed")
		}

		res := make([]UserListItem, 0, len(users))
		for i := range users {
			res = append(res, UserListItem{
				UserResponse: auth.NewUserResponse(&users[i]),
				CreatedAt:    users[i].CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}

// DELETE /api/admin/users/:id
func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
		}

		actorID, actorName := auth.CurrentUser(c)
		if uint(id) == actorID {
			return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.First(&user, id).Error; err != nil {
				return err
			}
			if err := tx.Delete(&user).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      actorID,
				UserName:    actorName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionDelete,
				Description: "User " + user.Email + " deleted",
				Before:      auth.NewUserResponse(&user),
			})
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "User could not be deleted")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
