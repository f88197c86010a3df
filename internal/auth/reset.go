package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ledger-backend/internal/database"
	"ledger-backend/internal/mail"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// generateOTP 6 haneli sayısal kod
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// POST /api/auth/forgot-password
// Email kayıtlı olsun olmasın aynı cevap döner.
func ForgotPasswordHandler(sender mail.Sender, org string, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email is required")
		}

		accepted := func() error {
			return c.JSON(fiber.Map{"message": "If the email is registered, a reset code has been sent"})
		}

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			return accepted()
		}

		otp, err := generateOTP()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reset code could not be created")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reset code could not be created")
		}

		expires := time.Now().Add(otpTTL)
		err = database.DB.Model(&user).Updates(map[string]any{
			"reset_otp_hash":       string(hash),
			"reset_otp_expires_at": expires,
			"reset_otp_attempts":   0,
		}).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reset code could not be saved")
		}

		subject, text, html := mail.OTPMessage(org, otp, otpTTL)
		if err := sender.Send(c.UserContext(), user.Email, subject, text, html); err != nil {
			// Kayıtlı olmayan email ile aynı cevap döner
			log.Error("reset mail failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}

		return accepted()
	}
}

// POST /api/auth/reset-password
func ResetPasswordHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResetPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))
		otp := strings.TrimSpace(body.OTP)
		if email == "" || otp == "" || body.NewPassword == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Email, otp and newPassword are required")
		}

		invalid := fiber.NewError(fiber.StatusBadRequest, "Invalid or expired reset code")

		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			return invalid
		}
		if user.ResetOTPHash == "" || user.ResetOTPExpiresAt == nil || time.Now().After(*user.ResetOTPExpiresAt) {
			return invalid
		}

		ok, err := claimAttempt(database.DB, user.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Reset code could not be checked")
		}
		if !ok {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, request a new code")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.ResetOTPHash), []byte(otp)); err != nil {
			return invalid
		}

		hash, err := HashPassword(body.NewPassword)
		if err != nil {
			return err
		}

		err = database.DB.Model(&user).Updates(map[string]any{
			"password_hash":        hash,
			"reset_otp_hash":       "",
			"reset_otp_expires_at": nil,
			"reset_otp_attempts":   0,
		}).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Password could not be updated")
		}

		return c.JSON(fiber.Map{"message": "Password updated"})
	}
}

// claimAttempt deneme hakkını karşılaştırmadan önce tek bir UPDATE ile düşer;
// eşzamanlı denemeler aynı sayacı okuyup sınırı aşamaz.
func claimAttempt(db *gorm.DB, userID uint) (bool, error) {
	res := db.Model(&models.User{}).
		Where("id = ? AND reset_otp_attempts < ?", userID, otpMaxAttempts).
		UpdateColumn("reset_otp_attempts", gorm.Expr("reset_otp_attempts + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
