package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/models"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// UpdateMe updates the profile fields present in the request. A password
// change requires the current password to be re-verified.
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		user.Name = name
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid email address")
		}
		if email != user.Email {
			var existing models.User
			if err := h.DB.Where("email = ? AND id <> ?", email, user.ID).First(&existing).Error; err == nil {
				return utils.Error(c, fiber.StatusConflict, "email already registered")
			}
			user.Email = email
		}
	}

	if req.NewPassword != "" {
		if !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
			logger.WarnWithUser(user.ID.String(), "password_change_rejected", map[string]interface{}{
				"ip": c.IP(),
			})
			return utils.Error(c, fiber.StatusUnauthorized, "current password is incorrect")
		}
		if len(req.NewPassword) < 8 {
			return utils.Error(c, fiber.StatusBadRequest, "password must be at least 8 characters")
		}
		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			logger.ErrorWithUser(user.ID.String(), "password_hash_failed", err, nil)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to update profile")
		}
		user.PasswordHash = hash
	}

	if err := h.DB.Save(user).Error; err != nil {
		logger.ErrorWithUser(user.ID.String(), "profile_update_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to update profile")
	}

	logger.InfoWithUser(user.ID.String(), "profile_updated", nil)
	return utils.Success(c, fiber.StatusOK, user)
}
