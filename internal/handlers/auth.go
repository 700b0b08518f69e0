package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/models"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account and returns a token for it. Emails are
// stored lowercased so uniqueness is case-insensitive.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid email address")
	}
	if len(req.Password) < 8 {
		return utils.Error(c, fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		logger.Warn("register_duplicate_email", map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusConflict, "email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("register_hash_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create account")
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		logger.Error("register_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create account")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "register_token_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create account")
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same response.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		logger.Warn("login_unknown_email", map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.WarnWithUser(user.ID.String(), "login_wrong_password", map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "login_token_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to log in")
	}

	logger.InfoWithUser(user.ID.String(), "user_logged_in", map[string]interface{}{
		"ip": c.IP(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user,
	})
}
