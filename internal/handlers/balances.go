package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/services"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type BalanceHandler struct {
	Balances *services.BalanceService
}

func NewBalanceHandler(db *gorm.DB) *BalanceHandler {
	return &BalanceHandler{Balances: services.NewBalanceService(db)}
}

// List returns the requesting user's non-zero balances across all groups,
// one row per counterpart, ordered by counterpart name.
func (h *BalanceHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	rows, err := h.Balances.ForUser(user.ID)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "balance_query_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to compute balances")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}
