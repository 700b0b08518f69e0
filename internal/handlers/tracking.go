package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/services"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type TrackingHandler struct {
	Spending *services.SpendingService
}

func NewTrackingHandler(db *gorm.DB) *TrackingHandler {
	return &TrackingHandler{Spending: services.NewSpendingService(db)}
}

// Summary returns the requesting user's spending breakdown: category
// totals, overall share, amount actually paid out, and the monthly series.
func (h *TrackingHandler) Summary(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	summary, err := h.Spending.ForUser(user.ID)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "tracking_query_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to compute spending summary")
	}

	return utils.Success(c, fiber.StatusOK, summary)
}
