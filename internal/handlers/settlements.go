package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/ledger"
	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/services"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type SettlementHandler struct {
	Settlements *services.SettlementService
}

func NewSettlementHandler(db *gorm.DB) *SettlementHandler {
	return &SettlementHandler{Settlements: services.NewSettlementService(db)}
}

type createSettlementRequest struct {
	PayeeID string  `json:"payeeId"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"`
}

// Create records a payment from the requesting user to the payee. The two
// must share at least one group; nothing is recorded otherwise.
func (h *SettlementHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	var req createSettlementRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	payeeID, ok := parseUUID(req.PayeeID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid payee id")
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	settlementID, err := h.Settlements.Record(user.ID, payeeID, req.Amount, date)
	if err != nil {
		switch {
		case ledger.IsValidation(err):
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ledger.ErrNoCommonGroup):
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.Error(c, fiber.StatusNotFound, "payee not found")
		default:
			logger.ErrorWithUser(user.ID.String(), "settlement_create_failed", err, nil)
			return utils.Error(c, fiber.StatusInternalServerError, "failed to record settlement")
		}
	}

	logger.InfoWithUser(user.ID.String(), "settlement_recorded", map[string]interface{}{
		"settlement_id": settlementID.String(),
		"payee_id":      payeeID.String(),
	})
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"settlementId": settlementID})
}
