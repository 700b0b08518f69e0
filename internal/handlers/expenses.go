package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/budgetwise/backend/internal/ledger"
	"github.com/budgetwise/backend/internal/middleware"
	"github.com/budgetwise/backend/internal/models"
	"github.com/budgetwise/backend/internal/services"
	"github.com/budgetwise/backend/pkg/logger"
	"github.com/budgetwise/backend/pkg/utils"
)

type ExpenseHandler struct {
	DB       *gorm.DB
	Expenses *services.ExpenseService
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{
		DB:       db,
		Expenses: services.NewExpenseService(db),
	}
}

type splitRequest struct {
	UserID    string   `json:"userId"`
	ShareType string   `json:"shareType"`
	Value     *float64 `json:"value"`
}

type createExpenseRequest struct {
	GroupID     string         `json:"groupId"`
	PayerID     string         `json:"payerId"`
	Date        string         `json:"date"`
	Category    *string        `json:"category"`
	Description *string        `json:"description"`
	Cost        float64        `json:"cost"`
	Splits      []splitRequest `json:"splits"`
}

// Create records an expense. The payer may be any member of the group and
// defaults to the requesting user when omitted. When splits are omitted
// the cost is divided equally among all group members; an explicitly empty
// split list is rejected. Value carries the percentage for percentage
// splits and the amount for exact ones; equal splits ignore it.
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	var req createExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	groupID, ok := parseUUID(req.GroupID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	date, ok := parseDate(req.Date)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	membership := h.DB.Where("user_id = ? AND group_id = ?", user.ID, groupID).
		First(&models.GroupMembership{})
	if membership.Error != nil {
		return utils.Error(c, fiber.StatusForbidden, "not a member of this group")
	}

	payerID := user.ID
	if req.PayerID != "" {
		payerID, ok = parseUUID(req.PayerID)
		if !ok {
			return utils.Error(c, fiber.StatusBadRequest, "invalid payer id")
		}
		if payerID != user.ID {
			payerMembership := h.DB.Where("user_id = ? AND group_id = ?", payerID, groupID).
				First(&models.GroupMembership{})
			if payerMembership.Error != nil {
				return utils.Error(c, fiber.StatusBadRequest, "payer is not a member of this group")
			}
		}
	}

	splits, err := h.resolveSplits(groupID, req.Splits)
	if err != nil {
		if ledger.IsValidation(err) {
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		}
		logger.ErrorWithUser(user.ID.String(), "expense_split_resolve_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create expense")
	}

	expenseID, err := h.Expenses.Create(services.NewExpense{
		GroupID:     groupID,
		PayerID:     payerID,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		Cost:        req.Cost,
		Splits:      splits,
	})
	if err != nil {
		if ledger.IsValidation(err) {
			return utils.Error(c, fiber.StatusBadRequest, err.Error())
		}
		logger.ErrorWithUser(user.ID.String(), "expense_create_failed", err, map[string]interface{}{
			"group_id": groupID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to create expense")
	}

	logger.InfoWithUser(user.ID.String(), "expense_created", map[string]interface{}{
		"group_id":   groupID.String(),
		"expense_id": expenseID.String(),
	})
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"expenseId": expenseID})
}

// resolveSplits turns the request splits into allocator inputs. An omitted
// list means an equal split across every current group member; a present
// but empty list is invalid.
func (h *ExpenseHandler) resolveSplits(groupID uuid.UUID, reqs []splitRequest) ([]ledger.SplitInput, error) {
	if reqs != nil && len(reqs) == 0 {
		return nil, &ledger.ValidationError{Reason: "at least one split participant is required"}
	}
	if reqs == nil {
		var memberships []models.GroupMembership
		if err := h.DB.Where("group_id = ?", groupID).Find(&memberships).Error; err != nil {
			return nil, err
		}
		splits := make([]ledger.SplitInput, 0, len(memberships))
		for _, m := range memberships {
			splits = append(splits, ledger.SplitInput{
				UserID:    m.UserID,
				ShareType: models.ShareEqual,
			})
		}
		return splits, nil
	}

	splits := make([]ledger.SplitInput, 0, len(reqs))
	for _, r := range reqs {
		userID, ok := parseUUID(r.UserID)
		if !ok {
			return nil, &ledger.ValidationError{Reason: "invalid split user id"}
		}
		shareType := models.ShareType(strings.ToLower(strings.TrimSpace(r.ShareType)))
		in := ledger.SplitInput{
			UserID:    userID,
			ShareType: shareType,
		}
		switch shareType {
		case models.SharePercentage:
			in.Percentage = r.Value
		case models.ShareExact:
			in.Amount = r.Value
		}
		splits = append(splits, in)
	}
	return splits, nil
}

// ListForGroup returns a group's expenses, newest first. Only members may
// list them.
func (h *ExpenseHandler) ListForGroup(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}

	groupID, ok := parseUUID(c.Params("groupId"))
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	membership := h.DB.Where("user_id = ? AND group_id = ?", user.ID, groupID).
		First(&models.GroupMembership{})
	if membership.Error != nil {
		return utils.Error(c, fiber.StatusForbidden, "not a member of this group")
	}

	rows, err := h.Expenses.ListForGroup(groupID)
	if err != nil {
		logger.ErrorWithUser(user.ID.String(), "expense_list_failed", err, map[string]interface{}{
			"group_id": groupID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to list expenses")
	}

	return utils.Success(c, fiber.StatusOK, rows)
}
