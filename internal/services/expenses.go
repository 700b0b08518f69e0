package services

import (
	"time"

	"github.com/budgetwise/backend/internal/ledger"
	"github.com/budgetwise/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseService is the write/read path for expenses and their splits.
// An expense and its splits are committed in one transaction; a reader can
// never observe an expense with a partial split set.
type ExpenseService struct {
	DB *gorm.DB
}

func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{DB: db}
}

// NewExpense carries the validated inputs for one expense creation.
type NewExpense struct {
	GroupID     uuid.UUID
	PayerID     uuid.UUID
	Date        time.Time
	Category    *string
	Description *string
	Cost        float64
	Splits      []ledger.SplitInput
}

// Create allocates the splits and persists the expense with them
// atomically, returning the new expense id.
func (s *ExpenseService) Create(in NewExpense) (uuid.UUID, error) {
	allocated, err := ledger.Allocate(in.Cost, in.Splits)
	if err != nil {
		return uuid.Nil, err
	}

	expense := models.Expense{
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
		Cost:        in.Cost,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		for _, split := range allocated {
			row := models.ExpenseSplit{
				ExpenseID:  expense.ID,
				UserID:     split.UserID,
				ShareType:  split.ShareType,
				Percentage: split.Percentage,
				Amount:     split.Amount,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return expense.ID, nil
}

// ExpenseRow is one expense as listed for a group, joined with the payer's
// display name.
type ExpenseRow struct {
	ExpenseID   uuid.UUID `json:"expenseId"`
	GroupID     uuid.UUID `json:"groupId"`
	PayerID     uuid.UUID `json:"payerId"`
	Date        time.Time `json:"date"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Cost        float64   `json:"cost"`
	PayerName   string    `json:"payerName"`
}

// ListForGroup returns the group's expenses, most recent first: date
// descending, insertion order descending as the tie-break.
func (s *ExpenseService) ListForGroup(groupID uuid.UUID) ([]ExpenseRow, error) {
	rows := make([]ExpenseRow, 0)
	err := s.DB.
		Table("expenses").
		Select("expenses.id AS expense_id, expenses.group_id, expenses.payer_id, expenses.date, expenses.category, expenses.description, expenses.cost, users.name AS payer_name").
		Joins("JOIN users ON users.id = expenses.payer_id").
		Where("expenses.group_id = ?", groupID).
		Order("expenses.date DESC").
		Order("expenses.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
