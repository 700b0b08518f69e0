package services

import (
	"time"

	"github.com/budgetwise/backend/internal/ledger"
	"github.com/budgetwise/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettlementService validates and records direct payments between users.
// Settlement rows are append-only single-row writes; repeated identical
// calls create distinct rows.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// Record persists a payment from payer to payee dated date. The group is
// not chosen by the caller: it is inferred as the oldest group both users
// belong to, which makes the "any shared group" rule deterministic.
// Returns ledger.ErrNoCommonGroup when the two users share no group; in
// that case nothing is written.
func (s *SettlementService) Record(payerID, payeeID uuid.UUID, amount float64, date time.Time) (uuid.UUID, error) {
	if payeeID == uuid.Nil {
		return uuid.Nil, &ledger.ValidationError{Reason: "payee is required"}
	}
	if payeeID == payerID {
		return uuid.Nil, &ledger.ValidationError{Reason: "cannot settle with yourself"}
	}
	if amount <= 0 {
		return uuid.Nil, &ledger.ValidationError{Reason: "amount must be positive"}
	}
	if date.IsZero() {
		return uuid.Nil, &ledger.ValidationError{Reason: "date is required"}
	}

	var payee models.User
	if err := s.DB.First(&payee, "id = ?", payeeID).Error; err != nil {
		return uuid.Nil, err
	}

	groupID, err := s.commonGroup(payerID, payeeID)
	if err != nil {
		return uuid.Nil, err
	}

	settlement := models.Settlement{
		GroupID: groupID,
		PayerID: payerID,
		PayeeID: payeeID,
		Amount:  amount,
		Date:    date,
	}
	if err := s.DB.Create(&settlement).Error; err != nil {
		return uuid.Nil, err
	}

	return settlement.ID, nil
}

func (s *SettlementService) commonGroup(payerID, payeeID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		GroupID uuid.UUID
	}
	result := s.DB.Raw(`
		SELECT gm1.group_id
		FROM group_memberships gm1
		JOIN group_memberships gm2 ON gm1.group_id = gm2.group_id
		JOIN groups g ON g.id = gm1.group_id
		WHERE gm1.user_id = ? AND gm2.user_id = ?
		ORDER BY g.created_at ASC
		LIMIT 1`, payerID, payeeID).Scan(&row)
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 || row.GroupID == uuid.Nil {
		return uuid.Nil, ledger.ErrNoCommonGroup
	}
	return row.GroupID, nil
}
