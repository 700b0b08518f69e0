package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BalanceService derives net pairwise balances. It is a pure read-side
// projection: every call recomputes from the expense-split and settlement
// rows, there is no cached balance table.
type BalanceService struct {
	DB *gorm.DB
}

func NewBalanceService(db *gorm.DB) *BalanceService {
	return &BalanceService{DB: db}
}

// BalanceRow is the net balance against one counterpart. Amount is signed
// from the requesting user's point of view: positive means the counterpart
// owes them, negative means they owe the counterpart.
type BalanceRow struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Amount   float64   `json:"amount"`
}

// Each expense-split row and each settlement row contributes one signed
// flow oriented to the requesting user; the flows for a pair are summed in
// one pass so no pair is ever counted from both perspectives. Self rows
// (payer participating in their own expense) fall through to the ELSE 0
// branch and can never produce a counterpart entry.
const balanceQuery = `
SELECT
  pf.other_user_id AS user_id,
  u.name AS user_name,
  SUM(pf.delta) AS amount
FROM (
  SELECT
    CASE
      WHEN e.payer_id = @uid THEN s.user_id
      WHEN s.user_id = @uid THEN e.payer_id
    END AS other_user_id,
    CASE
      WHEN e.payer_id = @uid AND s.user_id <> @uid THEN s.amount
      WHEN s.user_id = @uid AND e.payer_id <> @uid THEN -s.amount
      ELSE 0
    END AS delta
  FROM expenses e
  JOIN expense_splits s ON s.expense_id = e.id
  WHERE e.payer_id = @uid OR s.user_id = @uid

  UNION ALL

  SELECT
    CASE
      WHEN st.payer_id = @uid THEN st.payee_id
      WHEN st.payee_id = @uid THEN st.payer_id
    END AS other_user_id,
    CASE
      WHEN st.payer_id = @uid AND st.payee_id <> @uid THEN st.amount
      WHEN st.payee_id = @uid AND st.payer_id <> @uid THEN -st.amount
      ELSE 0
    END AS delta
  FROM settlements st
  WHERE st.payer_id = @uid OR st.payee_id = @uid
) AS pf
JOIN users u ON u.id = pf.other_user_id
WHERE pf.other_user_id IS NOT NULL
GROUP BY pf.other_user_id, u.name
HAVING SUM(pf.delta) <> 0
ORDER BY u.name ASC
`

// ForUser returns the non-zero net balances between userID and every user
// they share an expense or settlement with, ordered by counterpart name.
// Pairs that net to zero are omitted entirely.
func (s *BalanceService) ForUser(userID uuid.UUID) ([]BalanceRow, error) {
	rows := make([]BalanceRow, 0)
	err := s.DB.Raw(balanceQuery, map[string]interface{}{"uid": userID}).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
