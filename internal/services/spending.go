package services

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SpendingService derives per-user spending summaries: category totals,
// the user's overall split share, what they actually paid out, and a
// month-by-month series. Recomputed on every call from the base tables.
type SpendingService struct {
	DB *gorm.DB
}

func NewSpendingService(db *gorm.DB) *SpendingService {
	return &SpendingService{DB: db}
}

type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type MonthlySpend struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
}

// Summary reports a user's spending from two angles: Total and Categories
// and Monthly are the user's share of shared spending regardless of who
// paid; SpentByYou is the money the user actually laid out regardless of
// how it was split.
type Summary struct {
	Categories []CategorySpend `json:"categories"`
	Total      float64         `json:"total"`
	SpentByYou float64         `json:"spentByYou"`
	Monthly    []MonthlySpend  `json:"monthly"`
}

// ForUser runs the four aggregations. They are independent reads with no
// shared snapshot: under concurrent writes the figures may reflect slightly
// different committed states, which is acceptable for a dashboard.
func (s *SpendingService) ForUser(userID uuid.UUID) (*Summary, error) {
	summary := &Summary{
		Categories: make([]CategorySpend, 0),
		Monthly:    make([]MonthlySpend, 0),
	}

	err := s.DB.Raw(`
		SELECT COALESCE(e.category, 'Uncategorized') AS category,
		       SUM(s.amount) AS total
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE s.user_id = ?
		GROUP BY COALESCE(e.category, 'Uncategorized')
		ORDER BY total DESC`, userID).Scan(&summary.Categories).Error
	if err != nil {
		return nil, err
	}

	err = s.DB.Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM expense_splits
		WHERE user_id = ?`, userID).Scan(&summary.Total).Error
	if err != nil {
		return nil, err
	}

	err = s.DB.Raw(`
		SELECT COALESCE(SUM(cost), 0)
		FROM expenses
		WHERE payer_id = ?`, userID).Scan(&summary.SpentByYou).Error
	if err != nil {
		return nil, err
	}

	monthly, err := s.monthlyForUser(userID)
	if err != nil {
		return nil, err
	}
	summary.Monthly = monthly

	return summary, nil
}

// monthlyForUser groups the user's split amounts by calendar (year, month)
// of the expense date. The grouping runs in Go over the fetched rows so the
// same code serves postgres and the sqlite test store, which disagree on
// date-extraction SQL.
func (s *SpendingService) monthlyForUser(userID uuid.UUID) ([]MonthlySpend, error) {
	var rows []struct {
		Date   time.Time
		Amount float64
	}
	err := s.DB.Raw(`
		SELECT e.date, s.amount
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE s.user_id = ?`, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type yearMonth struct {
		year  int
		month int
	}
	totals := make(map[yearMonth]float64)
	for _, row := range rows {
		key := yearMonth{row.Date.Year(), int(row.Date.Month())}
		totals[key] += row.Amount
	}

	monthly := make([]MonthlySpend, 0, len(totals))
	for key, total := range totals {
		monthly = append(monthly, MonthlySpend{Year: key.year, Month: key.month, Total: total})
	}
	sort.Slice(monthly, func(i, j int) bool {
		if monthly[i].Year != monthly[j].Year {
			return monthly[i].Year < monthly[j].Year
		}
		return monthly[i].Month < monthly[j].Month
	})

	return monthly, nil
}
