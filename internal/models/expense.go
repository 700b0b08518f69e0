package models

import (
	"time"

	"github.com/google/uuid"
)

// ShareType is the method used to compute one participant's share of an
// expense: equal division, a percentage of the cost, or an exact amount.
type ShareType string

const (
	ShareEqual      ShareType = "equal"
	SharePercentage ShareType = "percentage"
	ShareExact      ShareType = "exact"
)

func (s ShareType) Valid() bool {
	switch s {
	case ShareEqual, SharePercentage, ShareExact:
		return true
	default:
		return false
	}
}

// Expense is a shared cost paid by one group member. Expenses and their
// splits are append-only: once created they are never edited or deleted.
type Expense struct {
	BaseModel
	GroupID     uuid.UUID `json:"groupId" gorm:"type:uuid;not null;index"`
	PayerID     uuid.UUID `json:"payerId" gorm:"type:uuid;not null;index"`
	Date        time.Time `json:"date" gorm:"type:date;not null;index"`
	Category    *string   `json:"category" gorm:"type:varchar(100)"`
	Description *string   `json:"description" gorm:"type:text"`
	Cost        float64   `json:"cost" gorm:"not null"`

	Group  Group          `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Payer  User           `json:"payer,omitempty" gorm:"foreignKey:PayerID"`
	Splits []ExpenseSplit `json:"splits,omitempty" gorm:"foreignKey:ExpenseID"`
}

// ExpenseSplit is one participant's allocated share of an expense. Amount is
// always populated after allocation, whatever the share type; Percentage is
// only set for percentage splits. The sum of a given expense's split amounts
// equals the expense cost within a 0.01 tolerance.
type ExpenseSplit struct {
	BaseModel
	ExpenseID  uuid.UUID `json:"expenseId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ShareType  ShareType `json:"shareType" gorm:"type:varchar(20);not null"`
	Percentage *float64  `json:"percentage"`
	Amount     float64   `json:"amount" gorm:"not null"`

	Expense Expense `json:"-" gorm:"foreignKey:ExpenseID"`
	User    User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
