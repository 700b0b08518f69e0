package models

import (
	"time"

	"github.com/google/uuid"
)

// Settlement is a direct payment from one user to another, recorded to
// reduce an existing balance. Its group is inferred at creation time and
// the row is immutable afterwards.
type Settlement struct {
	BaseModel
	GroupID uuid.UUID `json:"groupId" gorm:"type:uuid;not null;index"`
	PayerID uuid.UUID `json:"payerId" gorm:"type:uuid;not null;index"`
	PayeeID uuid.UUID `json:"payeeId" gorm:"type:uuid;not null;index"`
	Amount  float64   `json:"amount" gorm:"not null"`
	Date    time.Time `json:"date" gorm:"type:date;not null"`

	Group Group `json:"-" gorm:"foreignKey:GroupID"`
	Payer User  `json:"payer,omitempty" gorm:"foreignKey:PayerID"`
	Payee User  `json:"payee,omitempty" gorm:"foreignKey:PayeeID"`
}
