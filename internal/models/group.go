package models

import "github.com/google/uuid"

type Group struct {
	BaseModel
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	CreatedByID uuid.UUID `json:"createdByID" gorm:"type:uuid;not null;index"`

	CreatedBy   User              `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Memberships []GroupMembership `json:"memberships,omitempty" gorm:"foreignKey:GroupID"`
}
