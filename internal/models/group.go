package models

import "github.com/google/uuid"

type Group struct {
	BaseModel
	Name        string            `json:"name" gorm:"type:varchar(150);not null"`
	OwnerID     uuid.UUID         `json:"ownerId" gorm:"type:uuid;not null;index"`
	Owner       User              `json:"-" gorm:"foreignKey:OwnerID"`
	Memberships []GroupMembership `json:"-" gorm:"foreignKey:GroupID"`
	Tasks       []Task            `json:"-" gorm:"foreignKey:GroupID"`
}
