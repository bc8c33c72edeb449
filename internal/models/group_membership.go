package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupMembership links a user to a group. The (group, user) pair is unique;
// the owner's row is written in the same transaction as the group.
type GroupMembership struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GroupID  uuid.UUID `json:"groupId" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`
	JoinedAt time.Time `json:"joinedAt" gorm:"not null"`
	User     User      `json:"-" gorm:"foreignKey:UserID"`
	Group    Group     `json:"-" gorm:"foreignKey:GroupID"`
}

func (m *GroupMembership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}
