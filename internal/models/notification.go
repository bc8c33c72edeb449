package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationGroupInvite   NotificationType = "group_invite"
)

// Notification is written only as a side effect of another mutation. Read
// moves from false to true and never back. RelatedID points at a task or a
// group depending on Type.
type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID        `json:"userId" gorm:"type:uuid;not null;index"`
	Title     string           `json:"title" gorm:"type:varchar(255);not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Type      NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	Read      bool             `json:"read" gorm:"not null;default:false;index"`
	RelatedID *uuid.UUID       `json:"relatedId,omitempty" gorm:"type:uuid"`
	CreatedAt time.Time        `json:"createdAt" gorm:"index"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
