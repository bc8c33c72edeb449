package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

// Valid reports whether s is one of the two task states.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusDone
}

// DueDateLayout is the wire and storage format of Task.DueDate.
const DueDateLayout = "2006-01-02"

type Task struct {
	BaseModel
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Description string     `json:"description" gorm:"type:text;not null;default:''"`
	GroupID     uuid.UUID  `json:"groupId" gorm:"type:uuid;not null;index"`
	AssignedTo  uuid.UUID  `json:"assignedTo" gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID  `json:"createdBy" gorm:"type:uuid;not null"`
	DueDate     time.Time  `json:"dueDate" gorm:"type:date;not null"`
	Status      TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Group       Group      `json:"-" gorm:"foreignKey:GroupID"`
	Assignee    User       `json:"-" gorm:"foreignKey:AssignedTo"`
	Creator     User       `json:"-" gorm:"foreignKey:CreatedBy"`
}
