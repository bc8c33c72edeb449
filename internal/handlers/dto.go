package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/models"
	"github.com/kamy/api/internal/services"
)

type userDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type userStatsDTO struct {
	GroupsCount       int64 `json:"groupsCount"`
	PendingTasksCount int64 `json:"pendingTasksCount"`
}

type profileDTO struct {
	userDTO
	Stats userStatsDTO `json:"stats"`
}

type groupDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	OwnerID        uuid.UUID `json:"ownerId"`
	Tasks          int64     `json:"tasks"`
	CompletedTasks int64     `json:"completedTasks"`
	Members        int64     `json:"members"`
	LastActivity   time.Time `json:"lastActivity"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newGroupDTO(s *services.GroupSummary) groupDTO {
	return groupDTO{
		ID:             s.Group.ID,
		Name:           s.Group.Name,
		OwnerID:        s.Group.OwnerID,
		Tasks:          s.Tasks,
		CompletedTasks: s.CompletedTasks,
		Members:        s.Members,
		LastActivity:   s.LastActivity,
		CreatedAt:      s.Group.CreatedAt,
		UpdatedAt:      s.Group.UpdatedAt,
	}
}

type memberDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
	IsOwner  bool      `json:"isOwner"`
}

func newMemberDTO(m *services.Member) memberDTO {
	return memberDTO{ID: m.ID, Name: m.Name, Email: m.Email, JoinedAt: m.JoinedAt, IsOwner: m.IsOwner}
}

type taskDTO struct {
	ID             uuid.UUID         `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	GroupID        uuid.UUID         `json:"groupId"`
	GroupName      string            `json:"groupName,omitempty"`
	AssignedTo     uuid.UUID         `json:"assignedTo"`
	AssignedToName string            `json:"assignedToName"`
	CreatedBy      uuid.UUID         `json:"createdBy"`
	CreatedByName  string            `json:"createdByName,omitempty"`
	DueDate        string            `json:"dueDate"`
	Status         models.TaskStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// newTaskDTO fills the name fields from whichever relations were preloaded.
func newTaskDTO(t *models.Task) taskDTO {
	return taskDTO{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		GroupID:        t.GroupID,
		GroupName:      t.Group.Name,
		AssignedTo:     t.AssignedTo,
		AssignedToName: t.Assignee.Name,
		CreatedBy:      t.CreatedBy,
		CreatedByName:  t.Creator.Name,
		DueDate:        t.DueDate.UTC().Format(models.DueDateLayout),
		Status:         t.Status,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func newTaskDTOs(tasks []models.Task) []taskDTO {
	out := make([]taskDTO, len(tasks))
	for i := range tasks {
		out[i] = newTaskDTO(&tasks[i])
	}
	return out
}

type notificationDTO struct {
	ID        uuid.UUID               `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	RelatedID *uuid.UUID              `json:"relatedId"`
	CreatedAt time.Time               `json:"createdAt"`
}

func newNotificationDTO(n *models.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Read:      n.Read,
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt,
	}
}
