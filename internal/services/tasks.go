package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/models"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	Title       string
	Description string
	GroupID     uuid.UUID
	AssignedTo  uuid.UUID
	DueDate     time.Time
}

type TaskService struct {
	DB       *gorm.DB
	Access   *AccessService
	Notifier *Notifier
	now      func() time.Time
}

func NewTaskService(db *gorm.DB, access *AccessService, notifier *Notifier) *TaskService {
	return &TaskService{DB: db, Access: access, Notifier: notifier, now: time.Now}
}

// ListByGroup is gated by the caller's membership, not by assignment.
func (s *TaskService) ListByGroup(ctx context.Context, groupID, userID uuid.UUID) ([]models.Task, error) {
	if err := s.Access.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Assignee").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal("failed to list tasks", err)
	}
	return tasks, nil
}

// ListAssigned returns the caller's tasks, pending first, then by due date.
func (s *TaskService) ListAssigned(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Group").
		Preload("Assignee").
		Where("assigned_to = ?", userID).
		Order("CASE WHEN status = 'pending' THEN 0 ELSE 1 END").
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal("failed to list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	task, err := s.Access.AuthorizeTaskAccess(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, s.DB, task.ID)
}

// Create inserts a pending task, touches the group and notifies the assignee
// when it is not the creator.
func (s *TaskService) Create(ctx context.Context, callerID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	dueDate := input.DueDate
	y, m, d := dueDate.Date()
	dueDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	task := models.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		GroupID:     input.GroupID,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   callerID,
		DueDate:     dueDate,
		Status:      models.TaskStatusPending,
	}

	err := s.Notifier.Transaction(ctx, s.DB, func(tx *gorm.DB, emit Emit) error {
		if err := s.Access.WithTx(tx).AuthorizeTaskCreate(ctx, input.GroupID, callerID, input.AssignedTo); err != nil {
			return err
		}
		if err := tx.Create(&task).Error; err != nil {
			return apperr.Internal("failed to create task", err)
		}
		if err := s.touchGroup(tx, task.GroupID); err != nil {
			return err
		}
		if task.AssignedTo != callerID {
			emit(taskAssignedNotification(&task))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.withRelations(ctx, s.DB, task.ID)
}

// UpdateStatus moves a task between pending and done in either direction.
// Any member of the task's group may do it.
func (s *TaskService) UpdateStatus(ctx context.Context, taskID, callerID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperr.Validation("status must be 'pending' or 'done'")
	}

	task, err := s.Access.AuthorizeTaskAccess(ctx, taskID, callerID)
	if err != nil {
		return nil, err
	}

	err = s.Notifier.Transaction(ctx, s.DB, func(tx *gorm.DB, emit Emit) error {
		now := s.now().UTC()
		err := tx.Model(&models.Task{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{"status": status, "updated_at": now}).Error
		if err != nil {
			return apperr.Internal("failed to update task", err)
		}
		if err := s.touchGroup(tx, task.GroupID); err != nil {
			return err
		}

		if status == models.TaskStatusDone {
			for _, recipient := range CompletionRecipients(task, callerID) {
				emit(taskCompletedNotification(task, recipient))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.withRelations(ctx, s.DB, task.ID)
}

func (s *TaskService) touchGroup(tx *gorm.DB, groupID uuid.UUID) error {
	err := tx.Model(&models.Group{}).
		Where("id = ?", groupID).
		Update("updated_at", s.now().UTC()).Error
	if err != nil {
		return apperr.Internal("failed to update group", err)
	}
	return nil
}

func (s *TaskService) withRelations(ctx context.Context, db *gorm.DB, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := db.WithContext(ctx).
		Preload("Group").
		Preload("Assignee").
		Preload("Creator").
		First(&task, "id = ?", taskID).Error
	if err != nil {
		return nil, apperr.Internal("failed to load task", err)
	}
	return &task, nil
}
