package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/models"
	"gorm.io/gorm"
)

// NotificationListLimit caps GET /notifications.
const NotificationListLimit = 50

// NotificationInput is one notification to write. It is also the payload of
// queued notification tasks.
type NotificationInput struct {
	UserID    uuid.UUID               `json:"user_id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	RelatedID *uuid.UUID              `json:"related_id,omitempty"`
}

func taskAssignedNotification(task *models.Task) NotificationInput {
	related := task.ID
	return NotificationInput{
		UserID:    task.AssignedTo,
		Title:     "New task assigned",
		Message:   fmt.Sprintf("You were assigned a new task: %s", task.Title),
		Type:      models.NotificationTaskAssigned,
		RelatedID: &related,
	}
}

func taskCompletedNotification(task *models.Task, recipient uuid.UUID) NotificationInput {
	related := task.ID
	return NotificationInput{
		UserID:    recipient,
		Title:     "Task completed",
		Message:   fmt.Sprintf("The task \"%s\" was marked as done", task.Title),
		Type:      models.NotificationTaskCompleted,
		RelatedID: &related,
	}
}

func groupInviteNotification(group *models.Group, recipient uuid.UUID) NotificationInput {
	related := group.ID
	return NotificationInput{
		UserID:    recipient,
		Title:     "Group invitation",
		Message:   fmt.Sprintf("You were added to the group \"%s\"", group.Name),
		Type:      models.NotificationGroupInvite,
		RelatedID: &related,
	}
}

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Create inserts one unread notification using db, which may be a
// transaction.
func (s *NotificationService) Create(ctx context.Context, db *gorm.DB, input NotificationInput) (*models.Notification, error) {
	notification := models.Notification{
		UserID:    input.UserID,
		Title:     input.Title,
		Message:   input.Message,
		Type:      input.Type,
		Read:      false,
		RelatedID: input.RelatedID,
	}
	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &notification, nil
}

// List returns the newest notifications of a user, at most limit.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > NotificationListLimit {
		limit = NotificationListLimit
	}

	var notifications []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, apperr.Internal("failed to list notifications", err)
	}
	return notifications, nil
}

// MarkRead sets read=true on the caller's own notification. Repeating it is
// a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	var notification models.Notification
	err := s.DB.WithContext(ctx).First(&notification, "id = ?", notificationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal("failed to load notification", err)
	}

	if err := AuthorizeNotification(&notification, userID); err != nil {
		return err
	}
	if notification.Read {
		return nil
	}

	err = s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
	if err != nil {
		return apperr.Internal("failed to update notification", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		return 0, apperr.Internal("failed to update notifications", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Internal("failed to count notifications", err)
	}
	return count, nil
}
