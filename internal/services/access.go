package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/models"
	"gorm.io/gorm"
)

// AccessService holds every membership and ownership decision. Handlers and
// the other services never query group_memberships for authorization
// themselves.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// WithTx returns a copy bound to tx so checks run inside the caller's
// transaction.
func (a *AccessService) WithTx(tx *gorm.DB) *AccessService {
	return &AccessService{DB: tx}
}

func (a *AccessService) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := a.DB.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, apperr.Internal("failed to check membership", err)
	}
	return count > 0, nil
}

// RequireMember rejects callers without a membership row for the group. A
// group that does not exist has no members, so it is also a 403 here.
func (a *AccessService) RequireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	ok, err := a.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("access denied to this group")
	}
	return nil
}

// RequireGroupMember loads the group and checks that userID belongs to it.
func (a *AccessService) RequireGroupMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := a.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := a.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return group, nil
}

// RequireOwner loads the group and checks that userID is its owner. Plain
// membership is not enough to manage members.
func (a *AccessService) RequireOwner(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := a.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != userID {
		return nil, apperr.Forbidden("only the group owner can add members")
	}
	return group, nil
}

// AuthorizeTaskCreate checks the caller and the assignee independently. A
// caller outside the group is forbidden; an assignee outside it is a bad
// request.
func (a *AccessService) AuthorizeTaskCreate(ctx context.Context, groupID, callerID, assigneeID uuid.UUID) error {
	if err := a.RequireMember(ctx, groupID, callerID); err != nil {
		return err
	}
	if assigneeID == callerID {
		return nil
	}
	ok, err := a.IsMember(ctx, groupID, assigneeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("assigned user is not a member of this group")
	}
	return nil
}

// AuthorizeTaskAccess loads a task and checks membership in its group.
func (a *AccessService) AuthorizeTaskAccess(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := a.DB.WithContext(ctx).First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load task", err)
	}

	ok, err := a.IsMember(ctx, task.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("access denied to this task")
	}
	return &task, nil
}

// AuthorizeNotification allows a user to touch only their own notifications.
func AuthorizeNotification(notification *models.Notification, userID uuid.UUID) error {
	if notification.UserID != userID {
		return apperr.Forbidden("access denied to this notification")
	}
	return nil
}

// CompletionRecipients returns who hears about a task being marked done:
// the assignee and the creator, minus whoever made the change.
func CompletionRecipients(task *models.Task, callerID uuid.UUID) []uuid.UUID {
	recipients := make([]uuid.UUID, 0, 2)
	for _, id := range []uuid.UUID{task.AssignedTo, task.CreatedBy} {
		if id == uuid.Nil || id == callerID {
			continue
		}
		if len(recipients) > 0 && recipients[0] == id {
			continue
		}
		recipients = append(recipients, id)
	}
	return recipients
}

func (a *AccessService) loadGroup(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := a.DB.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("group not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load group", err)
	}
	return &group, nil
}
