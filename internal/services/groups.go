package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// GroupSummary is a group with the aggregates shown in listings. None of the
// counts are stored.
type GroupSummary struct {
	Group          models.Group
	Tasks          int64
	CompletedTasks int64
	Members        int64
	LastActivity   time.Time
}

type Member struct {
	ID       uuid.UUID
	Name     string
	Email    string
	JoinedAt time.Time
	IsOwner  bool
}

type GroupService struct {
	DB       *gorm.DB
	Access   *AccessService
	Users    *UserService
	Notifier *Notifier
}

func NewGroupService(db *gorm.DB, access *AccessService, users *UserService, notifier *Notifier) *GroupService {
	return &GroupService{DB: db, Access: access, Users: users, Notifier: notifier}
}

// ListForUser returns every group the user belongs to, most recently active
// first.
func (s *GroupService) ListForUser(ctx context.Context, userID uuid.UUID) ([]GroupSummary, error) {
	var groups []models.Group
	err := s.DB.WithContext(ctx).
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, apperr.Internal("failed to list groups", err)
	}

	summaries, err := s.summarize(ctx, groups)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries, nil
}

// Create inserts the group and the owner's membership in one transaction.
func (s *GroupService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*GroupSummary, error) {
	group := models.Group{
		Name:    strings.TrimSpace(name),
		OwnerID: ownerID,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		return tx.Create(&models.GroupMembership{
			GroupID: group.ID,
			UserID:  ownerID,
		}).Error
	})
	if err != nil {
		return nil, apperr.Internal("failed to create group", err)
	}

	return &GroupSummary{
		Group:        group,
		Members:      1,
		LastActivity: group.CreatedAt,
	}, nil
}

func (s *GroupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*GroupSummary, error) {
	group, err := s.Access.RequireGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.summarize(ctx, []models.Group{*group})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// Members lists the group's members, owner first, then by name ignoring
// case.
func (s *GroupService) Members(ctx context.Context, groupID, userID uuid.UUID) ([]Member, error) {
	group, err := s.Access.RequireGroupMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	var memberships []models.GroupMembership
	err = s.DB.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Find(&memberships).Error
	if err != nil {
		return nil, apperr.Internal("failed to list members", err)
	}

	members := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, Member{
			ID:       m.User.ID,
			Name:     m.User.Name,
			Email:    m.User.Email,
			JoinedAt: m.JoinedAt,
			IsOwner:  m.UserID == group.OwnerID,
		})
	}
	SortMembers(members)
	return members, nil
}

// SortMembers orders owner first, then by name with a case-insensitive
// collation.
func SortMembers(members []Member) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].IsOwner != members[j].IsOwner {
			return members[i].IsOwner
		}
		return col.CompareString(members[i].Name, members[j].Name) < 0
	})
}

// AddMember lets the owner add an existing user by email and sends them a
// group_invite notification.
func (s *GroupService) AddMember(ctx context.Context, groupID, callerID uuid.UUID, email string) (*Member, error) {
	group, err := s.Access.RequireOwner(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}

	membership := models.GroupMembership{
		GroupID: groupID,
		UserID:  user.ID,
	}

	err = s.Notifier.Transaction(ctx, s.DB, func(tx *gorm.DB, emit Emit) error {
		ok, err := s.Access.WithTx(tx).IsMember(ctx, groupID, user.ID)
		if err != nil {
			return err
		}
		if ok {
			return apperr.Validation("user is already a member of this group")
		}

		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Validation("user is already a member of this group")
			}
			return apperr.Internal("failed to add member", err)
		}

		emit(groupInviteNotification(group, user.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Member{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		JoinedAt: membership.JoinedAt,
		IsOwner:  false,
	}, nil
}

type memberCount struct {
	GroupID uuid.UUID
	Count   int64
}

// summarize computes counts and last activity for groups with two queries.
// Last activity is the newest task update, or the group creation time when
// there are no tasks.
func (s *GroupService) summarize(ctx context.Context, groups []models.Group) ([]GroupSummary, error) {
	if len(groups) == 0 {
		return []GroupSummary{}, nil
	}

	ids := make([]uuid.UUID, len(groups))
	byID := make(map[uuid.UUID]*GroupSummary, len(groups))
	summaries := make([]GroupSummary, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
		summaries[i] = GroupSummary{Group: g, LastActivity: g.CreatedAt}
		byID[g.ID] = &summaries[i]
	}

	db := s.DB.WithContext(ctx)

	var tasks []models.Task
	if err := db.Select("group_id", "status", "updated_at").Where("group_id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, apperr.Internal("failed to load group tasks", err)
	}
	seen := make(map[uuid.UUID]bool, len(groups))
	for _, t := range tasks {
		summary := byID[t.GroupID]
		if summary == nil {
			continue
		}
		summary.Tasks++
		if t.Status == models.TaskStatusDone {
			summary.CompletedTasks++
		}
		if !seen[t.GroupID] || t.UpdatedAt.After(summary.LastActivity) {
			summary.LastActivity = t.UpdatedAt
			seen[t.GroupID] = true
		}
	}

	var counts []memberCount
	err := db.Model(&models.GroupMembership{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IN ?", ids).
		Group("group_id").
		Scan(&counts).Error
	if err != nil {
		return nil, apperr.Internal("failed to count members", err)
	}
	for _, c := range counts {
		if summary := byID[c.GroupID]; summary != nil {
			summary.Members = c.Count
		}
	}

	return summaries, nil
}
