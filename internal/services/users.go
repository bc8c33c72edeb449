package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/models"
	"github.com/kamy/api/pkg/utils"
	"gorm.io/gorm"
)

type UserStats struct {
	GroupsCount       int64
	PendingTasksCount int64
}

type ProfileUpdate struct {
	Name            *string
	Email           *string
	CurrentPassword *string
	NewPassword     *string
}

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		return nil, apperr.Validation("email already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("email already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}
	return &user, nil
}

// Authenticate reports unknown emails and wrong passwords the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	return &user, nil
}

func (s *UserService) Stats(ctx context.Context, id uuid.UUID) (*UserStats, error) {
	var stats UserStats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.GroupMembership{}).Where("user_id = ?", id).Count(&stats.GroupsCount).Error; err != nil {
		return nil, apperr.Internal("failed to count groups", err)
	}
	err := db.Model(&models.Task{}).
		Where("assigned_to = ? AND status = ?", id, models.TaskStatusPending).
		Count(&stats.PendingTasksCount).Error
	if err != nil {
		return nil, apperr.Internal("failed to count tasks", err)
	}
	return &stats, nil
}

// UpdateProfile applies the provided fields. The password only changes when
// both the current and the new password are given and the current one
// matches.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}

	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		updates["name"] = strings.TrimSpace(*update.Name)
	}

	if update.Email != nil {
		email := NormalizeEmail(*update.Email)
		if email != "" && email != user.Email {
			existing, err := s.FindByEmail(ctx, email)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperr.Validation("email already in use")
			}
			updates["email"] = email
		}
	}

	if update.CurrentPassword != nil && update.NewPassword != nil {
		if !utils.CheckPassword(*update.CurrentPassword, user.PasswordHash) {
			return apperr.Unauthorized("current password is incorrect")
		}
		hash, err := utils.HashPassword(*update.NewPassword)
		if err != nil {
			return apperr.Internal("failed to hash password", err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validation("email already in use")
		}
		return apperr.Internal("failed to update profile", err)
	}
	return nil
}
