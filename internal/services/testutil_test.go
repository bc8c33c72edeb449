package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/internal/database"
	"github.com/kamy/api/internal/models"
	"github.com/kamy/api/pkg/utils"
	"gorm.io/gorm"
)

type testServices struct {
	db            *gorm.DB
	access        *AccessService
	users         *UserService
	groups        *GroupService
	tasks         *TaskService
	notifications *NotificationService
	queue         NotificationQueue
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}
	return db
}

func setupTestServices(t *testing.T, mode string) *testServices {
	t.Helper()

	db := setupTestDB(t)
	access := NewAccessService(db)
	users := NewUserService(db)
	notifications := NewNotificationService(db)

	var queue NotificationQueue
	if mode == config.NotificationsBestEffort {
		queue = NewChannelQueue(notifications, 16)
		t.Cleanup(func() { _ = queue.Close() })
	}
	notifier := NewNotifier(mode, notifications, queue)

	return &testServices{
		db:            db,
		access:        access,
		users:         users,
		groups:        NewGroupService(db, access, users, notifier),
		tasks:         NewTaskService(db, access, notifier),
		notifications: notifications,
		queue:         queue,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := models.User{
		Name:         name,
		Email:        NormalizeEmail(fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8])),
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	return user
}

func createTestGroup(t *testing.T, s *testServices, owner models.User, name string) models.Group {
	t.Helper()

	summary, err := s.groups.Create(context.Background(), owner.ID, name)
	if err != nil {
		t.Fatalf("failed creating group: %v", err)
	}
	return summary.Group
}

func addTestMember(t *testing.T, db *gorm.DB, groupID, userID uuid.UUID) {
	t.Helper()

	if err := db.Create(&models.GroupMembership{GroupID: groupID, UserID: userID}).Error; err != nil {
		t.Fatalf("failed adding membership: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("failed counting rows: %v", err)
	}
	return count
}
