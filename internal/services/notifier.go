package services

import (
	"context"

	"github.com/kamy/api/internal/apperr"
	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/pkg/logger"
	"gorm.io/gorm"
)

// Emit stages a notification for the mutation in progress.
type Emit func(NotificationInput)

// Notifier runs a mutation and delivers the notifications it emits, either
// inside the same transaction (atomic) or through a queue after commit
// (best_effort).
type Notifier struct {
	mode  string
	store *NotificationService
	queue NotificationQueue
}

func NewNotifier(mode string, store *NotificationService, queue NotificationQueue) *Notifier {
	if mode != config.NotificationsBestEffort || queue == nil {
		mode = config.NotificationsAtomic
	}
	return &Notifier{mode: mode, store: store, queue: queue}
}

func (n *Notifier) Mode() string {
	return n.mode
}

// Transaction runs fn in a database transaction. In atomic mode a failed
// notification insert rolls back fn's writes. In best_effort mode delivery
// failures are logged and never reach the caller.
func (n *Notifier) Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB, emit Emit) error) error {
	var staged []NotificationInput

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staged = staged[:0]
		emit := func(input NotificationInput) {
			staged = append(staged, input)
		}

		if err := fn(tx, emit); err != nil {
			return err
		}

		if n.mode != config.NotificationsAtomic {
			return nil
		}
		for _, input := range staged {
			if _, err := n.store.Create(ctx, tx, input); err != nil {
				return apperr.Internal("failed to create notification", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if n.mode == config.NotificationsBestEffort {
		for _, input := range staged {
			if err := n.queue.Enqueue(ctx, input); err != nil {
				logger.Error("notification_enqueue_failed", err, map[string]interface{}{
					"user_id": input.UserID.String(),
					"type":    string(input.Type),
				})
			}
		}
	}
	return nil
}
