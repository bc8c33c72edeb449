package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/pkg/logger"
)

const TaskTypeNotification = "notification:create"

var ErrQueueClosed = errors.New("notification queue is closed")
var ErrQueueFull = errors.New("notification queue is full")

// NotificationQueue delivers notifications after the triggering mutation has
// committed.
type NotificationQueue interface {
	Enqueue(ctx context.Context, input NotificationInput) error
	// IsAsync reports whether delivery happens outside this process.
	IsAsync() bool
	Close() error
}

// NewNotificationQueue picks the Redis-backed queue when Redis is enabled and
// reachable, otherwise an in-process channel queue writing through store.
func NewNotificationQueue(cfg config.Config, store *NotificationService) NotificationQueue {
	if cfg.Redis.Enabled {
		queue, err := NewAsyncQueue(cfg.Redis)
		if err == nil {
			logger.Info("notification_queue_initialized", map[string]interface{}{
				"backend": "redis",
				"addr":    cfg.Redis.Addr,
			})
			return queue
		}
		logger.Warn("notification_queue_redis_unavailable", map[string]interface{}{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
	}

	logger.Info("notification_queue_initialized", map[string]interface{}{
		"backend":     "channel",
		"buffer_size": cfg.Notifications.BufferSize,
	})
	return NewChannelQueue(store, cfg.Notifications.BufferSize)
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// AsyncQueue hands notifications to asynq; a Worker inserts them.
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg config.RedisConfig) (*AsyncQueue, error) {
	opt := redisOpt(cfg)
	client := asynq.NewClient(opt)

	inspector := asynq.NewInspector(opt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(ctx context.Context, input NotificationInput) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeNotification, payload),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug("notification_enqueued", map[string]interface{}{
		"task_id": info.ID,
		"user_id": input.UserID.String(),
		"type":    string(input.Type),
	})
	return nil
}

func (q *AsyncQueue) IsAsync() bool { return true }

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// ChannelQueue writes notifications from a single background goroutine.
type ChannelQueue struct {
	store  *NotificationService
	queue  chan NotificationInput
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewChannelQueue(store *NotificationService, bufferSize int) *ChannelQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	q := &ChannelQueue{
		store: store,
		queue: make(chan NotificationInput, bufferSize),
		done:  make(chan struct{}),
	}
	go q.process()
	return q
}

// Enqueue never blocks; a full buffer is reported as ErrQueueFull.
func (q *ChannelQueue) Enqueue(ctx context.Context, input NotificationInput) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.queue <- input:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *ChannelQueue) IsAsync() bool { return false }

// Close stops accepting work and waits until the buffer is drained.
func (q *ChannelQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return nil
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()

	<-q.done
	return nil
}

func (q *ChannelQueue) process() {
	defer close(q.done)
	for input := range q.queue {
		if _, err := q.store.Create(context.Background(), q.store.DB, input); err != nil {
			logger.Error("notification_delivery_failed", err, map[string]interface{}{
				"user_id": input.UserID.String(),
				"type":    string(input.Type),
			})
		}
	}
}
