package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/kamy/api/internal/config"
	"github.com/kamy/api/pkg/logger"
)

// Worker consumes notification tasks from Redis and inserts the rows.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	store   *NotificationService
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewWorker returns nil when Redis is disabled.
func NewWorker(cfg config.RedisConfig, store *NotificationService) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("notification_task_failed", err, map[string]interface{}{
					"task_type": task.Type(),
				})
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		store:  store,
	}
}

func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}

	w.mux.HandleFunc(TaskTypeNotification, w.HandleNotificationTask)
	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Info("notification_worker_started", nil)
		if err := w.server.Run(w.mux); err != nil {
			logger.Error("notification_worker_stopped", err, nil)
		}
	}()
}

func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Info("notification_worker_shutdown", nil)
}

// HandleNotificationTask decodes one queued notification and writes it.
// A malformed payload is skipped rather than retried.
func (w *Worker) HandleNotificationTask(ctx context.Context, t *asynq.Task) error {
	var input NotificationInput
	if err := json.Unmarshal(t.Payload(), &input); err != nil {
		return fmt.Errorf("decoding notification payload: %v: %w", err, asynq.SkipRetry)
	}

	if _, err := w.store.Create(ctx, w.store.DB, input); err != nil {
		return err
	}
	return nil
}
