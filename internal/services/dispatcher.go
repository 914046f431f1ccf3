package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inkwell/internal/config"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// TaskTypePrefix prefixes the asynq task type of every notification kind.
const TaskTypePrefix = "notify:"

// Dispatcher hands a notification off for delivery. It must not block on delivery itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

func TaskType(kind NotificationKind) string {
	return TaskTypePrefix + string(kind)
}

// QueueDispatcher publishes notifications as asynq tasks consumed by cmd/worker.
type QueueDispatcher struct {
	client   *asynq.Client
	queue    string
	maxRetry int
}

func NewQueueDispatcher(client *asynq.Client, cfg config.QueueConfig) *QueueDispatcher {
	return &QueueDispatcher{client: client, queue: cfg.Name, maxRetry: cfg.MaxRetry}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal %s notification: %w", n.Kind, err)
	}
	task := asynq.NewTask(TaskType(n.Kind), payload)
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(d.queue),
		asynq.MaxRetry(d.maxRetry),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s notification: %w", n.Kind, err)
	}
	log.Debug().Str("task_id", info.ID).Str("type", task.Type()).Msg("Notification enqueued")
	return nil
}

// InlineDispatcher delivers from a goroutine inside the web process.
// Failures are only logged; there is no retry.
type InlineDispatcher struct {
	mailer Mailer
}

func NewInlineDispatcher(mailer Mailer) *InlineDispatcher {
	return &InlineDispatcher{mailer: mailer}
}

func (d *InlineDispatcher) Dispatch(_ context.Context, n Notification) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := d.mailer.Send(ctx, n.Message()); err != nil {
			log.Error().Err(err).Str("kind", string(n.Kind)).Msg("Failed to deliver notification")
		}
	}()
	return nil
}
