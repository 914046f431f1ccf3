package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// NotificationTaskHandler delivers queued notifications in the worker process.
type NotificationTaskHandler struct {
	mailer Mailer
}

func NewNotificationTaskHandler(mailer Mailer) *NotificationTaskHandler {
	return &NotificationTaskHandler{mailer: mailer}
}

// Register binds every notification kind to the handler.
func (h *NotificationTaskHandler) Register(mux *asynq.ServeMux) {
	for _, kind := range []NotificationKind{KindNewPost, KindNewComment, KindCommentActivated, KindContact} {
		mux.Handle(TaskType(kind), h)
	}
}

func (h *NotificationTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var n Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		log.Error().Err(err).Str("type", task.Type()).Msg("Failed to unmarshal notification payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(n.To) == 0 {
		return fmt.Errorf("notification %s has no recipients: %w", n.Kind, asynq.SkipRetry)
	}

	log.Info().Str("kind", string(n.Kind)).Strs("to", n.To).Msg("Processing notification")

	if err := h.mailer.Send(ctx, n.Message()); err != nil {
		log.Error().Err(err).Str("kind", string(n.Kind)).Msg("Failed to send notification")
		return fmt.Errorf("send %s notification: %w", n.Kind, err)
	}
	return nil
}
