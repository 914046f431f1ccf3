package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"inkwell/internal/config"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	sent []Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNotificationTaskHandlerDelivers(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewNotificationTaskHandler(mailer)

	payload, err := json.Marshal(Notification{
		Kind: KindContact, Subject: "Visitor", Body: "hello",
		From: "visitor@example.org", To: []string{"admin@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(TaskType(KindContact), payload)))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "visitor@example.org", mailer.sent[0].From)
	assert.Equal(t, "Visitor", mailer.sent[0].Subject)
}

func TestNotificationTaskHandlerErrors(t *testing.T) {
	h := NewNotificationTaskHandler(&fakeMailer{})
	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskType(KindNewPost), []byte("{broken")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	empty, _ := json.Marshal(Notification{Kind: KindNewPost})
	err = h.ProcessTask(context.Background(), asynq.NewTask(TaskType(KindNewPost), empty))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	smtpDown := errors.New("connection refused")
	failing := NewNotificationTaskHandler(&fakeMailer{err: smtpDown})
	ok, _ := json.Marshal(Notification{Kind: KindNewPost, To: []string{"admin@example.com"}})
	err = failing.ProcessTask(context.Background(), asynq.NewTask(TaskType(KindNewPost), ok))
	assert.ErrorIs(t, err, smtpDown)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestMessageBytesStripsHeaderInjection(t *testing.T) {
	msg := Message{
		From:    "a@example.org",
		To:      []string{"b@example.org", "c@example.org"},
		Subject: "hi\r\nBcc: evil@example.org",
		Body:    "line1\nline2",
	}
	raw := string(msg.Bytes())

	assert.Contains(t, raw, "To: b@example.org, c@example.org\r\n")
	assert.Contains(t, raw, "Subject: hi  Bcc: evil@example.org\r\n")
	assert.True(t, strings.HasSuffix(raw, "line1\r\nline2"))
}

func TestInlineDispatcherDelivers(t *testing.T) {
	done := make(chan Message, 1)
	d := NewInlineDispatcher(mailerFunc(func(_ context.Context, msg Message) error {
		done <- msg
		return nil
	}))

	require.NoError(t, d.Dispatch(context.Background(), Notification{Kind: KindNewPost, Subject: "New post", To: []string{"x@example.org"}}))
	msg := <-done
	assert.Equal(t, "New post", msg.Subject)
}

type mailerFunc func(ctx context.Context, msg Message) error

func (f mailerFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func TestNewMailer(t *testing.T) {
	cfg := testConfig().Mail
	m, err := NewMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, ConsoleMailer{}, m)

	cfg.Backend = "smtp"
	m, err = NewMailer(cfg)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	cfg.Backend = "pigeon"
	_, err = NewMailer(cfg)
	assert.Error(t, err)
}

func TestTaskHandlerRegistersEveryKind(t *testing.T) {
	mux := asynq.NewServeMux()
	NewNotificationTaskHandler(&fakeMailer{}).Register(mux)

	for _, kind := range []NotificationKind{KindNewPost, KindNewComment, KindCommentActivated, KindContact} {
		_, pattern := mux.Handler(asynq.NewTask(TaskType(kind), nil))
		assert.Equal(t, TaskType(kind), pattern)
	}
}

func TestQueueDispatcherReportsEnqueueFailure(t *testing.T) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: "127.0.0.1:1"})
	defer client.Close()
	d := NewQueueDispatcher(client, config.QueueConfig{Name: "mail", MaxRetry: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := d.Dispatch(ctx, Notification{Kind: KindContact, Subject: "hi", To: []string{"admin@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue contact notification")
	assert.Equal(t, "notify:contact", TaskType(KindContact))
}
