package services

import (
	"context"
	"fmt"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/rs/zerolog/log"
)

type NotificationKind string

const (
	KindNewPost          NotificationKind = "new_post"
	KindNewComment       NotificationKind = "new_comment"
	KindCommentActivated NotificationKind = "comment_activated"
	KindContact          NotificationKind = "contact"
)

// Notification is a fully addressed email. It is the queue payload.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Subject string           `json:"subject"`
	Body    string           `json:"body"`
	From    string           `json:"from"`
	To      []string         `json:"to"`
}

func (n Notification) Message() Message {
	return Message{From: n.From, To: n.To, Subject: n.Subject, Body: n.Body}
}

// Notifier turns domain events into notifications. Dispatch errors are logged and swallowed
// so a broken queue never fails the request that caused the event.
type Notifier struct {
	baseURL    string
	from       string
	admin      string
	dispatcher Dispatcher
}

func NewNotifier(cfg *config.Config, dispatcher Dispatcher) *Notifier {
	return &Notifier{
		baseURL:    cfg.App.BaseURL(),
		from:       cfg.Mail.From,
		admin:      cfg.Mail.Admin,
		dispatcher: dispatcher,
	}
}

// PostPublished fires after every save of a published post.
func (n *Notifier) PostPublished(ctx context.Context, post *models.Post, author *models.Author) {
	n.send(ctx, Notification{
		Kind:    KindNewPost,
		Subject: "New post",
		Body: fmt.Sprintf("New post. Title: %s by %s. Link to the post: %s",
			post.Title, author, n.link(post)),
		From: n.from,
		To:   []string{n.admin},
	})
}

// CommentSubmitted fires when a reader leaves a comment, before moderation.
func (n *Notifier) CommentSubmitted(ctx context.Context, post *models.Post, comment *models.Comment) {
	n.send(ctx, Notification{
		Kind:    KindNewComment,
		Subject: "New comment",
		Body: fmt.Sprintf("New comment on the post: %s by %s - %s",
			post.Title, &post.Author, comment.Body),
		From: n.from,
		To:   []string{n.admin},
	})
}

// CommentActivated tells the post's author that a comment went live.
func (n *Notifier) CommentActivated(ctx context.Context, post *models.Post, comment *models.Comment) {
	to := []string{n.admin}
	if post.Author.Email != "" && post.Author.Email != n.admin {
		to = append(to, post.Author.Email)
	}
	n.send(ctx, Notification{
		Kind:    KindCommentActivated,
		Subject: "New comment",
		Body: fmt.Sprintf("You have a new comment on the post %s from %s. Link to the post: %s",
			post.Title, comment.Name, n.link(post)),
		From: n.from,
		To:   to,
	})
}

// ContactSubmitted forwards a contact form to the administrator, sent as the visitor.
func (n *Notifier) ContactSubmitted(ctx context.Context, in ContactInput) {
	n.send(ctx, Notification{
		Kind:    KindContact,
		Subject: in.Name,
		Body:    in.Message,
		From:    in.Email,
		To:      []string{n.admin},
	})
}

func (n *Notifier) link(post *models.Post) string {
	return n.baseURL + post.AbsolutePath()
}

func (n *Notifier) send(ctx context.Context, note Notification) {
	if err := n.dispatcher.Dispatch(ctx, note); err != nil {
		log.Error().Err(err).Str("kind", string(note.Kind)).Msg("Failed to dispatch notification")
	}
}
