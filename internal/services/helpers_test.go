package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

func (d *recordingDispatcher) ofKind(kind NotificationKind) []Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Notification
	for _, n := range d.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	disp     *recordingDispatcher
	storage  *storage.LocalStorage
	posts    *PostService
	comments *CommentService
	authors  *AuthorService
	contact  *ContactService
}

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "Inkwell", Env: "test", Schema: "http", Domain: "testserver"},
		Mail:  config.MailConfig{Backend: "console", From: "admin@example.com", Admin: "admin@example.com"},
		Cache: config.CacheConfig{Backend: "lru", Size: 100, TTL: time.Minute},
		Blog: config.BlogConfig{
			PostsPerPage:       5,
			AuthorPostsPerPage: 3,
			CommentsPerPage:    3,
			ModerationPerPage:  20,
			FeedSize:           20,
		},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	conn := openTestDB(t)

	st, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)
	lc, err := cache.NewLocalCache(cfg.Cache.Size)
	require.NoError(t, err)

	disp := &recordingDispatcher{}
	notifier := NewNotifier(cfg, disp)
	return &testEnv{
		db:       conn,
		cfg:      cfg,
		disp:     disp,
		storage:  st,
		posts:    NewPostService(conn, lc, st, notifier, cfg),
		comments: NewCommentService(conn, lc, notifier, cfg),
		authors:  NewAuthorService(conn, lc, st),
		contact:  NewContactService(notifier),
	}
}

func (e *testEnv) newAuthor(t *testing.T, username string) *models.Author {
	t.Helper()
	a, err := e.authors.Register(context.Background(), SignupInput{
		Username:  username,
		Email:     username + "@example.org",
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) newPost(t *testing.T, author *models.Author, title string, status models.PostStatus) *models.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), author, PostInput{
		Title:            title,
		ShortDescription: "short " + title,
		Body:             "body of " + title,
		Status:           status,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) newComment(t *testing.T, post *models.Post, name string, active bool) *models.Comment {
	t.Helper()
	c := models.Comment{PostID: post.ID, Name: name, Email: name + "@example.org", Body: "comment by " + name}
	require.NoError(t, e.db.Omit("Post").Create(&c).Error)
	if active {
		require.NoError(t, e.db.Model(&c).Update("active", true).Error)
		c.Active = true
	}
	return &c
}

func pngUpload(t *testing.T, w, h int) *Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return &Upload{Filename: "photo.png", ContentType: "image/png", Data: buf.Bytes()}
}

var errQueueDown = errors.New("queue down")

// hugePNGUpload is small on disk but decodes past the pixel budget.
func hugePNGUpload(t *testing.T) *Upload {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewGray(image.Rect(0, 0, 7000, 7000))))
	return &Upload{Filename: "huge.png", ContentType: "image/png", Data: buf.Bytes()}
}
