package services

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/storage"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostService struct {
	db       *gorm.DB
	listing  *listingCache
	storage  storage.Storage
	notifier *Notifier
	blog     config.BlogConfig
}

func NewPostService(db *gorm.DB, c cache.Cache, st storage.Storage, notifier *Notifier, cfg *config.Config) *PostService {
	return &PostService{
		db:       db,
		listing:  newListingCache(c, cfg.Cache.TTL),
		storage:  st,
		notifier: notifier,
		blog:     cfg.Blog,
	}
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []models.Post   `json:"posts"`
	Page  pagination.Page `json:"page"`
}

type AuthorPosts struct {
	Author *models.Author
	PostPage
}

func (s *PostService) Create(ctx context.Context, author *models.Author, in PostInput) (*models.Post, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTitle(ctx, in.Title, 0); err != nil {
		return nil, err
	}

	post := models.Post{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		Body:             in.Body,
		Status:           in.Status,
		AuthorID:         author.ID,
	}
	if in.Image != nil {
		key, err := storeImage(ctx, s.storage, in.Image, storage.PostImagesFolder, storage.PostImageBound, "post_image")
		if err != nil {
			return nil, err
		}
		post.PostImage = key
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&post).Error; err != nil {
		dropImage(ctx, s.storage, post.PostImage)
		return nil, s.saveError(err)
	}
	post.Author = *author

	s.afterSave(ctx, &post)
	return &post, nil
}

// StoreBodyImage saves an image referenced from a post body and returns its public URL.
func (s *PostService) StoreBodyImage(ctx context.Context, author *models.Author, up *Upload) (string, error) {
	if !up.IsImage() {
		return "", fieldError("image", errors.New("upload a valid image"))
	}
	key, err := storeImage(ctx, s.storage, up, storage.BodyImagesFolder, storage.PostImageBound, "image")
	if err != nil {
		return "", err
	}
	log.Info().Uint("author_id", author.ID).Str("key", key).Msg("Body image stored")
	return s.storage.URL(key), nil
}

// GetOwned loads a post for its author. Anyone else gets ErrNotFound.
func (s *PostService) GetOwned(ctx context.Context, viewer *models.Author, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, notFound(err)
	}
	if !post.OwnedBy(viewer) {
		return nil, ErrNotFound
	}
	return &post, nil
}

func (s *PostService) Update(ctx context.Context, viewer *models.Author, id uint, in PostInput) (*models.Post, error) {
	post, err := s.GetOwned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTitle(ctx, in.Title, post.ID); err != nil {
		return nil, err
	}

	oldImage := post.PostImage
	if in.Image != nil {
		key, err := storeImage(ctx, s.storage, in.Image, storage.PostImagesFolder, storage.PostImageBound, "post_image")
		if err != nil {
			return nil, err
		}
		post.PostImage = key
	}
	post.Title = in.Title
	post.ShortDescription = in.ShortDescription
	post.Body = in.Body
	post.Status = in.Status

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		if post.PostImage != oldImage {
			dropImage(ctx, s.storage, post.PostImage)
		}
		return nil, s.saveError(err)
	}
	if post.PostImage != oldImage {
		dropImage(ctx, s.storage, oldImage)
	}

	s.afterSave(ctx, post)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, viewer *models.Author, id uint) error {
	post, err := s.GetOwned(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Post{}, post.ID).Error; err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	dropImage(ctx, s.storage, post.PostImage)
	s.invalidate(ctx)
	return nil
}

// GetBySlug returns the post shown at /slug/. Drafts are only found by their author.
// Titles are unique but slugs are not; the latest publication wins.
func (s *PostService) GetBySlug(ctx context.Context, slug string, viewer *models.Author) (*models.Post, error) {
	q := s.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug)
	if viewer != nil {
		q = q.Where("status = ? OR author_id = ?", models.StatusPublished, viewer.ID)
	} else {
		q = q.Where("status = ?", models.StatusPublished)
	}

	var post models.Post
	if err := q.Order("publish DESC").Order("id DESC").First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// ListPublished pages through published posts, newest first. Pages are cached until something they show changes.
func (s *PostService) ListPublished(ctx context.Context, rawPage string) (*PostPage, error) {
	var cached PostPage
	key, ok := s.listing.load(ctx, pagination.ParseNumber(rawPage), &cached)
	if ok {
		return &cached, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", models.StatusPublished)
	result, err := s.page(ctx, q, rawPage, s.blog.PostsPerPage)
	if err != nil {
		return nil, err
	}

	s.listing.store(ctx, key, result)
	return result, nil
}

// ListByAuthor pages through one author's posts. The author also sees their drafts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, viewer *models.Author, rawPage string) (*AuthorPosts, error) {
	var author models.Author
	if err := s.db.WithContext(ctx).First(&author, authorID).Error; err != nil {
		return nil, notFound(err)
	}

	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID)
	if viewer == nil || viewer.ID != authorID {
		q = q.Where("status = ?", models.StatusPublished)
	}
	result, err := s.page(ctx, q, rawPage, s.blog.AuthorPostsPerPage)
	if err != nil {
		return nil, err
	}
	return &AuthorPosts{Author: &author, PostPage: *result}, nil
}

// Latest returns the newest published posts, for the feed.
func (s *PostService) Latest(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("status = ?", models.StatusPublished).
		Order("publish DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("load latest posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) page(ctx context.Context, q *gorm.DB, rawPage string, size int) (*PostPage, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	page := pagination.New(rawPage, total, size)

	var posts []models.Post
	err := q.Session(&gorm.Session{}).
		Preload("Author").
		Order("publish DESC").
		Order("id DESC").
		Scopes(page.Scope).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := s.fillCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page}, nil
}

// fillCommentCounts sets CommentCount to the number of active comments of each post.
func (s *PostService) fillCommentCounts(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ? AND active = ?", ids, true).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.Total
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}

func (s *PostService) checkTitle(ctx context.Context, title string, exceptID uint) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("title = ? AND id <> ?", title, exceptID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if n > 0 {
		return fieldError("title", ErrTitleTaken)
	}
	return nil
}

func (s *PostService) saveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fieldError("title", ErrTitleTaken)
	}
	return fmt.Errorf("save post: %w", err)
}

// afterSave runs after every successful insert or update.
func (s *PostService) afterSave(ctx context.Context, post *models.Post) {
	s.invalidate(ctx)
	if post.IsPublished() {
		s.notifier.PostPublished(ctx, post, &post.Author)
	}
}

func (s *PostService) invalidate(ctx context.Context) {
	s.listing.invalidate(ctx)
}
