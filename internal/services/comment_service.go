package services

import (
	"context"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentService struct {
	db       *gorm.DB
	listing  *listingCache
	notifier *Notifier
	blog     config.BlogConfig
}

func NewCommentService(db *gorm.DB, c cache.Cache, notifier *Notifier, cfg *config.Config) *CommentService {
	return &CommentService{
		db:       db,
		listing:  newListingCache(c, cfg.Cache.TTL),
		notifier: notifier,
		blog:     cfg.Blog,
	}
}

type CommentPage struct {
	Comments []models.Comment
	Page     pagination.Page
}

// Submit stores a reader's comment on a published post. It stays hidden until activated.
func (s *CommentService) Submit(ctx context.Context, postID uint, in CommentInput) (*models.Post, *models.Comment, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").
		Where("status = ?", models.StatusPublished).
		First(&post, postID).Error
	if err != nil {
		return nil, nil, notFound(err)
	}
	if err := in.Validate(); err != nil {
		return &post, nil, err
	}

	comment := models.Comment{
		PostID: post.ID,
		Name:   in.Name,
		Email:  in.Email,
		Body:   in.Body,
		Active: false,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return &post, nil, fmt.Errorf("save comment: %w", err)
	}
	comment.Post = post

	s.notifier.CommentSubmitted(ctx, &post, &comment)
	return &post, &comment, nil
}

// ActivateMany activates comments in one statement. No notifications are sent.
func (s *CommentService) ActivateMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id IN ?", ids).
		Update("active", true)
	if res.Error != nil {
		return 0, fmt.Errorf("activate comments: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.listing.invalidate(ctx)
	}
	return res.RowsAffected, nil
}

// Activate publishes a single comment and notifies the post's author.
// Activating an already active comment changes nothing.
func (s *CommentService) Activate(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Post.Author").First(&comment, id).Error; err != nil {
		return nil, notFound(err)
	}
	if comment.Active {
		return &comment, nil
	}

	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND active = ?", comment.ID, false).
		Update("active", true)
	if res.Error != nil {
		return nil, fmt.Errorf("activate comment %d: %w", id, res.Error)
	}
	comment.Active = true
	// Another moderator got there first.
	if res.RowsAffected == 0 {
		return &comment, nil
	}

	// The listing shows active comment counts.
	s.listing.invalidate(ctx)
	s.notifier.CommentActivated(ctx, &comment.Post, &comment)
	return &comment, nil
}

// ListActive pages through the visible comments of a post, oldest first.
func (s *CommentService) ListActive(ctx context.Context, postID uint, rawPage string) (*CommentPage, error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND active = ?", postID, true)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	page := pagination.New(rawPage, total, s.blog.CommentsPerPage)

	var comments []models.Comment
	err := q.Session(&gorm.Session{}).
		Order("created ASC").
		Order("id ASC").
		Scopes(page.Scope).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &CommentPage{Comments: comments, Page: page}, nil
}

// ListPending returns the comments awaiting moderation on post. Only the post's author
// and staff get them; everyone else gets an empty list.
func (s *CommentService) ListPending(ctx context.Context, post *models.Post, viewer *models.Author) ([]models.Comment, error) {
	if viewer == nil || !(viewer.IsStaff || post.OwnedBy(viewer)) {
		return nil, nil
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND active = ?", post.ID, false).
		Order("created ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list pending comments: %w", err)
	}
	return comments, nil
}

// ListForModeration pages through every comment, newest first, for staff.
func (s *CommentService) ListForModeration(ctx context.Context, viewer *models.Author, rawPage string) (*CommentPage, error) {
	if viewer == nil || !viewer.IsStaff {
		return nil, ErrForbidden
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	page := pagination.New(rawPage, total, s.blog.ModerationPerPage)

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Post").
		Order("created DESC").
		Order("id DESC").
		Scopes(page.Scope).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &CommentPage{Comments: comments, Page: page}, nil
}
