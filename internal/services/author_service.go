package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuthorService struct {
	db      *gorm.DB
	listing *listingCache
	storage storage.Storage
}

func NewAuthorService(db *gorm.DB, c cache.Cache, st storage.Storage) *AuthorService {
	return &AuthorService{db: db, listing: newListingCache(c, 0), storage: st}
}

type AuthorProfile struct {
	Author     *models.Author
	TotalPosts int64
}

func (s *AuthorService) Register(ctx context.Context, in SignupInput) (*models.Author, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Username, in.Email, 0); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	author := models.Author{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hash,
		Description: in.Description,
		IsActive:    true,
	}
	if in.Photo != nil {
		key, err := storeImage(ctx, s.storage, in.Photo, storage.ProfilePhotosFolder, storage.ProfilePhotoBound, "profile_photo")
		if err != nil {
			return nil, err
		}
		author.ProfilePhoto = key
	}

	if err := s.db.WithContext(ctx).Create(&author).Error; err != nil {
		dropImage(ctx, s.storage, author.ProfilePhoto)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldError("username", ErrUsernameTaken)
		}
		return nil, fmt.Errorf("create author: %w", err)
	}
	log.Info().Uint("author_id", author.ID).Str("username", author.Username).Msg("Author registered")
	return &author, nil
}

// Authenticate accepts either the username or the email address as the login.
func (s *AuthorService) Authenticate(ctx context.Context, in LoginInput) (*models.Author, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	login := strings.TrimSpace(in.Login)

	var author models.Author
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("load author: %w", err)
	}
	if !author.IsActive || !utils.CheckPasswordHash(in.Password, author.Password) {
		return nil, ErrBadCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&author).UpdateColumn("last_login", now).Error; err != nil {
		log.Warn().Err(err).Uint("author_id", author.ID).Msg("Failed to record last login")
	}
	author.LastLogin = &now
	return &author, nil
}

func (s *AuthorService) Get(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := s.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &author, nil
}

// Profile loads an author with the number of posts they have written, drafts included.
func (s *AuthorService) Profile(ctx context.Context, id uint) (*AuthorProfile, error) {
	author, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", id).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	return &AuthorProfile{Author: author, TotalPosts: total}, nil
}

func (s *AuthorService) UpdateProfile(ctx context.Context, author *models.Author, in ProfileInput) (*models.Author, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Username, in.Email, author.ID); err != nil {
		return nil, err
	}

	updated := *author
	updated.Username = in.Username
	updated.Email = in.Email
	updated.Description = in.Description
	if in.Photo != nil {
		key, err := storeImage(ctx, s.storage, in.Photo, storage.ProfilePhotosFolder, storage.ProfilePhotoBound, "profile_photo")
		if err != nil {
			return nil, err
		}
		updated.ProfilePhoto = key
	}

	err := s.db.WithContext(ctx).Model(&updated).
		Select("username", "email", "description", "profile_photo").
		Updates(&updated).Error
	if err != nil {
		if updated.ProfilePhoto != author.ProfilePhoto {
			dropImage(ctx, s.storage, updated.ProfilePhoto)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldError("username", ErrUsernameTaken)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if updated.ProfilePhoto != author.ProfilePhoto {
		dropImage(ctx, s.storage, author.ProfilePhoto)
	}
	// Cached listings carry the author's name.
	s.listing.invalidate(ctx)
	return &updated, nil
}

func (s *AuthorService) ChangePassword(ctx context.Context, author *models.Author, in PasswordChangeInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if !utils.CheckPasswordHash(in.OldPassword, author.Password) {
		return fieldError("old_password", ErrWrongPassword)
	}
	hash, err := utils.HashPassword(in.NewPassword1)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(author).UpdateColumn("password", hash).Error; err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	author.Password = hash
	return nil
}

// EnsureStaff creates the staff account if no author with that username exists yet.
func (s *AuthorService) EnsureStaff(ctx context.Context, username, email, password string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Author{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return fmt.Errorf("look up staff: %w", err)
	}
	if n > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	staff := models.Author{
		Username: username,
		Email:    strings.ToLower(email),
		Password: hash,
		IsStaff:  true,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(&staff).Error; err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	log.Info().Str("username", username).Msg("Staff account created")
	return nil
}

func (s *AuthorService) checkUnique(ctx context.Context, username, email string, exceptID uint) error {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Author{})
	if err := q.Where("username = ? AND id <> ?", username, exceptID).Count(&n).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return fieldError("username", ErrUsernameTaken)
	}
	q = s.db.WithContext(ctx).Model(&models.Author{})
	if err := q.Where("email = ? AND id <> ?", email, exceptID).Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return fieldError("email", ErrEmailTaken)
	}
	return nil
}
