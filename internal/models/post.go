package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Slug             string     `gorm:"size:250;index;not null" json:"slug"`
	AuthorID         uint       `gorm:"not null;index" json:"author_id"`
	Author           Author     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ShortDescription string     `gorm:"size:500;not null" json:"short_description"`
	Body             string     `gorm:"type:text;not null" json:"body"`
	Status           PostStatus `gorm:"size:10;not null;default:'draft';index" json:"status"`
	PostImage        string     `gorm:"size:255" json:"post_image"` // storage key
	Publish          time.Time  `gorm:"index" json:"publish"`
	Created          time.Time  `gorm:"autoCreateTime" json:"created"`
	Updated          time.Time  `gorm:"autoUpdateTime" json:"updated"`

	// Filled by queries, not persisted
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// Slugify transliterates a title into the URL segment used for the post.
func Slugify(title string) string {
	return slug.Make(title)
}

// BeforeSave keeps the slug in step with the title. Publish is refreshed on every
// save, not only on the first publication; listings ordered by it move re-saved posts up.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.Slug = Slugify(p.Title)
	p.Publish = time.Now()
	return nil
}

func (p *Post) IsPublished() bool {
	return p.Status == StatusPublished
}

func (p *Post) OwnedBy(a *Author) bool {
	return a != nil && p.AuthorID == a.ID
}

// AbsolutePath is the site-relative URL of the detail page.
func (p *Post) AbsolutePath() string {
	return "/" + p.Slug + "/"
}

func (p *Post) String() string {
	return p.Title
}
