package models

import (
	"fmt"
	"time"
)

// Comment is left by an anonymous reader and stays hidden until a moderator activates it.
type Comment struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	PostID  uint      `gorm:"not null;index" json:"post_id"`
	Post    Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	Name    string    `gorm:"size:80;not null" json:"name"`
	Email   string    `gorm:"size:250;not null" json:"email"`
	Body    string    `gorm:"type:text;not null" json:"body"`
	Created time.Time `gorm:"autoCreateTime;index" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
	Active  bool      `gorm:"default:false;index" json:"active"`
}

// VisibleTo reports whether viewer (nil for anonymous readers) may see the comment.
// post must be the comment's post.
func (c *Comment) VisibleTo(viewer *Author, post *Post) bool {
	if c.Active {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsStaff || post.OwnedBy(viewer)
}

func (c *Comment) String() string {
	return fmt.Sprintf("Comment by %s on %s", c.Name, c.Post.Title)
}
