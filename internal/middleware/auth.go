package middleware

import (
	"net/http"
	"net/url"

	"inkwell/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	CurrentAuthorKey = "author"
	SessionUserKey   = "user_id"
	LoginPath        = "/accounts/login/"
)

// LoadUser resolves the session's author and stores it on the context.
// A session pointing at a missing or disabled account is cleared.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var author models.Author
			err := db.WithContext(c.Request.Context()).First(&author, userID).Error
			if err == nil && author.IsActive {
				c.Set(CurrentAuthorKey, &author)
			} else {
				session.Delete(SessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// CurrentAuthor returns the logged in author, or nil for anonymous readers.
func CurrentAuthor(c *gin.Context) *models.Author {
	v, ok := c.Get(CurrentAuthorKey)
	if !ok {
		return nil
	}
	author, _ := v.(*models.Author)
	return author
}

// AuthRequired sends anonymous visitors to the login page and back afterwards.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentAuthor(c) == nil {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffRequired hides staff pages from everyone else. notFound writes the response
// they get, normally the site's 404 page.
func StaffRequired(notFound gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		author := CurrentAuthor(c)
		if author == nil || !author.IsStaff {
			notFound(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
