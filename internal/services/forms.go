package services

import (
	"errors"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"inkwell/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsImage sniffs the content rather than trusting the client supplied type.
func (u *Upload) IsImage() bool {
	if u == nil || len(u.Data) == 0 {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(u.Data), "image/")
}

func (u *Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

var imageRule = validation.By(func(value interface{}) error {
	u, _ := value.(*Upload)
	if u == nil {
		return nil
	}
	if !u.IsImage() {
		return errors.New("upload a valid image")
	}
	return nil
})

type PostInput struct {
	Title            string            `json:"title"`
	ShortDescription string            `json:"short_description"`
	Body             string            `json:"body"`
	Status           models.PostStatus `json:"status"`
	Image            *Upload           `json:"post_image"`
}

// sluggable rejects titles with nothing left to put in the URL, such as "!!!".
var sluggable = validation.By(func(value interface{}) error {
	title, _ := value.(string)
	if title != "" && models.Slugify(title) == "" {
		return errors.New("title must contain letters or digits")
	}
	return nil
})

func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, 250), sluggable),
		validation.Field(&in.ShortDescription, validation.Required, validation.RuneLength(1, 500)),
		validation.Field(&in.Body, validation.Required),
		validation.Field(&in.Status, validation.Required,
			validation.In(models.StatusDraft, models.StatusPublished).Error("select a valid choice")),
		validation.Field(&in.Image, imageRule),
	)
}

type CommentInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Body  string `json:"body"`
}

func (in CommentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 80)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 250)),
		validation.Field(&in.Body, validation.Required),
	)
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (in ContactInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, 30)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 30)),
		validation.Field(&in.Message, validation.Required, validation.RuneLength(1, 300)),
	)
}

type SignupInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password1   string  `json:"password1"`
	Password2   string  `json:"password2"`
	Description string  `json:"description"`
	Photo       *Upload `json:"profile_photo"`
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, usernameRules()...),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 254)),
		validation.Field(&in.Password1, passwordRules()...),
		validation.Field(&in.Password2, validation.Required, sameAs(in.Password1)),
		validation.Field(&in.Description, validation.RuneLength(0, 200)),
		validation.Field(&in.Photo, imageRule),
	)
}

type LoginInput struct {
	Login    string `json:"username"` // username or email
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Login, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

type ProfileInput struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
	Photo       *Upload `json:"profile_photo"`
}

func (in ProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, usernameRules()...),
		validation.Field(&in.Email, validation.Required, is.EmailFormat, validation.RuneLength(1, 254)),
		validation.Field(&in.Description, validation.RuneLength(0, 200)),
		validation.Field(&in.Photo, imageRule),
	)
}

type PasswordChangeInput struct {
	OldPassword  string `json:"old_password"`
	NewPassword1 string `json:"new_password1"`
	NewPassword2 string `json:"new_password2"`
}

func (in PasswordChangeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OldPassword, validation.Required),
		validation.Field(&in.NewPassword1, passwordRules()...),
		validation.Field(&in.NewPassword2, validation.Required, sameAs(in.NewPassword1)),
	)
}

func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, 150),
		validation.Match(usernamePattern).Error("letters, digits and @/./+/-/_ only"),
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(8, 128).Error("password must be at least 8 characters"),
		validation.By(func(value interface{}) error {
			if s, _ := value.(string); digitsOnly.MatchString(s) {
				return errors.New("password can't be entirely numeric")
			}
			return nil
		}),
	}
}

func sameAs(other string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if s, _ := value.(string); s != other {
			return errors.New("the two password fields didn't match")
		}
		return nil
	})
}
