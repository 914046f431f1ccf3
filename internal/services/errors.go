package services

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrTitleTaken     = errors.New("a post with this title already exists")
	ErrUsernameTaken  = errors.New("a user with that username already exists")
	ErrEmailTaken     = errors.New("a user with that email already exists")
	ErrBadCredentials = errors.New("please enter a correct username and password")
	ErrWrongPassword  = errors.New("your old password was entered incorrectly")
	ErrForbidden      = errors.New("staff only")
)

// notFound maps gorm's missing-row error onto ErrNotFound and passes everything else through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// FieldErrors flattens a validation error into field name -> message.
// It returns nil when err carries no field errors.
func FieldErrors(err error) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}

func fieldError(field string, err error) error {
	return validation.Errors{field: err}
}
