package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthorHandler struct {
	authors *services.AuthorService
}

func NewAuthorHandler(authors *services.AuthorService) *AuthorHandler {
	return &AuthorHandler{authors: authors}
}

// Profile is the public page of an author.
func (h *AuthorHandler) Profile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	profile, err := h.authors.Profile(c.Request.Context(), id)
	if err != nil {
		renderFailure(c, err)
		return
	}
	Render(c, http.StatusOK, "author/profile.html", gin.H{
		"Author":     profile.Author,
		"TotalPosts": profile.TotalPosts,
	})
}

func (h *AuthorHandler) MyProfile(c *gin.Context) {
	Render(c, http.StatusOK, "account/my_profile.html", gin.H{"Author": middleware.CurrentAuthor(c)})
}

func (h *AuthorHandler) ShowUpdateProfile(c *gin.Context) {
	author := middleware.CurrentAuthor(c)
	Render(c, http.StatusOK, "account/update_profile.html", gin.H{
		"Author": author,
		"Form": services.ProfileInput{
			Username:    author.Username,
			Email:       author.Email,
			Description: author.Description,
		},
	})
}

func (h *AuthorHandler) UpdateProfile(c *gin.Context) {
	author := middleware.CurrentAuthor(c)
	in := services.ProfileInput{
		Username:    postForm(c, "username"),
		Email:       postForm(c, "email"),
		Description: postForm(c, "description"),
	}
	photo, err := formUpload(c, "profile_photo")
	if err != nil {
		renderProfileForm(c, in, map[string]string{"profile_photo": err.Error()})
		return
	}
	in.Photo = photo

	if _, err := h.authors.UpdateProfile(c.Request.Context(), author, in); err != nil {
		if services.IsValidation(err) {
			renderProfileForm(c, in, services.FieldErrors(err))
			return
		}
		renderFailure(c, err)
		return
	}

	addFlash(c, "Profile updated")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthorHandler) ShowPasswordChange(c *gin.Context) {
	Render(c, http.StatusOK, "account/password_change.html", nil)
}

func (h *AuthorHandler) PasswordChange(c *gin.Context) {
	in := services.PasswordChangeInput{
		OldPassword:  c.PostForm("old_password"),
		NewPassword1: c.PostForm("new_password1"),
		NewPassword2: c.PostForm("new_password2"),
	}
	err := h.authors.ChangePassword(c.Request.Context(), middleware.CurrentAuthor(c), in)
	if services.IsValidation(err) {
		Render(c, http.StatusBadRequest, "account/password_change.html", gin.H{"Errors": services.FieldErrors(err)})
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}
	Render(c, http.StatusOK, "account/password_change_done.html", nil)
}

func renderProfileForm(c *gin.Context, in services.ProfileInput, errs map[string]string) {
	Render(c, http.StatusBadRequest, "account/update_profile.html", gin.H{
		"Author": middleware.CurrentAuthor(c),
		"Form":   in,
		"Errors": errs,
	})
}
