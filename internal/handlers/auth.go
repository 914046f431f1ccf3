package handlers

import (
	"errors"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	authors *services.AuthorService
}

func NewAuthHandler(authors *services.AuthorService) *AuthHandler {
	return &AuthHandler{authors: authors}
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "account/signup.html", gin.H{"Form": services.SignupInput{}})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	in := services.SignupInput{
		Username:    postForm(c, "username"),
		Email:       postForm(c, "email"),
		Password1:   c.PostForm("password1"),
		Password2:   c.PostForm("password2"),
		Description: postForm(c, "description"),
	}
	photo, err := formUpload(c, "profile_photo")
	if err != nil {
		renderSignup(c, in, map[string]string{"profile_photo": err.Error()})
		return
	}
	in.Photo = photo

	author, err := h.authors.Register(c.Request.Context(), in)
	if services.IsValidation(err) {
		renderSignup(c, in, services.FieldErrors(err))
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}

	if err := login(c, author); err != nil {
		renderFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if middleware.CurrentAuthor(c) != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	Render(c, http.StatusOK, "account/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	in := services.LoginInput{
		Login:    postForm(c, "username"),
		Password: c.PostForm("password"),
	}
	next := c.PostForm("next")

	author, err := h.authors.Authenticate(c.Request.Context(), in)
	if errors.Is(err, services.ErrBadCredentials) || services.IsValidation(err) {
		Render(c, http.StatusBadRequest, "account/login.html", gin.H{
			"Error":    services.ErrBadCredentials.Error(),
			"Username": in.Login,
			"Next":     next,
		})
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}

	if err := login(c, author); err != nil {
		renderFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(next, "/"))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session")
	}
	Render(c, http.StatusOK, "account/logged_out.html", nil)
}

func login(c *gin.Context, author *models.Author) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, author.ID)
	if err := session.Save(); err != nil {
		return err
	}
	c.Set(middleware.CurrentAuthorKey, author)
	log.Info().Uint("author_id", author.ID).Msg("Author logged in")
	return nil
}

func renderSignup(c *gin.Context, in services.SignupInput, errs map[string]string) {
	in.Password1, in.Password2 = "", ""
	Render(c, http.StatusBadRequest, "account/signup.html", gin.H{"Form": in, "Errors": errs})
}
