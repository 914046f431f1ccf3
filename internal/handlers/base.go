package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Render helper to inject common variables like the current author and flash messages.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if author := middleware.CurrentAuthor(c); author != nil {
		obj["CurrentUser"] = author
	}

	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		obj["Flashes"] = flashes
		_ = session.Save()
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Code": code, "Error": message})
}

// renderFailure maps a service error onto an error page.
func renderFailure(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	log.Error().Err(err).
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("path", c.Request.URL.Path).
		Msg("Request failed")
	RenderError(c, http.StatusInternalServerError, "Something went wrong")
}

func addFlash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Msg("Failed to save flash message")
	}
}

// paramID parses a numeric path parameter. Malformed ids are treated like missing rows.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formUpload reads an optional file field. A missing file yields nil.
func formUpload(c *gin.Context, field string) (*services.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if fh.Size > storage.MaxUploadSize {
		return nil, storage.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func postForm(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

// safeNext only follows local redirect targets.
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return fallback
}
