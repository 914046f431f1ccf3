package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

// ModerationHandler is the staff-only comment queue.
type ModerationHandler struct {
	comments *services.CommentService
}

func NewModerationHandler(comments *services.CommentService) *ModerationHandler {
	return &ModerationHandler{comments: comments}
}

func (h *ModerationHandler) List(c *gin.Context) {
	result, err := h.comments.ListForModeration(c.Request.Context(), middleware.CurrentAuthor(c), c.Query("page"))
	if errors.Is(err, services.ErrForbidden) {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}
	Render(c, http.StatusOK, "moderation/comments.html", gin.H{
		"Comments": result.Comments,
		"Page":     result.Page,
	})
}

// ActivateMany is the bulk action. It does not notify anyone.
func (h *ModerationHandler) ActivateMany(c *gin.Context) {
	var ids []uint
	for _, raw := range c.PostFormArray("ids") {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	n, err := h.comments.ActivateMany(c.Request.Context(), ids)
	if err != nil {
		renderFailure(c, err)
		return
	}
	addFlash(c, strconv.FormatInt(n, 10)+" comment(s) activated.")
	c.Redirect(http.StatusFound, "/moderation/comments/")
}

// Activate publishes one comment and notifies the post's author.
func (h *ModerationHandler) Activate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	if _, err := h.comments.Activate(c.Request.Context(), id); err != nil {
		renderFailure(c, err)
		return
	}
	addFlash(c, "Comment activated.")
	c.Redirect(http.StatusFound, "/moderation/comments/")
}
