package handlers

import (
	"net/http"

	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Submit takes an anonymous comment on a published post. The result page either
// confirms that the comment awaits moderation or shows the form with its errors.
func (h *CommentHandler) Submit(c *gin.Context) {
	postID, ok := paramID(c, "post_id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	in := services.CommentInput{
		Name:  postForm(c, "name"),
		Email: postForm(c, "email"),
		Body:  postForm(c, "body"),
	}

	post, comment, err := h.comments.Submit(c.Request.Context(), postID, in)
	if err != nil && !services.IsValidation(err) {
		renderFailure(c, err)
		return
	}

	Render(c, http.StatusOK, "post/comment.html", gin.H{
		"Post":    post,
		"Comment": comment,
		"Form":    in,
		"Errors":  services.FieldErrors(err),
	})
}
