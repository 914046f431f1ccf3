package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

// ImageHandler takes images embedded in post bodies.
type ImageHandler struct {
	posts *services.PostService
}

func NewImageHandler(posts *services.PostService) *ImageHandler {
	return &ImageHandler{posts: posts}
}

// Upload stores an inline image and returns its URL for use in Markdown (POST /posts/images/).
func (h *ImageHandler) Upload(c *gin.Context) {
	up, err := formUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if up == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "choose an image to upload"})
		return
	}

	url, err := h.posts.StoreBodyImage(c.Request.Context(), middleware.CurrentAuthor(c), up)
	if services.IsValidation(err) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": services.FieldErrors(err)["image"]})
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      url,
		"markdown": "![](" + url + ")",
	})
}
