package handlers

import (
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
}

func NewPostHandler(posts *services.PostService, comments *services.CommentService) *PostHandler {
	return &PostHandler{posts: posts, comments: comments}
}

// List shows published posts, newest first.
func (h *PostHandler) List(c *gin.Context) {
	result, err := h.posts.ListPublished(c.Request.Context(), c.Query("page"))
	if err != nil {
		renderFailure(c, err)
		return
	}
	Render(c, http.StatusOK, "post/list.html", gin.H{
		"Posts": result.Posts,
		"Page":  result.Page,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	viewer := middleware.CurrentAuthor(c)

	post, err := h.posts.GetBySlug(ctx, c.Param("slug"), viewer)
	if err != nil {
		renderFailure(c, err)
		return
	}
	comments, err := h.comments.ListActive(ctx, post.ID, c.Query("page"))
	if err != nil {
		renderFailure(c, err)
		return
	}
	pending, err := h.comments.ListPending(ctx, post, viewer)
	if err != nil {
		renderFailure(c, err)
		return
	}

	form := services.CommentInput{}
	if viewer != nil {
		form.Name = viewer.Username
		form.Email = viewer.Email
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Post":          post,
		"Comments":      comments.Comments,
		"Page":          comments.Page,
		"TotalComments": comments.Page.Total,
		"Pending":       pending,
		"IsOwner":       post.OwnedBy(viewer),
		"Form":          form,
	})
}

// ByAuthor lists one author's posts; the author also sees their drafts.
func (h *PostHandler) ByAuthor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	viewer := middleware.CurrentAuthor(c)
	result, err := h.posts.ListByAuthor(c.Request.Context(), id, viewer, c.Query("page"))
	if err != nil {
		renderFailure(c, err)
		return
	}
	Render(c, http.StatusOK, "post/by_author.html", gin.H{
		"Author":  result.Author,
		"Posts":   result.Posts,
		"Page":    result.Page,
		"IsOwner": viewer != nil && viewer.ID == result.Author.ID,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Action": "/posts/add/",
		"Form":   services.PostInput{Status: models.StatusDraft},
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	in, errs := postInput(c)
	if errs != nil {
		renderPostForm(c, nil, in, errs)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), middleware.CurrentAuthor(c), in)
	if services.IsValidation(err) {
		renderPostForm(c, nil, in, services.FieldErrors(err))
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}

	addFlash(c, "Post \""+post.Title+"\" created.")
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) ShowUpdate(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "post/form.html", gin.H{
		"Action": c.Request.URL.Path,
		"Post":   post,
		"Form": services.PostInput{
			Title:            post.Title,
			ShortDescription: post.ShortDescription,
			Body:             post.Body,
			Status:           post.Status,
		},
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}

	in, errs := postInput(c)
	if errs != nil {
		renderPostForm(c, post, in, errs)
		return
	}

	updated, err := h.posts.Update(c.Request.Context(), middleware.CurrentAuthor(c), post.ID, in)
	if services.IsValidation(err) {
		renderPostForm(c, post, in, services.FieldErrors(err))
		return
	}
	if err != nil {
		renderFailure(c, err)
		return
	}

	addFlash(c, "Post updated.")
	c.Redirect(http.StatusFound, updated.AbsolutePath())
}

func (h *PostHandler) ShowDelete(c *gin.Context) {
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "post/delete.html", gin.H{"Post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return
	}
	if err := h.posts.Delete(c.Request.Context(), middleware.CurrentAuthor(c), id); err != nil {
		renderFailure(c, err)
		return
	}
	addFlash(c, "Post deleted.")
	c.Redirect(http.StatusFound, "/")
}

// ownedPost loads the post named in the URL for its author, rendering a 404 for anyone else.
func (h *PostHandler) ownedPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		RenderError(c, http.StatusNotFound, "Page not found")
		return nil, false
	}
	post, err := h.posts.GetOwned(c.Request.Context(), middleware.CurrentAuthor(c), id)
	if err != nil {
		renderFailure(c, err)
		return nil, false
	}
	return post, true
}

func postInput(c *gin.Context) (services.PostInput, map[string]string) {
	in := services.PostInput{
		Title:            postForm(c, "title"),
		ShortDescription: postForm(c, "short_description"),
		Body:             c.PostForm("body"),
		Status:           models.PostStatus(c.PostForm("status")),
	}
	image, err := formUpload(c, "post_image")
	if err != nil {
		return in, map[string]string{"post_image": err.Error()}
	}
	in.Image = image
	return in, nil
}

func renderPostForm(c *gin.Context, post *models.Post, in services.PostInput, errs map[string]string) {
	action := "/posts/add/"
	if post != nil {
		action = c.Request.URL.Path
	}
	Render(c, http.StatusBadRequest, "post/form.html", gin.H{
		"Action": action,
		"Post":   post,
		"Form":   in,
		"Errors": errs,
	})
}
