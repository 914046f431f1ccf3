package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"inkwell/internal/services"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contact   *services.ContactService
	fragments *template.Template
}

func NewContactHandler(contact *services.ContactService, fragments *template.Template) *ContactHandler {
	return &ContactHandler{contact: contact, fragments: fragments}
}

// Contact serves the contact form as JSON for the modal on every page.
// GET returns the empty form; POST validates, sends and returns the form again.
func (h *ContactHandler) Contact(c *gin.Context) {
	data := gin.H{}
	in := services.ContactInput{}
	var errs map[string]string

	if c.Request.Method == http.MethodPost {
		in = services.ContactInput{
			Name:    postForm(c, "name"),
			Email:   postForm(c, "email"),
			Message: postForm(c, "message"),
		}
		err := h.contact.Submit(c.Request.Context(), in)
		switch {
		case err == nil:
			msgList, err := h.fragment("contact_messages.html", gin.H{
				"Messages": []string{"Message from " + in.Name + " sent"},
			})
			if err != nil {
				renderFailure(c, err)
				return
			}
			data["form_is_valid"] = true
			data["msg_list"] = msgList
			in = services.ContactInput{}
		case services.IsValidation(err):
			data["form_is_valid"] = false
			errs = services.FieldErrors(err)
		default:
			renderFailure(c, err)
			return
		}
	}

	form, err := h.fragment("contact_form.html", gin.H{"Form": in, "Errors": errs})
	if err != nil {
		renderFailure(c, err)
		return
	}
	data["html_form"] = form
	c.JSON(http.StatusOK, data)
}

func (h *ContactHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "about.html", nil)
}

func (h *ContactHandler) fragment(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := h.fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
