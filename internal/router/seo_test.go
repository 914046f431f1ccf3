package router

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsAndSitemap(t *testing.T) {
	app := newTestApp(t)
	alice := app.author(t, "alice")
	app.post(t, alice, "Mapped Post", models.StatusPublished)
	app.post(t, alice, "Hidden Draft", models.StatusDraft)

	w := app.do(t, http.MethodGet, "/robots.txt", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Disallow: /accounts/")
	assert.Contains(t, w.Body.String(), "Sitemap: http://testserver/sitemap.xml")

	w = app.do(t, http.MethodGet, "/sitemap.xml", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/xml"))

	var set struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &set))
	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	assert.Contains(t, locs, "http://testserver/")
	assert.Contains(t, locs, "http://testserver/mapped-post/")
	assert.NotContains(t, locs, "http://testserver/hidden-draft/")
}

func imageUploadRequest(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile(field, "pic.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadBodyImage(t *testing.T) {
	app := newTestApp(t)
	app.author(t, "alice")
	cookies := app.login(t, "alice")

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))

	send := func(data []byte, withCookies bool) *httptest.ResponseRecorder {
		body, contentType := imageUploadRequest(t, "image", data)
		req := httptest.NewRequest(http.MethodPost, "/posts/images/", body)
		req.Header.Set("Content-Type", contentType)
		if withCookies {
			for _, c := range cookies {
				req.AddCookie(c)
			}
		}
		w := httptest.NewRecorder()
		app.engine.ServeHTTP(w, req)
		return w
	}

	w := send(buf.Bytes(), false)
	assert.Equal(t, http.StatusFound, w.Code)

	w = send(buf.Bytes(), true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	url, _ := resp["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/media/posts_body/"), url)
	assert.Equal(t, "![]("+url+")", resp["markdown"])

	w = send([]byte("plain text, not a picture"), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}
