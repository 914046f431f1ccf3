package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/services"
	"inkwell/internal/utils"

	"github.com/gin-gonic/gin"
)

const sitemapLimit = 500

type rss struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Author      string  `xml:"author,omitempty"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// SEOHandler serves the machine readable views of the site: robots.txt, the sitemap and the RSS feed.
type SEOHandler struct {
	posts    *services.PostService
	siteName string
	baseURL  string
	feedSize int
}

func NewSEOHandler(posts *services.PostService, siteName, baseURL string, feedSize int) *SEOHandler {
	return &SEOHandler{posts: posts, siteName: siteName, baseURL: baseURL, feedSize: feedSize}
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /accounts/
Disallow: /moderation/
Disallow: /posts/add/

Sitemap: %s/sitemap.xml
`, h.baseURL)
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// Sitemap lists the static pages and the most recent published posts.
func (h *SEOHandler) Sitemap(c *gin.Context) {
	posts, err := h.posts.Latest(c.Request.Context(), sitemapLimit)
	if err != nil {
		renderFailure(c, err)
		return
	}

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.baseURL + "/", ChangeFreq: "daily", Priority: 1.0},
			{Loc: h.baseURL + "/about/", ChangeFreq: "monthly", Priority: 0.5},
		},
	}
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.baseURL + p.AbsolutePath(),
			LastMod:    p.Updated.Format("2006-01-02"),
			ChangeFreq: changeFreq(p),
			Priority:   0.7,
		})
	}
	writeXML(c, "application/xml; charset=utf-8", set)
}

// Feed publishes the latest posts as RSS 2.0.
func (h *SEOHandler) Feed(c *gin.Context) {
	posts, err := h.posts.Latest(c.Request.Context(), h.feedSize)
	if err != nil {
		renderFailure(c, err)
		return
	}

	channel := rssChannel{
		Title:       h.siteName,
		Link:        h.baseURL + "/",
		Description: "Latest posts on " + h.siteName,
		Language:    "en",
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].Publish.UTC().Format(time.RFC1123Z)
	}
	for _, p := range posts {
		link := h.baseURL + p.AbsolutePath()
		channel.Items = append(channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Author:      p.Author.Username,
			Description: utils.Excerpt(p.ShortDescription, 500),
			PubDate:     p.Publish.UTC().Format(time.RFC1123Z),
		})
	}
	writeXML(c, "application/rss+xml; charset=utf-8", rss{Version: "2.0", Channel: channel})
}

// changeFreq guesses how often a post changes from its age.
func changeFreq(p models.Post) string {
	switch age := time.Since(p.Publish); {
	case age < 7*24*time.Hour:
		return "daily"
	case age < 30*24*time.Hour:
		return "weekly"
	default:
		return "monthly"
	}
}

func writeXML(c *gin.Context, contentType string, v interface{}) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		renderFailure(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
