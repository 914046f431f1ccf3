package router

import (
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/services"
	"inkwell/internal/storage"
	"inkwell/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionName = "inkwell_session"

// Dependencies are the long lived resources owned by main.
type Dependencies struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client // optional
	Cache      cache.Cache
	Storage    storage.Storage
	Dispatcher services.Dispatcher
}

// Setup builds the engine with middleware, templates and every route.
func Setup(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	store := cookie.NewStore([]byte(cfg.App.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 3600,
		HttpOnly: true,
		Secure:   cfg.App.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	funcs := web.FuncMap(cfg.App.Name, deps.Storage.URL)
	renderer, err := web.LoadTemplates(funcs)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.HTMLRender = renderer
	fragments, err := web.LoadFragments(funcs)
	if err != nil {
		return nil, fmt.Errorf("load fragments: %w", err)
	}

	if local, ok := deps.Storage.(*storage.LocalStorage); ok && strings.HasPrefix(cfg.Storage.MediaURL, "/") {
		r.Static(strings.TrimSuffix(cfg.Storage.MediaURL, "/"), local.Root())
	}

	r.Use(middleware.LoadUser(deps.DB))

	notifier := services.NewNotifier(cfg, deps.Dispatcher)
	postService := services.NewPostService(deps.DB, deps.Cache, deps.Storage, notifier, cfg)
	commentService := services.NewCommentService(deps.DB, deps.Cache, notifier, cfg)
	authorService := services.NewAuthorService(deps.DB, deps.Cache, deps.Storage)
	contactService := services.NewContactService(notifier)

	RegisterRoutes(r, routeHandlers{
		posts:      handlers.NewPostHandler(postService, commentService),
		comments:   handlers.NewCommentHandler(commentService),
		auth:       handlers.NewAuthHandler(authorService),
		authors:    handlers.NewAuthorHandler(authorService),
		contact:    handlers.NewContactHandler(contactService, fragments),
		moderation: handlers.NewModerationHandler(commentService),
		images:     handlers.NewImageHandler(postService),
		seo:        handlers.NewSEOHandler(postService, cfg.App.Name, cfg.App.BaseURL(), cfg.Blog.FeedSize),
		health:     handlers.NewHealthHandler(deps.DB, deps.Redis),
	})

	r.NoRoute(notFound)
	return r, nil
}

func notFound(c *gin.Context) {
	handlers.RenderError(c, http.StatusNotFound, "Page not found")
}

type routeHandlers struct {
	posts      *handlers.PostHandler
	comments   *handlers.CommentHandler
	auth       *handlers.AuthHandler
	authors    *handlers.AuthorHandler
	contact    *handlers.ContactHandler
	moderation *handlers.ModerationHandler
	images     *handlers.ImageHandler
	seo        *handlers.SEOHandler
	health     *handlers.HealthHandler
}

func RegisterRoutes(r *gin.Engine, h routeHandlers) {
	// Public routes
	r.GET("/", h.posts.List)                        // published posts
	r.GET("/:slug/", h.posts.Detail)                // post detail with comments
	r.POST("/:post_id/comment/", h.comments.Submit) // anonymous comment
	r.GET("/posts/:id", h.posts.ByAuthor)           // posts of one author
	r.GET("/author/:id/", h.authors.Profile)        // author profile
	r.GET("/contact/", h.contact.Contact)           // contact form (JSON)
	r.POST("/contact/", h.contact.Contact)          // contact submit (JSON)
	r.GET("/about/", h.contact.About)               // about page
	r.GET("/feed/", h.seo.Feed)                     // RSS
	r.GET("/sitemap.xml", h.seo.Sitemap)            // sitemap
	r.GET("/robots.txt", h.seo.RobotsTxt)           // crawler rules
	r.GET("/healthz", h.health.Check)               // liveness

	accounts := r.Group("/accounts")
	{
		accounts.GET("/signup/", h.auth.ShowSignup)
		accounts.POST("/signup/", h.auth.Signup)
		accounts.GET("/login/", h.auth.ShowLogin)
		accounts.POST("/login/", h.auth.Login)
		accounts.GET("/logout/", h.auth.Logout)
	}

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/add/", h.posts.ShowCreate)
		authorized.POST("/posts/add/", h.posts.Create)
		authorized.POST("/posts/images/", h.images.Upload)
		authorized.GET("/posts/:id/update/", h.posts.ShowUpdate)
		authorized.POST("/posts/:id/update/", h.posts.Update)
		authorized.GET("/posts/:id/delete/", h.posts.ShowDelete)
		authorized.POST("/posts/:id/delete/", h.posts.Delete)

		authorized.GET("/accounts/my_profile/", h.authors.MyProfile)
		authorized.GET("/accounts/update_profile/", h.authors.ShowUpdateProfile)
		authorized.POST("/accounts/update_profile/", h.authors.UpdateProfile)
		authorized.GET("/accounts/password_change/", h.authors.ShowPasswordChange)
		authorized.POST("/accounts/password_change/", h.authors.PasswordChange)
	}

	// Staff routes
	moderation := r.Group("/moderation")
	moderation.Use(middleware.StaffRequired(notFound))
	{
		moderation.GET("/comments/", h.moderation.List)
		moderation.POST("/comments/activate/", h.moderation.ActivateMany)
		moderation.POST("/comments/:id/activate/", h.moderation.Activate)
	}
}
