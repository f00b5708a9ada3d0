package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"animehost/internal/config"
	"animehost/internal/middleware"
	"animehost/internal/repository"
	"animehost/internal/service"
	"animehost/internal/session"
	"animehost/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	sessions session.Store
	auth     *service.AuthService
	images   *service.ImageService
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, sessions session.Store, files storage.FileStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		auth:     service.NewAuthService(userRepo, sessions, log),
		images:   service.NewImageService(imageRepo, files, cfg.Upload.MaxSizeBytes, cfg.Upload.MaxDimension, log),
	}
}

func (h HandlerSet) Register(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/images")
	})

	router.GET("/login", h.ShowLogin)
	router.POST("/login", h.Login)
	router.GET("/logout", h.Logout)
	router.GET("/register", h.ShowRegister)
	router.POST("/register", h.RegisterUser)

	router.GET("/images", h.Gallery)
	router.GET("/images/:id", h.ImageDetail)

	protected := router.Group("/")
	protected.Use(middleware.AuthRequired())
	{
		protected.GET("/upload", h.ShowUpload)
		protected.POST("/upload", h.Upload)
		protected.GET("/my-images", h.MyImages)
		protected.GET("/images/:id/edit", h.ShowEdit)
		protected.POST("/images/:id/edit", h.Edit)
		protected.POST("/images/:id/delete", h.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		h.renderError(c, http.StatusNotFound, "Page Not Found", "The page you are looking for does not exist")
	})
}

// view merges the current session into template data so every page can
// render the logged-in state.
func (h HandlerSet) view(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if sess, ok := middleware.CurrentSession(c); ok {
		data["User"] = sess
	}
	return data
}

func (h HandlerSet) renderError(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", h.view(c, gin.H{
		"Title":   title,
		"Message": message,
	}))
}
