package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/auth"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/bids"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/config"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/flash"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/projects"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/uploads"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/users"
)

// NewRouter wires every route of the marketplace onto a Gin engine.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.LoadHTMLGlob(cfg.TemplateGlob)

	secret := []byte(cfg.SecretKey)

	r.Use(uploads.MaxBody(cfg.MaxUploadBytes))
	r.Use(auth.CurrentUser(db, secret))

	r.Static("/uploads", cfg.UploadDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authCtl := auth.NewController(db, secret)
	usersCtl := users.NewController(db, secret)
	projectsCtl := projects.NewController(db, cfg.UploadDir)
	bidsCtl := bids.NewController(db)

	// Public routes
	r.GET("/", projectsCtl.IndexHandler)
	r.GET("/project/:id", projectsCtl.DetailHandler)
	r.GET("/about", staticPageHandler("about.html"))
	r.GET("/contact", staticPageHandler("contact.html"))

	r.GET("/register", usersCtl.RegisterFormHandler)
	r.POST("/register", usersCtl.RegisterHandler)
	r.GET("/login", authCtl.LoginFormHandler)
	r.POST("/login", authCtl.LoginHandler)

	// Protected routes
	authed := r.Group("", auth.RequireAuth())
	{
		authed.GET("/logout", authCtl.LogoutHandler)
		authed.GET("/dashboard", projectsCtl.DashboardHandler)
		authed.GET("/profile/:user_id", usersCtl.ProfileHandler)
		authed.GET("/projects/new", projectsCtl.NewFormHandler)
		authed.POST("/projects/new", projectsCtl.CreateHandler)
		authed.POST("/projects/:id/bid", bidsCtl.PlaceBidHandler)
		authed.POST("/projects/:id/bid/:bid_id/accept", bidsCtl.AcceptBidHandler)
	}

	return r
}

func staticPageHandler(template string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, template, flash.Data(c, gin.H{
			"current": auth.CurrentFrom(c),
		}))
	}
}
