package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/flash"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
)

type Controller struct {
	db     *gorm.DB
	secret []byte
}

func NewController(db *gorm.DB, secret []byte) *Controller {
	return &Controller{db: db, secret: secret}
}

func (ctl *Controller) LoginFormHandler(c *gin.Context) {
	if _, ok := IdentityFrom(c).User(); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", flash.Data(c, gin.H{"title": "Login"}))
}

func (ctl *Controller) LoginHandler(c *gin.Context) {
	if _, ok := IdentityFrom(c).User(); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	identifier := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	var u models.User
	err := ctl.db.Where("username = ? OR email = ?", identifier, identifier).First(&u).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		flash.Set(c, "danger", "Invalid username or password.")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	token, err := GenerateToken(&u, ctl.secret)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "failed to generate session token"})
		return
	}

	SetSession(c, token)
	flash.Set(c, "success", "Logged in successfully.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (ctl *Controller) LogoutHandler(c *gin.Context) {
	ClearSession(c)
	flash.Set(c, "info", "You have been logged out.")
	c.Redirect(http.StatusFound, "/")
}
