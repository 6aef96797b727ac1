package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/auth"
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

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func (ctl *Controller) RegisterFormHandler(c *gin.Context) {
	if _, ok := auth.IdentityFrom(c).User(); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", flash.Data(c, gin.H{"title": "Register"}))
}

func (ctl *Controller) RegisterHandler(c *gin.Context) {
	if _, ok := auth.IdentityFrom(c).User(); ok {
		c.Redirect(http.StatusFound, "/")
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")
	displayName := strings.TrimSpace(c.PostForm("display_name"))
	if displayName == "" {
		displayName = username
	}

	if username == "" || email == "" || password == "" {
		flash.Set(c, "danger", "Please fill in all required fields.")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	var existing models.User
	err := ctl.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		flash.Set(c, "warning", "Username or email is already taken.")
		c.Redirect(http.StatusFound, "/register")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	hashed, err := HashPassword(password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "failed to hash password"})
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hashed,
	}
	if err := ctl.db.Create(&user).Error; err != nil {
		// unique indexes backstop a race between the lookup and the insert
		flash.Set(c, "warning", "Username or email is already taken.")
		c.Redirect(http.StatusFound, "/register")
		return
	}

	token, err := auth.GenerateToken(&user, ctl.secret)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": "failed to generate session token"})
		return
	}

	auth.SetSession(c, token)
	flash.Set(c, "success", "Welcome! Your account has been created.")
	c.Redirect(http.StatusFound, "/")
}

func (ctl *Controller) ProfileHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "invalid id"})
		return
	}

	var user models.User
	if err := ctl.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "user not found"})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	var projects []models.Project
	if err := ctl.db.Where("owner_id = ?", user.ID).Order("created_at DESC").Find(&projects).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "profile.html", flash.Data(c, gin.H{
		"user":     user,
		"projects": projects,
		"current":  auth.CurrentFrom(c),
	}))
}
