package projects

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/auth"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/flash"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/uploads"
)

type Controller struct {
	db        *gorm.DB
	uploadDir string
}

func NewController(db *gorm.DB, uploadDir string) *Controller {
	return &Controller{db: db, uploadDir: uploadDir}
}

// IndexHandler lists the 20 most recent projects.
func (ctl *Controller) IndexHandler(c *gin.Context) {
	var projects []models.Project
	if err := ctl.db.Preload("Owner").Order("created_at DESC").Limit(20).Find(&projects).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}
	c.HTML(http.StatusOK, "index.html", flash.Data(c, gin.H{
		"projects": projects,
		"current":  auth.CurrentFrom(c),
	}))
}

func (ctl *Controller) DetailHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "invalid id"})
		return
	}

	var project models.Project
	if err := ctl.db.Preload("Owner").First(&project, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "project not found"})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	var bids []models.Bid
	if err := ctl.db.Preload("Bidder").Where("project_id = ?", project.ID).Order("created_at DESC").Find(&bids).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "project_detail.html", flash.Data(c, gin.H{
		"project": project,
		"bids":    bids,
		"current": auth.CurrentFrom(c),
	}))
}

func (ctl *Controller) NewFormHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "new_project.html", flash.Data(c, gin.H{
		"current": auth.CurrentFrom(c),
	}))
}

func (ctl *Controller) CreateHandler(c *gin.Context) {
	current, _ := auth.IdentityFrom(c).User()

	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	budget := strings.TrimSpace(c.PostForm("budget"))

	if title == "" || description == "" {
		flash.Set(c, "warning", "Title and description are required.")
		c.Redirect(http.StatusFound, "/projects/new")
		return
	}

	var filename string
	if file, err := c.FormFile("image"); err == nil {
		// Not atomic with the insert below: a crash between the file write
		// and the commit can leave an orphaned file.
		filename, err = uploads.Store(file, ctl.uploadDir)
		if err != nil {
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
			return
		}
	}

	project := models.Project{
		Title:       title,
		Description: description,
		Budget:      budget,
		OwnerID:     current.ID,
		Image:       filename,
	}
	if err := ctl.db.Create(&project).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	flash.Set(c, "success", "Project created.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/project/%d", project.ID))
}

// DashboardHandler shows the acting user's own projects and bids.
func (ctl *Controller) DashboardHandler(c *gin.Context) {
	current, _ := auth.IdentityFrom(c).User()

	var myProjects []models.Project
	if err := ctl.db.Where("owner_id = ?", current.ID).Order("created_at DESC").Find(&myProjects).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	var myBids []models.Bid
	if err := ctl.db.Preload("Project").Where("bidder_id = ?", current.ID).Order("created_at DESC").Find(&myBids).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", flash.Data(c, gin.H{
		"projects": myProjects,
		"bids":     myBids,
		"current":  current,
	}))
}
