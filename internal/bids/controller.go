package bids

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
)

type Controller struct {
	db *gorm.DB
}

func NewController(db *gorm.DB) *Controller {
	return &Controller{db: db}
}

// PlaceBidHandler inserts a bid on a project. Nothing stops the owner from
// bidding on their own project, or a user from bidding twice.
func (ctl *Controller) PlaceBidHandler(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "invalid id"})
		return
	}

	var project models.Project
	if err := ctl.db.First(&project, uint(projectID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "project not found"})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	price := strings.TrimSpace(c.PostForm("price"))
	message := strings.TrimSpace(c.PostForm("message"))

	detailURL := fmt.Sprintf("/project/%d", project.ID)

	if price == "" {
		flash.Set(c, "warning", "A bid price is required.")
		c.Redirect(http.StatusFound, detailURL)
		return
	}

	current, _ := auth.IdentityFrom(c).User()
	bid := models.Bid{
		Price:     price,
		Message:   message,
		ProjectID: project.ID,
		BidderID:  current.ID,
	}
	if err := ctl.db.Create(&bid).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	flash.Set(c, "success", "Bid placed.")
	c.Redirect(http.StatusFound, detailURL)
}

// AcceptBidHandler lets the project owner pick the winning bid.
func (ctl *Controller) AcceptBidHandler(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "invalid id"})
		return
	}
	bidID, err := strconv.ParseUint(c.Param("bid_id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"error": "invalid id"})
		return
	}

	var project models.Project
	if err := ctl.db.First(&project, uint(projectID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "project not found"})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	current, _ := auth.IdentityFrom(c).User()
	if project.OwnerID != current.ID {
		c.HTML(http.StatusForbidden, "error.html", gin.H{"error": "only the project owner can accept bids"})
		return
	}

	if err := Accept(ctl.db, project.ID, uint(bidID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"error": "bid not found"})
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"error": err.Error()})
		return
	}

	flash.Set(c, "success", "Bid accepted.")
	c.Redirect(http.StatusFound, fmt.Sprintf("/project/%d", project.ID))
}
