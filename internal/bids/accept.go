package bids

import (
	"gorm.io/gorm"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
)

// Accept marks one bid of a project as the accepted one. Every other bid on
// the project is cleared first, inside the same transaction, so at most one
// bid per project is ever accepted, also while concurrent accepts race.
// Returns gorm.ErrRecordNotFound when the bid does not belong to the project.
func Accept(db *gorm.DB, projectID, bidID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := tx.Where("id = ? AND project_id = ?", bidID, projectID).First(&bid).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Bid{}).Where("project_id = ?", projectID).Update("accepted", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Bid{}).Where("id = ?", bid.ID).Update("accepted", true).Error
	})
}
