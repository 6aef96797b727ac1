package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;unique;not null"`
	DisplayName  string `gorm:"size:120"`
	Email        string `gorm:"size:200;unique;not null"`
	PasswordHash string `gorm:"size:200;not null"`
	Bio          string `gorm:"type:text"`
	CreatedAt    time.Time
}

type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"type:text;not null"`
	Budget      string `gorm:"size:80"`
	CreatedAt   time.Time
	OwnerID     uint `gorm:"not null;index"`
	Owner       User
	Image       string `gorm:"size:300"` // filename if uploaded
}

type Bid struct {
	ID        uint   `gorm:"primaryKey"`
	Price     string `gorm:"size:80;not null"`
	Message   string `gorm:"type:text"`
	CreatedAt time.Time
	ProjectID uint `gorm:"not null;index"`
	Project   Project
	BidderID  uint `gorm:"not null;index"`
	Bidder    User
	Accepted  bool `gorm:"not null;default:false"`
}
