package models

import (
	"time"
)

// HeroSection is the landing page header. The application maintains a single
// row; PUT upserts it.
type HeroSection struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Headline    string `gorm:"size:200;not null" json:"headline"`
	Subheadline string `gorm:"size:400" json:"subheadline"`
	ImageURL    string `gorm:"size:500" json:"image"`
	Instagram   string `gorm:"size:500" json:"instagram"`
	LinkedIn    string `gorm:"size:500" json:"linkedin"`
	GitHub      string `gorm:"size:500" json:"github"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// About is the single about-me row.
type About struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;default:About" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CVPublicID  string    `gorm:"size:255" json:"-"`
	CVURL       string    `gorm:"size:500" json:"cv"`
	HiringEmail string    `gorm:"size:255" json:"hiring_email"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Subject   string    `gorm:"size:200" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
