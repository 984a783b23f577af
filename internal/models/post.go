// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post. Title is unique case-insensitively; the slug is
// derived from the title and is the public lookup key.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Slug      string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Images    []Image   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`
	Links     []Link    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"links"`
	CreatedAt time.Time `json:"created_at"`
}

// Image is a blob-backed illustration owned by a post. Rows accumulate across
// updates; removal is only via the explicit per-image delete endpoint.
type Image struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	PublicID string `gorm:"size:255" json:"-"`
	URL      string `gorm:"size:500" json:"image"`
	Caption  string `gorm:"size:200" json:"caption"`
}

// Link is an external reference owned by a post. The whole set is replaced
// whenever an update supplies a links collection.
type Link struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
	URL    string `gorm:"size:500;not null" json:"url"`
	Text   string `gorm:"size:200" json:"text"`
	Order  int    `gorm:"default:0" json:"order"`
}
