package models

import (
	"time"
)

// User represents an account able to authenticate against the API. Writes to
// portfolio content require IsSuperuser.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:150;unique;not null" json:"username"`
	Email       string    `gorm:"size:255;unique;not null" json:"email"`
	Password    string    `gorm:"not null" json:"-"`
	IsSuperuser bool      `gorm:"default:false" json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
