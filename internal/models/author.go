package models

import (
	"time"
)

// Author is a registered user who can write posts.
type Author struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`             // bcrypt hash
	ProfilePhoto string     `gorm:"size:255" json:"profile_photo"` // storage key, empty when unset
	Description  string     `gorm:"size:200" json:"description"`
	IsStaff      bool       `gorm:"default:false" json:"is_staff"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time  `json:"updated_at"`
	// No DeletedAt: authors are never removed by the application
}

func (a *Author) String() string {
	return a.Username
}
