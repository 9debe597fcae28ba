// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the Reverie application.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"unique;not null" json:"username"`
	Email       string `gorm:"unique;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`
	// FollowerCount/FollowingCount are not persisted; computed at query time
	FollowerCount  int            `gorm:"->" json:"follower_count"`
	FollowingCount int            `gorm:"->" json:"following_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Dreams         []Dream        `gorm:"foreignKey:UserID" json:"dreams,omitempty"`
}
