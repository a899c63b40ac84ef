package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"`
	NationalID string    `gorm:"size:11;uniqueIndex;not null" json:"national_id"`
	Phone      string    `gorm:"size:11" json:"phone,omitempty"`
	Address    string    `gorm:"size:200" json:"address,omitempty"`
	Role       string    `gorm:"size:20;not null;default:'client'" json:"role"`
	Version    int       `gorm:"default:1" json:"version"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleClient
	}
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}
