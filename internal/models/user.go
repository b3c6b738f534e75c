package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User mirrors the identity provider's account; ExternalID is the provider's stable subject.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Username   string    `gorm:"not null" json:"username"`
	Email      string    `gorm:"index" json:"email"`
	Role       string    `gorm:"size:20;default:'user';not null" json:"role"` // user, moderator, admin
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
