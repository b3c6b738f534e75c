package models

import (
	"time"
)

// Bookmark 收藏 - private to the user, no public counter
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_story" json:"user_id"`
	StoryID   uint      `gorm:"not null;index;uniqueIndex:idx_user_story" json:"story_id"`
	Story     Story     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"story"`
	CreatedAt time.Time `json:"created_at"`
}
