package models

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is written once per user and story and never updated.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;uniqueIndex:idx_rating_story_user" json:"story_id"`
	Story     Story     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_rating_story_user" json:"user_id"`
	Value     int       `gorm:"not null;check:chk_rating_value,value >= 1 AND value <= 5" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
