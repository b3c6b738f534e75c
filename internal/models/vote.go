package models

import (
	"time"
)

// Vote is an upvote; existence is the whole payload.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   uint      `gorm:"not null;uniqueIndex:idx_vote_story_user" json:"story_id"`
	Story     Story     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_vote_story_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
