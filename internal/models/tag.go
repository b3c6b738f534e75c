package models

import (
	"time"
)

// Tag keeps the casing of its first creation; NameKey is the case-folded form used for lookups.
type Tag struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	NameKey      string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Color        string    `gorm:"size:16" json:"color,omitempty"`
	ShowInHeader bool      `gorm:"default:false" json:"show_in_header"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoryTag is the join row behind Story.Tags.
type StoryTag struct {
	StoryID uint `gorm:"primaryKey"`
	TagID   uint `gorm:"primaryKey;index"`
}
