package models

import (
	"time"
)

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

type Comment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	StoryID     uint          `gorm:"not null;index:idx_comment_story_status" json:"story_id"`
	Story       Story         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorID    uint          `gorm:"not null;index" json:"author_id"`
	ParentID    *uint         `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent      *Comment      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	Status      CommentStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_comment_story_status" json:"status"`
	ModeratedBy *uint         `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time    `json:"moderated_at,omitempty"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`

	// 非数据库字段，线程化列表时填充
	Depth int `gorm:"-" json:"depth"`
}
