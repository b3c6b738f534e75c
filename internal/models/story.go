package models

import (
	"time"
)

// Story is created by the submission flow; the engine only moves its counters and tags.
type Story struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Slug                 string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	UserID               uint      `gorm:"not null;index" json:"user_id"` // Submitter
	Title                string    `gorm:"not null" json:"title"`
	URL                  string    `json:"url"`
	VoteCount            int       `gorm:"not null;default:0" json:"vote_count"`
	RatingSum            int       `gorm:"not null;default:0" json:"rating_sum"`
	RatingCount          int       `gorm:"not null;default:0" json:"rating_count"`
	ApprovedCommentCount int       `gorm:"not null;default:0" json:"approved_comment_count"`
	Tags                 []Tag     `gorm:"many2many:story_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tags,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AverageRating 0 when nobody has rated yet
func (s *Story) AverageRating() float64 {
	if s.RatingCount <= 0 {
		return 0
	}
	return float64(s.RatingSum) / float64(s.RatingCount)
}
