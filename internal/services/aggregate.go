package services

import (
	"context"
	"errors"
	"time"
	"vibeapps/internal/models"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// Projection is the read-side view of a story's engagement.
type Projection struct {
	StoryID              uint    `json:"story_id"`
	VoteCount            int     `json:"vote_count"`
	RatingCount          int     `json:"rating_count"`
	AverageRating        float64 `json:"average_rating"`
	ApprovedCommentCount int     `json:"approved_comment_count"`
	TagIDs               []uint  `json:"tag_ids"`
	Score                float64 `json:"score"`
}

// StoryAggregate reads projections straight from the committed counters; it stores nothing.
type StoryAggregate struct {
	base
	now func() time.Time
}

func (a *StoryAggregate) Project(ctx context.Context, storyID uint) (Projection, error) {
	var p Projection
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var story models.Story
		if err := tx.First(&story, storyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("story %d not found", storyID)
			}
			return pkgerrors.Wrap(err, "find story")
		}

		tagIDs := []uint{}
		if err := tx.Model(&models.StoryTag{}).Where("story_id = ?", storyID).Order("tag_id ASC").Pluck("tag_id", &tagIDs).Error; err != nil {
			return pkgerrors.Wrap(err, "find story tags")
		}

		p = Projection{
			StoryID:              story.ID,
			VoteCount:            story.VoteCount,
			RatingCount:          story.RatingCount,
			AverageRating:        story.AverageRating(),
			ApprovedCommentCount: story.ApprovedCommentCount,
			TagIDs:               tagIDs,
		}
		p.Score = HotScore(DefaultRankConfig, a.now().Sub(story.CreatedAt),
			p.VoteCount, p.ApprovedCommentCount, p.RatingCount, p.AverageRating)
		return nil
	})
	return p, err
}
