package services

import (
	"context"
	"errors"
	"time"
	"vibeapps/internal/models"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type VoteAction string

const (
	VoteAdded   VoteAction = "added"
	VoteRemoved VoteAction = "removed"
)

type VoteResult struct {
	Action   VoteAction `json:"action"`
	NewCount int        `json:"new_count"`
}

type RateResult struct {
	Accepted bool `json:"accepted"`
}

type BookmarkResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// UserState is one user's engagement with one story.
type UserState struct {
	Voted      bool `json:"voted"`
	Rating     *int `json:"rating"`
	Bookmarked bool `json:"bookmarked"`
}

// EngagementService owns votes, ratings and bookmarks plus the story counters they drive.
type EngagementService struct {
	base
}

// ToggleVote adds the user's vote if absent and removes it otherwise.
func (s *EngagementService) ToggleVote(ctx context.Context, storyID, userID uint) (res VoteResult, err error) {
	defer func(start time.Time) { s.observe("vote", start, err) }(time.Now())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockStory(tx, storyID); err != nil {
			return err
		}

		var existing models.Vote
		found := tx.Where("story_id = ? AND user_id = ?", storyID, userID).Limit(1).Find(&existing)
		if found.Error != nil {
			return pkgerrors.Wrap(found.Error, "find vote")
		}

		if found.RowsAffected > 0 {
			if err := tx.Delete(&existing).Error; err != nil {
				return pkgerrors.Wrap(err, "delete vote")
			}
			if err := bumpStory(tx, storyID, "vote_count", -1); err != nil {
				return err
			}
			res.Action = VoteRemoved
		} else {
			if err := tx.Create(&models.Vote{StoryID: storyID, UserID: userID}).Error; err != nil {
				return pkgerrors.Wrap(err, "create vote")
			}
			if err := bumpStory(tx, storyID, "vote_count", 1); err != nil {
				return err
			}
			res.Action = VoteAdded
		}

		return tx.Model(&models.Story{}).Where("id = ?", storyID).Select("vote_count").Scan(&res.NewCount).Error
	})
	if err != nil {
		return VoteResult{}, err
	}

	s.feed.Notify(storyID, FieldVotes)
	return res, nil
}

// Rate records a one-time rating. A second rating by the same user is a DuplicateActionError.
func (s *EngagementService) Rate(ctx context.Context, storyID, userID uint, value int) (res RateResult, err error) {
	defer func(start time.Time) { s.observe("rate", start, err) }(time.Now())

	if value < models.MinRating || value > models.MaxRating {
		return RateResult{}, validationf("rating must be between %d and %d, got %d", models.MinRating, models.MaxRating, value)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockStory(tx, storyID); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Rating{}).Where("story_id = ? AND user_id = ?", storyID, userID).Count(&count).Error; err != nil {
			return pkgerrors.Wrap(err, "find rating")
		}
		if count > 0 {
			return duplicatef("user %d has already rated story %d", userID, storyID)
		}

		if err := tx.Create(&models.Rating{StoryID: storyID, UserID: userID, Value: value}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicatef("user %d has already rated story %d", userID, storyID)
			}
			return pkgerrors.Wrap(err, "create rating")
		}

		err := tx.Model(&models.Story{}).Where("id = ?", storyID).UpdateColumns(map[string]any{
			"rating_sum":   gorm.Expr("rating_sum + ?", value),
			"rating_count": gorm.Expr("rating_count + ?", 1),
		}).Error
		return pkgerrors.Wrap(err, "update rating totals")
	})
	if err != nil {
		return RateResult{}, err
	}

	s.feed.Notify(storyID, FieldRatings)
	return RateResult{Accepted: true}, nil
}

// ToggleBookmark saves or unsaves a story for the user. No story counter moves.
func (s *EngagementService) ToggleBookmark(ctx context.Context, storyID, userID uint) (res BookmarkResult, err error) {
	defer func(start time.Time) { s.observe("bookmark", start, err) }(time.Now())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockStory(tx, storyID); err != nil {
			return err
		}

		// 检查是否已收藏
		var existing models.Bookmark
		found := tx.Where("user_id = ? AND story_id = ?", userID, storyID).Limit(1).Find(&existing)
		if found.Error != nil {
			return pkgerrors.Wrap(found.Error, "find bookmark")
		}
		if found.RowsAffected > 0 {
			res.Bookmarked = false
			return pkgerrors.Wrap(tx.Delete(&existing).Error, "delete bookmark")
		}
		res.Bookmarked = true
		return pkgerrors.Wrap(tx.Create(&models.Bookmark{UserID: userID, StoryID: storyID}).Error, "create bookmark")
	})
	if err != nil {
		return BookmarkResult{}, err
	}
	return res, nil
}

// GetUserState is a read-only projection of the user's vote, rating and bookmark.
func (s *EngagementService) GetUserState(ctx context.Context, storyID, userID uint) (UserState, error) {
	var state UserState
	db := s.db.WithContext(ctx)

	var votes int64
	if err := db.Model(&models.Vote{}).Where("story_id = ? AND user_id = ?", storyID, userID).Count(&votes).Error; err != nil {
		return state, pkgerrors.Wrap(err, "find vote")
	}
	state.Voted = votes > 0

	var rating models.Rating
	found := db.Where("story_id = ? AND user_id = ?", storyID, userID).Limit(1).Find(&rating)
	if found.Error != nil {
		return state, pkgerrors.Wrap(found.Error, "find rating")
	}
	if found.RowsAffected > 0 {
		v := rating.Value
		state.Rating = &v
	}

	var bookmarks int64
	if err := db.Model(&models.Bookmark{}).Where("story_id = ? AND user_id = ?", storyID, userID).Count(&bookmarks).Error; err != nil {
		return state, pkgerrors.Wrap(err, "find bookmark")
	}
	state.Bookmarked = bookmarks > 0
	return state, nil
}

// ListBookmarks returns the user's saved stories, most recently saved first.
func (s *EngagementService) ListBookmarks(ctx context.Context, userID uint) ([]models.Story, error) {
	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).Preload("Story").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list bookmarks")
	}
	stories := make([]models.Story, 0, len(bookmarks))
	for _, b := range bookmarks {
		stories = append(stories, b.Story)
	}
	return stories, nil
}

// bumpStory applies delta to one counter column; the counter never goes below zero.
func bumpStory(tx *gorm.DB, storyID uint, column string, delta int) error {
	expr := gorm.Expr(column+" + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta)
	}
	err := tx.Model(&models.Story{}).Where("id = ?", storyID).UpdateColumn(column, expr).Error
	return pkgerrors.Wrapf(err, "update %s", column)
}
