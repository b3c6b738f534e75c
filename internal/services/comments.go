package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"vibeapps/internal/models"
	"vibeapps/internal/utils"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultCommentMinLength = 10
	CommentMaxLength        = 5000
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// CommentService owns threaded comments and their pending/approved/rejected lifecycle.
type CommentService struct {
	base
	minLength int
}

func (s *CommentService) minLen() int {
	if s.minLength > 0 {
		return s.minLength
	}
	return DefaultCommentMinLength
}

// AddComment stores a pending comment. parentID, when set, must name a comment on the same story.
func (s *CommentService) AddComment(ctx context.Context, storyID, authorID uint, content string, parentID *uint) (comment *models.Comment, err error) {
	defer func(start time.Time) { s.observe("comment", start, err) }(time.Now())

	content = strings.TrimSpace(content)
	if n := utils.RuneLen(content); n < s.minLen() {
		return nil, validationf("comment must be at least %d characters, got %d", s.minLen(), n)
	} else if n > CommentMaxLength {
		return nil, validationf("comment must be at most %d characters, got %d", CommentMaxLength, n)
	}

	comment = &models.Comment{
		StoryID:  storyID,
		AuthorID: authorID,
		ParentID: parentID,
		Content:  content,
		Status:   models.CommentPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := storyExists(tx, storyID); err != nil {
			return err
		}
		if parentID != nil {
			var parent models.Comment
			err := tx.Select("id", "story_id").First(&parent, *parentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && parent.StoryID != storyID) {
				return notFoundf("parent comment %d not found on story %d", *parentID, storyID)
			}
			if err != nil {
				return pkgerrors.Wrap(err, "find parent comment")
			}
		}
		return pkgerrors.Wrap(tx.Create(comment).Error, "create comment")
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListApproved returns approved comments in thread order: every parent precedes its replies and
// siblings are ordered by creation. A reply whose parent is not approved is listed as a root.
func (s *CommentService) ListApproved(ctx context.Context, storyID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("story_id = ? AND status = ?", storyID, models.CommentApproved).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list approved comments")
	}
	return threadComments(comments), nil
}

// threadComments orders comments depth first.
func threadComments(comments []models.Comment) []models.Comment {
	sortByCreation(comments)

	present := make(map[uint]bool, len(comments))
	for _, c := range comments {
		present[c.ID] = true
	}

	children := make(map[uint][]int)
	var roots []int
	for i, c := range comments {
		if c.ParentID != nil && present[*c.ParentID] && *c.ParentID != c.ID {
			children[*c.ParentID] = append(children[*c.ParentID], i)
			continue
		}
		roots = append(roots, i)
	}

	out := make([]models.Comment, 0, len(comments))
	visited := make(map[uint]bool, len(comments))
	var walk func(idx, depth int)
	walk = func(idx, depth int) {
		c := comments[idx]
		if visited[c.ID] {
			return
		}
		visited[c.ID] = true
		c.Depth = depth
		out = append(out, c)
		for _, child := range children[c.ID] {
			walk(child, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

// Moderate moves a pending comment to approved or rejected exactly once.
func (s *CommentService) Moderate(ctx context.Context, commentID uint, decision Decision, moderatorID uint) (comment *models.Comment, err error) {
	defer func(start time.Time) { s.observe("moderate_comment", start, err) }(time.Now())

	var next models.CommentStatus
	switch decision {
	case DecisionApprove:
		next = models.CommentApproved
	case DecisionReject:
		next = models.CommentRejected
	default:
		return nil, validationf("unknown moderation decision %q", decision)
	}

	comment = &models.Comment{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(comment, commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("comment %d not found", commentID)
			}
			return pkgerrors.Wrap(err, "find comment")
		}
		if comment.Status != models.CommentPending {
			return conflictf("comment %d is already %s", commentID, comment.Status)
		}

		now := time.Now()
		res := tx.Model(&models.Comment{}).
			Where("id = ? AND status = ?", commentID, models.CommentPending).
			UpdateColumns(map[string]any{
				"status":       next,
				"moderated_by": moderatorID,
				"moderated_at": now,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "update comment status")
		}
		if res.RowsAffected == 0 {
			// another moderator got there first
			return conflictf("comment %d is no longer pending", commentID)
		}

		if next == models.CommentApproved {
			if err := bumpStory(tx, comment.StoryID, "approved_comment_count", 1); err != nil {
				return err
			}
		}

		comment.Status = next
		comment.ModeratedBy = &moderatorID
		comment.ModeratedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if next == models.CommentApproved {
		s.feed.Notify(comment.StoryID, FieldComments)
	}
	return comment, nil
}

// ListPending is the moderation queue, oldest first.
func (s *CommentService) ListPending(ctx context.Context, limit int) ([]models.Comment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("status = ?", models.CommentPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list pending comments")
	}
	return comments, nil
}

func sortByCreation(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}
