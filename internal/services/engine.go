package services

import (
	"errors"
	"time"
	"vibeapps/internal/metrics"
	"vibeapps/internal/models"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Projected fields named in change notifications.
const (
	FieldVotes    = "votes"
	FieldRatings  = "ratings"
	FieldComments = "comments"
	FieldTags     = "tags"
)

// Notifier is told about every committed change to a projected story field.
type Notifier interface {
	Notify(storyID uint, field string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string) {}

// Options configures NewEngine. Zero values fall back to defaults.
type Options struct {
	CommentMinLength int
	Feed             Notifier
	Metrics          metrics.Recorder
}

// Engine groups the engagement and moderation components over one database.
type Engine struct {
	Engagement *EngagementService
	Comments   *CommentService
	Reports    *ReportService
	Tags       *TagResolver
	Stories    *StoryAggregate
}

func NewEngine(db *gorm.DB, opts Options) *Engine {
	b := newBase(db, opts.Feed, opts.Metrics)
	return &Engine{
		Engagement: &EngagementService{base: b},
		Comments:   &CommentService{base: b, minLength: opts.CommentMinLength},
		Reports:    &ReportService{base: b},
		Tags:       &TagResolver{base: b},
		Stories:    &StoryAggregate{base: b, now: time.Now},
	}
}

type base struct {
	db      *gorm.DB
	feed    Notifier
	metrics metrics.Recorder
}

func newBase(db *gorm.DB, feed Notifier, rec metrics.Recorder) base {
	if feed == nil {
		feed = nopNotifier{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return base{db: db, feed: feed, metrics: rec}
}

// observe records the outcome of one action; call it deferred with the named error.
func (b base) observe(action string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if k := KindOf(err); k != "" {
			outcome = string(k)
		}
	}
	b.metrics.RecordAction(action, outcome, time.Since(start))
}

// lockStory loads the story row FOR UPDATE, serializing mutations per story.
func lockStory(tx *gorm.DB, storyID uint) (*models.Story, error) {
	var story models.Story
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&story, storyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("story %d not found", storyID)
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "lock story %d", storyID)
	}
	return &story, nil
}

func storyExists(tx *gorm.DB, storyID uint) error {
	var count int64
	if err := tx.Model(&models.Story{}).Where("id = ?", storyID).Count(&count).Error; err != nil {
		return pkgerrors.Wrapf(err, "find story %d", storyID)
	}
	if count == 0 {
		return notFoundf("story %d not found", storyID)
	}
	return nil
}
