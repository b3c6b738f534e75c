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

const TagNameMaxLength = 64

// TagResolver turns tag ids plus free-text names into a canonical id set, creating tags on demand.
type TagResolver struct {
	base
}

// Resolve returns the sorted, unique union of existingIDs and the ids of newNames.
// Names match case-insensitively; unknown names become new tags.
func (r *TagResolver) Resolve(ctx context.Context, existingIDs []uint, newNames []string) (ids []uint, err error) {
	defer func(start time.Time) { r.observe("resolve_tags", start, err) }(time.Now())

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ids, err = resolveTags(tx, existingIDs, newNames)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AssignStoryTags resolves the requested tags and makes them the story's whole tag set.
func (r *TagResolver) AssignStoryTags(ctx context.Context, storyID uint, existingIDs []uint, newNames []string) (ids []uint, err error) {
	defer func(start time.Time) { r.observe("assign_tags", start, err) }(time.Now())

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockStory(tx, storyID); err != nil {
			return err
		}
		var err error
		if ids, err = resolveTags(tx, existingIDs, newNames); err != nil {
			return err
		}

		if err := tx.Where("story_id = ?", storyID).Delete(&models.StoryTag{}).Error; err != nil {
			return pkgerrors.Wrap(err, "clear story tags")
		}
		rows := make([]models.StoryTag, 0, len(ids))
		for _, id := range ids {
			rows = append(rows, models.StoryTag{StoryID: storyID, TagID: id})
		}
		return pkgerrors.Wrap(tx.Create(&rows).Error, "insert story tags")
	})
	if err != nil {
		return nil, err
	}

	r.feed.Notify(storyID, FieldTags)
	return ids, nil
}

type tagName struct {
	name string
	key  string
}

func resolveTags(tx *gorm.DB, existingIDs []uint, newNames []string) ([]uint, error) {
	idSet := make(map[uint]struct{}, len(existingIDs)+len(newNames))
	for _, id := range existingIDs {
		if id == 0 {
			return nil, validationf("tag id must be positive")
		}
		idSet[id] = struct{}{}
	}

	var names []tagName
	seen := make(map[string]bool, len(newNames))
	for _, raw := range newNames {
		name := strings.Join(strings.Fields(utils.StripTags(raw)), " ")
		if name == "" {
			continue
		}
		if utils.RuneLen(name) > TagNameMaxLength {
			return nil, validationf("tag name %q is longer than %d characters", name, TagNameMaxLength)
		}
		key := utils.TagKey(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, tagName{name: name, key: key})
	}

	if len(idSet) == 0 && len(names) == 0 {
		return nil, validationf("a story must carry at least one tag")
	}

	if len(idSet) > 0 {
		requested := sortedIDs(idSet)
		var found []uint
		if err := tx.Model(&models.Tag{}).Where("id IN ?", requested).Pluck("id", &found).Error; err != nil {
			return nil, pkgerrors.Wrap(err, "find tags")
		}
		if len(found) != len(requested) {
			return nil, validationf("unknown tag ids in %v", requested)
		}
	}

	for _, n := range names {
		tag, err := findOrCreateTag(tx, n)
		if err != nil {
			return nil, err
		}
		idSet[tag.ID] = struct{}{}
	}
	return sortedIDs(idSet), nil
}

// findOrCreateTag keeps the casing of whoever created the tag first. Concurrent creators
// race on the unique key; the loser re-reads the winner's row.
func findOrCreateTag(tx *gorm.DB, n tagName) (*models.Tag, error) {
	var tag models.Tag
	found := tx.Where("name_key = ?", n.key).Limit(1).Find(&tag)
	if found.Error != nil {
		return nil, pkgerrors.Wrap(found.Error, "find tag")
	}
	if found.RowsAffected > 0 {
		return &tag, nil
	}

	tag = models.Tag{Name: n.name, NameKey: n.key}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create tag")
	}
	if tag.ID != 0 {
		return &tag, nil
	}

	if err := tx.Where("name_key = ?", n.key).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Errorf("tag %q vanished after conflict", n.name)
		}
		return nil, pkgerrors.Wrap(err, "reload tag")
	}
	return &tag, nil
}

func sortedIDs(set map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListHeaderTags returns the tags shown in the site navigation.
func (r *TagResolver) ListHeaderTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("show_in_header = ?", true).Order("name ASC").Find(&tags).Error
	return tags, pkgerrors.Wrap(err, "list header tags")
}

// RelatedStories finds stories sharing tags with storyID, most shared tags first.
func (r *TagResolver) RelatedStories(ctx context.Context, storyID uint, limit int) ([]models.Story, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	db := r.db.WithContext(ctx)
	if err := storyExists(db, storyID); err != nil {
		return nil, err
	}

	shared := db.Model(&models.StoryTag{}).Select("tag_id").Where("story_id = ?", storyID)
	var stories []models.Story
	err := db.Model(&models.Story{}).
		Select("stories.*").
		Joins("JOIN story_tags ON story_tags.story_id = stories.id").
		Where("story_tags.tag_id IN (?) AND stories.id <> ?", shared, storyID).
		Group("stories.id").
		Order("COUNT(*) DESC, stories.vote_count DESC, stories.id ASC").
		Limit(limit).
		Find(&stories).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find related stories")
	}
	return stories, nil
}
