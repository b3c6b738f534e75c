package services

import (
	"context"
	"errors"
	"testing"
	"vibeapps/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReusesTagsCaseInsensitively(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.engine.Tags

	first, err := svc.Resolve(ctx, nil, []string{"Alpha"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Resolve(ctx, nil, []string{"alpha", "  ALPHA  "})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var tag models.Tag
	require.NoError(t, env.db.First(&tag, first[0]).Error)
	assert.Equal(t, "Alpha", tag.Name)

	var count int64
	require.NoError(t, env.db.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestResolveUnionIsSortedAndUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.engine.Tags

	seeded, err := svc.Resolve(ctx, nil, []string{"Games", "AI"})
	require.NoError(t, err)
	require.Len(t, seeded, 2)

	ids, err := svc.Resolve(ctx, []uint{seeded[1], seeded[0], seeded[1]}, []string{"games", "Tools"})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.IsIncreasing(t, ids)
	assert.Subset(t, ids, seeded)
}

func TestResolveRejectsEmptyAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.engine.Tags

	_, err := svc.Resolve(ctx, nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Resolve(ctx, nil, []string{" ", "<i></i>"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Resolve(ctx, []uint{77}, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Resolve(ctx, []uint{0}, []string{"ok"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestAssignStoryTagsReplacesSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "tagged")
	svc := env.engine.Tags

	ids, err := svc.AssignStoryTags(ctx, story.ID, nil, []string{"Go", "Web"})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	p, err := env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, ids, p.TagIDs)

	only, err := svc.AssignStoryTags(ctx, story.ID, []uint{ids[0]}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[0]}, only)

	p, err = env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[0]}, p.TagIDs)

	_, err = svc.AssignStoryTags(ctx, story.ID, nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = svc.AssignStoryTags(ctx, 999, nil, []string{"Go"})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []string{"1:tags", "1:tags"}, env.feed.Events())
}

func TestRelatedStoriesBySharedTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := env.engine.Tags

	origin := env.story(t, "origin")
	near := env.story(t, "near")
	far := env.story(t, "far")
	unrelated := env.story(t, "unrelated")

	_, err := svc.AssignStoryTags(ctx, origin.ID, nil, []string{"Go", "Web", "CLI"})
	require.NoError(t, err)
	_, err = svc.AssignStoryTags(ctx, near.ID, nil, []string{"go", "web"})
	require.NoError(t, err)
	_, err = svc.AssignStoryTags(ctx, far.ID, nil, []string{"CLI"})
	require.NoError(t, err)
	_, err = svc.AssignStoryTags(ctx, unrelated.ID, nil, []string{"Games"})
	require.NoError(t, err)

	related, err := svc.RelatedStories(ctx, origin.ID, 0)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, near.ID, related[0].ID)
	assert.Equal(t, far.ID, related[1].ID)

	_, err = svc.RelatedStories(ctx, 999, 5)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListHeaderTags(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&[]models.Tag{
		{Name: "Games", NameKey: "games", ShowInHeader: true},
		{Name: "AI", NameKey: "ai", ShowInHeader: true},
		{Name: "Misc", NameKey: "misc"},
	}).Error)

	tags, err := env.engine.Tags.ListHeaderTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "AI", tags[0].Name)
	assert.Equal(t, "Games", tags[1].Name)
}
