package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectAverageRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "avg")

	p, err := env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Zero(t, p.AverageRating)
	assert.Zero(t, p.RatingCount)
	assert.Empty(t, p.TagIDs)

	for user, v := range map[uint]int{1: 5, 2: 4, 3: 2} {
		_, err := env.engine.Engagement.Rate(ctx, story.ID, user, v)
		require.NoError(t, err)
	}

	p, err = env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.RatingCount)
	assert.InDelta(t, 11.0/3.0, p.AverageRating, 1e-9)
}

func TestProjectUnknownStory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Stories.Project(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestProjectScoreTracksEngagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "score")

	p, err := env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Score)

	_, err = env.engine.Engagement.ToggleVote(ctx, story.ID, 1)
	require.NoError(t, err)

	p, err = env.engine.Stories.Project(ctx, story.ID)
	require.NoError(t, err)
	assert.Greater(t, p.Score, 0.0)
}

func TestHotScore(t *testing.T) {
	cfg := DefaultRankConfig

	assert.Zero(t, HotScore(cfg, time.Hour, 0, 0, 0, 0))

	fresh := HotScore(cfg, time.Hour, 10, 2, 1, 5)
	stale := HotScore(cfg, 48*time.Hour, 10, 2, 1, 5)
	assert.Greater(t, fresh, stale)

	more := HotScore(cfg, time.Hour, 20, 2, 1, 5)
	assert.Greater(t, more, fresh)

	// a comment outweighs a vote
	assert.Greater(t, HotScore(cfg, time.Hour, 0, 1, 0, 0), HotScore(cfg, time.Hour, 1, 0, 0, 0))

	// clock skew is treated as brand new
	assert.Equal(t, HotScore(cfg, 0, 3, 0, 0, 0), HotScore(cfg, -time.Hour, 3, 0, 0, 0))
}
