package services

import (
	"context"
	"errors"
	"testing"
	"vibeapps/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestToggleVoteIsAnInvolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "toggle")
	svc := env.engine.Engagement

	res, err := svc.ToggleVote(ctx, story.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Action: VoteAdded, NewCount: 1}, res)

	res, err = svc.ToggleVote(ctx, story.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, VoteResult{Action: VoteRemoved, NewCount: 0}, res)

	var votes int64
	require.NoError(t, env.db.Model(&models.Vote{}).Where("story_id = ?", story.ID).Count(&votes).Error)
	assert.Zero(t, votes)
	assert.Equal(t, 0, env.reload(t, story.ID).VoteCount)
	assert.Equal(t, []string{"1:votes", "1:votes"}, env.feed.Events())
}

func TestToggleVoteUnknownStory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.Engagement.ToggleVote(context.Background(), 404, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, env.feed.Events())
}

func TestConcurrentVotesKeepCounterExact(t *testing.T) {
	env := newTestEnv(t)
	story := env.story(t, "busy")
	svc := env.engine.Engagement

	var g errgroup.Group
	for user := uint(1); user <= 20; user++ {
		g.Go(func() error {
			_, err := svc.ToggleVote(context.Background(), story.ID, user)
			return err
		})
	}
	// user 1 toggles twice more, ending with a vote
	for range 2 {
		g.Go(func() error {
			_, err := svc.ToggleVote(context.Background(), story.ID, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	var votes int64
	require.NoError(t, env.db.Model(&models.Vote{}).Where("story_id = ?", story.ID).Count(&votes).Error)
	assert.EqualValues(t, 20, votes)
	assert.Equal(t, 20, env.reload(t, story.ID).VoteCount)
}

func TestRateIsOneTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "rated")
	svc := env.engine.Engagement

	res, err := svc.Rate(ctx, story.ID, 1, 4)
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	_, err = svc.Rate(ctx, story.ID, 1, 2)
	assert.True(t, errors.Is(err, ErrDuplicateAction))

	s := env.reload(t, story.ID)
	assert.Equal(t, 4, s.RatingSum)
	assert.Equal(t, 1, s.RatingCount)
}

func TestRateRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	story := env.story(t, "range")

	for _, v := range []int{0, 6, -1} {
		_, err := env.engine.Engagement.Rate(context.Background(), story.ID, 1, v)
		assert.True(t, errors.Is(err, ErrValidation), "value %d", v)
	}
	assert.Equal(t, 0, env.reload(t, story.ID).RatingCount)
}

func TestConcurrentRatingsFromOneUser(t *testing.T) {
	env := newTestEnv(t)
	story := env.story(t, "race")
	svc := env.engine.Engagement

	results := make([]error, 8)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, results[i] = svc.Rate(context.Background(), story.ID, 3, 5)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	accepted := 0
	for _, err := range results {
		if err == nil {
			accepted++
			continue
		}
		assert.True(t, errors.Is(err, ErrDuplicateAction), err.Error())
	}
	assert.Equal(t, 1, accepted)

	s := env.reload(t, story.ID)
	assert.Equal(t, 5, s.RatingSum)
	assert.Equal(t, 1, s.RatingCount)
}

func TestBookmarkToggleAndUserState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "saved")
	svc := env.engine.Engagement

	state, err := svc.GetUserState(ctx, story.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, UserState{}, state)

	res, err := svc.ToggleBookmark(ctx, story.ID, 9)
	require.NoError(t, err)
	assert.True(t, res.Bookmarked)

	_, err = svc.ToggleVote(ctx, story.ID, 9)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, story.ID, 9, 3)
	require.NoError(t, err)

	state, err = svc.GetUserState(ctx, story.ID, 9)
	require.NoError(t, err)
	assert.True(t, state.Voted)
	assert.True(t, state.Bookmarked)
	require.NotNil(t, state.Rating)
	assert.Equal(t, 3, *state.Rating)

	saved, err := svc.ListBookmarks(ctx, 9)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, story.ID, saved[0].ID)

	res, err = svc.ToggleBookmark(ctx, story.ID, 9)
	require.NoError(t, err)
	assert.False(t, res.Bookmarked)

	state, err = svc.GetUserState(ctx, story.ID, 9)
	require.NoError(t, err)
	assert.False(t, state.Bookmarked)

	// bookmarks are private, so no public counter moved
	s := env.reload(t, story.ID)
	assert.Equal(t, 1, s.VoteCount)
}
