package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"vibeapps/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCreateReportRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "reason")
	svc := env.engine.Reports

	for _, reason := range []string{"", "   ", "<b></b>"} {
		_, err := svc.CreateReport(ctx, story.ID, 1, reason)
		assert.True(t, errors.Is(err, ErrValidation), "reason %q", reason)
	}

	_, err := svc.CreateReport(ctx, story.ID, 1, strings.Repeat("x", ReportReasonMaxLength+1))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.CreateReport(ctx, 999, 1, "spam")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateReportStripsMarkup(t *testing.T) {
	env := newTestEnv(t)
	story := env.story(t, "markup")

	r, err := env.engine.Reports.CreateReport(context.Background(), story.ID, 1, "<script>x</script>spam &amp; scam")
	require.NoError(t, err)
	assert.Equal(t, "spam & scam", r.Reason)
	assert.Equal(t, models.ReportPending, r.Status)
}

func TestOnePendingReportPerReporter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "dupe")
	svc := env.engine.Reports

	first, err := svc.CreateReport(ctx, story.ID, 1, "spam")
	require.NoError(t, err)

	_, err = svc.CreateReport(ctx, story.ID, 1, "still spam")
	assert.True(t, errors.Is(err, ErrDuplicateAction))

	// another reporter is independent
	_, err = svc.CreateReport(ctx, story.ID, 2, "spam")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, first.ID, models.ReportDismissed, 100)
	require.NoError(t, err)
	assert.Equal(t, models.ReportDismissed, resolved.Status)

	// once the first is closed the same user may report again
	_, err = svc.CreateReport(ctx, story.ID, 1, "it is back")
	require.NoError(t, err)
}

func TestConcurrentReportsYieldOnePending(t *testing.T) {
	env := newTestEnv(t)
	story := env.story(t, "flood")
	svc := env.engine.Reports

	errs := make([]error, 10)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			_, errs[i] = svc.CreateReport(context.Background(), story.ID, 5, "spam")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.Is(err, ErrDuplicateAction), err.Error())
	}
	assert.Equal(t, 1, created)

	var pending int64
	require.NoError(t, env.db.Model(&models.Report{}).
		Where("story_id = ? AND reporter_id = ? AND status = ?", story.ID, 5, models.ReportPending).
		Count(&pending).Error)
	assert.EqualValues(t, 1, pending)
}

func TestResolveIsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "resolve")
	svc := env.engine.Reports

	r, err := svc.CreateReport(ctx, story.ID, 1, "spam")
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, r.ID, models.ReportResolved, 100)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, uint(100), *got.ResolvedBy)

	_, err = svc.Resolve(ctx, r.ID, models.ReportDismissed, 101)
	assert.True(t, errors.Is(err, ErrStateConflict))

	_, err = svc.Resolve(ctx, 999, models.ReportResolved, 100)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Resolve(ctx, r.ID, models.ReportPending, 100)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestReportNotifiesModerators(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "notify")
	mod := env.user(t, "mod", models.RoleModerator)
	admin := env.user(t, "root", models.RoleAdmin)
	reporter := env.user(t, "alice", models.RoleUser)

	r, err := env.engine.Reports.CreateReport(ctx, story.ID, reporter.ID, "spam")
	require.NoError(t, err)

	var notes []models.Notification
	require.NoError(t, env.db.Order("user_id ASC").Find(&notes).Error)
	require.Len(t, notes, 2)
	assert.Equal(t, mod.ID, notes[0].UserID)
	assert.Equal(t, admin.ID, notes[1].UserID)
	for _, n := range notes {
		assert.Equal(t, models.NotificationTypeReport, n.Type)
		require.NotNil(t, n.ReportID)
		assert.Equal(t, r.ID, *n.ReportID)
	}
}

func TestListReportsByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	story := env.story(t, "list")
	svc := env.engine.Reports

	a, err := svc.CreateReport(ctx, story.ID, 1, "spam")
	require.NoError(t, err)
	_, err = svc.CreateReport(ctx, story.ID, 2, "spam")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, a.ID, models.ReportResolved, 100)
	require.NoError(t, err)

	pending, err := svc.ListReports(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	resolved, err := svc.ListReports(ctx, models.ReportResolved, 10)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, a.ID, resolved[0].ID)

	_, err = svc.ListReports(ctx, "archived", 10)
	assert.True(t, errors.Is(err, ErrValidation))
}
