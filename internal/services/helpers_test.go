package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"vibeapps/internal/db"
	"vibeapps/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	engine *Engine
	feed   *recordingNotifier
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingNotifier) Notify(storyID uint, field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("%d:%s", storyID, field))
}

func (r *recordingNotifier) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqldb, err := conn.DB(); err == nil {
			sqldb.Close()
		}
	})

	feed := &recordingNotifier{}
	return &testEnv{
		db:     conn,
		engine: NewEngine(conn, Options{Feed: feed}),
		feed:   feed,
	}
}

func (e *testEnv) story(t *testing.T, title string) *models.Story {
	t.Helper()
	s := &models.Story{Slug: fmt.Sprintf("%s-%d", title, time.Now().UnixNano()), Title: title, UserID: 1}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *testEnv) user(t *testing.T, name, role string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: "ext-" + name, Username: name, Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) reload(t *testing.T, storyID uint) models.Story {
	t.Helper()
	var s models.Story
	require.NoError(t, e.db.First(&s, storyID).Error)
	return s
}
