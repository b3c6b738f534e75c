package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

const sseHeartbeat = 25 * time.Second

type StoryHandler struct {
	stories *services.StoryAggregate
	tags    *services.TagResolver
	feed    *services.ChangeFeed
}

func NewStoryHandler(engine *services.Engine, feed *services.ChangeFeed) *StoryHandler {
	return &StoryHandler{stories: engine.Stories, tags: engine.Tags, feed: feed}
}

// Detail returns the story's engagement projection.
func (h *StoryHandler) Detail(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.stories.Project(c.Request.Context(), storyID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Related 相关推荐，按共同标签数排序
func (h *StoryHandler) Related(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	stories, err := h.tags.RelatedStories(c.Request.Context(), storyID, limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

type tagsRequest struct {
	TagIDs      []uint   `json:"tag_ids"`
	NewTagNames []string `json:"new_tag_names"`
}

// UpdateTags replaces the story's tag set.
func (h *StoryHandler) UpdateTags(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req tagsRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := h.tags.AssignStoryTags(c.Request.Context(), storyID, req.TagIDs, req.NewTagNames)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag_ids": ids})
}

// Events streams change notifications for one story as server-sent events.
// Clients re-read the projection when an event arrives.
func (h *StoryHandler) Events(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.stories.Project(c.Request.Context(), storyID); err != nil {
		RenderError(c, err)
		return
	}

	events, cancel := h.feed.Subscribe(storyID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
