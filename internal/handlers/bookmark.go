package handlers

import (
	"net/http"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct {
	engagement *services.EngagementService
}

func NewBookmarkHandler(engine *services.Engine) *BookmarkHandler {
	return &BookmarkHandler{engagement: engine.Engagement}
}

// Toggle 切换收藏状态 - 收藏/取消收藏
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.engagement.ToggleBookmark(c.Request.Context(), storyID, currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// List 当前用户的收藏
func (h *BookmarkHandler) List(c *gin.Context) {
	stories, err := h.engagement.ListBookmarks(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}
