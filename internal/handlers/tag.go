package handlers

import (
	"net/http"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *services.TagResolver
}

func NewTagHandler(engine *services.Engine) *TagHandler {
	return &TagHandler{tags: engine.Tags}
}

// Resolve turns tag ids and new names into canonical ids, creating tags as needed.
func (h *TagHandler) Resolve(c *gin.Context) {
	var req tagsRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := h.tags.Resolve(c.Request.Context(), req.TagIDs, req.NewTagNames)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag_ids": ids})
}

// Header 导航栏标签
func (h *TagHandler) Header(c *gin.Context) {
	tags, err := h.tags.ListHeaderTags(c.Request.Context())
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}
