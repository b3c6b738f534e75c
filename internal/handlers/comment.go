package handlers

import (
	"net/http"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(engine *services.Engine) *CommentHandler {
	return &CommentHandler{comments: engine.Comments}
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// Create 发表评论，进入待审核队列
func (h *CommentHandler) Create(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.AddComment(c.Request.Context(), storyID, currentUser(c).ID, req.Content, req.ParentID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// List returns approved comments in thread order.
func (h *CommentHandler) List(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.ListApproved(c.Request.Context(), storyID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
