package handlers

import (
	"net/http"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	engagement *services.EngagementService
}

func NewVoteHandler(engine *services.Engine) *VoteHandler {
	return &VoteHandler{engagement: engine.Engagement}
}

// Vote toggles the current user's upvote.
func (h *VoteHandler) Vote(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.engagement.ToggleVote(c.Request.Context(), storyID, currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type rateRequest struct {
	Value *int `json:"value" binding:"required"`
}

// Rate records the current user's one-time star rating.
func (h *VoteHandler) Rate(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.engagement.Rate(c.Request.Context(), storyID, currentUser(c).ID, *req.Value)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// State reports whether the current user voted, rated or bookmarked the story.
func (h *VoteHandler) State(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	state, err := h.engagement.GetUserState(c.Request.Context(), storyID, currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
