package handlers

import (
	"net/http"
	"strconv"
	"vibeapps/internal/models"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

// ModerationHandler serves the comment and report queues to moderators.
type ModerationHandler struct {
	comments *services.CommentService
	reports  *services.ReportService
}

func NewModerationHandler(engine *services.Engine) *ModerationHandler {
	return &ModerationHandler{comments: engine.Comments, reports: engine.Reports}
}

func (h *ModerationHandler) PendingComments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	comments, err := h.comments.ListPending(c.Request.Context(), limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type moderateRequest struct {
	Decision services.Decision `json:"decision" binding:"required"`
}

// ModerateComment 审核评论：approve / reject
func (h *ModerationHandler) ModerateComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moderateRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Moderate(c.Request.Context(), commentID, req.Decision, currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *ModerationHandler) Reports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reports, err := h.reports.ListReports(c.Request.Context(), models.ReportStatus(c.Query("status")), limit)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type resolveRequest struct {
	Outcome models.ReportStatus `json:"outcome" binding:"required"`
}

// ResolveReport 处理举报：resolved / dismissed
func (h *ModerationHandler) ResolveReport(c *gin.Context) {
	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req resolveRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reports.Resolve(c.Request.Context(), reportID, req.Outcome, currentUser(c).ID)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
