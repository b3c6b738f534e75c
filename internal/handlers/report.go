package handlers

import (
	"net/http"
	"vibeapps/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(engine *services.Engine) *ReportHandler {
	return &ReportHandler{reports: engine.Reports}
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// Create 处理举报逻辑
func (h *ReportHandler) Create(c *gin.Context) {
	storyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reports.CreateReport(c.Request.Context(), storyID, currentUser(c).ID, req.Reason)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
