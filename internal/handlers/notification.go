package handlers

import (
	"net/http"
	"vibeapps/internal/middleware"
	"vibeapps/internal/models"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := currentUser(c)

	var notifications []models.Notification
	err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		RenderError(c, pkgerrors.Wrap(err, "list notifications"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread":        c.GetInt64(middleware.UnreadCountKey),
	})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	user := currentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_read", true)
	if res.Error != nil {
		RenderError(c, pkgerrors.Wrap(res.Error, "mark notification read"))
		return
	}
	if res.RowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
