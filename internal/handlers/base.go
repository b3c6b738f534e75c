package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"vibeapps/internal/middleware"
	"vibeapps/internal/models"
	"vibeapps/internal/services"
	"vibeapps/internal/utils"

	"github.com/gin-gonic/gin"
)

// RenderError writes the JSON error body for err. Engine kinds map to 4xx; anything else is a 500
// and is logged rather than shown to the client.
func RenderError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal", "message": "internal server error"})
		return
	}

	message := err.Error()
	var e *services.Error
	if errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": string(kind), "message": message})
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindDuplicateAction, services.KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": string(services.KindValidation), "message": message})
}

// bindJSON decodes the body into obj; unknown fields are rejected when the decoder is configured so.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(c, "request body is required")
			return false
		}
		badRequest(c, err.Error())
		return false
	}
	return true
}

// pathID parses the named path parameter as a database id.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		badRequest(c, err.Error())
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(middleware.CheckUserKey).(*models.User)
}
