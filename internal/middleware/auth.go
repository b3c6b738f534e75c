package middleware

import (
	"net/http"
	"vibeapps/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// SessionUserKey is the session field the identity provider callback fills in.
const SessionUserKey = "user_id"

// LoadUser retrieves user from session and sets to context
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			result := db.WithContext(c.Request.Context()).Limit(1).Find(&user, userID)
			if result.Error == nil && result.RowsAffected > 0 {
				c.Set(CheckUserKey, &user)

				// Fetch Unread Notification Count
				var count int64
				db.WithContext(c.Request.Context()).Model(&models.Notification{}).
					Where("user_id = ? AND is_read = ?", user.ID, false).Count(&count)
				c.Set(UnreadCountKey, count)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user LoadUser attached, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// AuthRequired ensures a user is logged in. Must run after LoadUser.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "login required",
			})
			return
		}
		c.Next()
	}
}

// ModeratorRequired lets admins and moderators through.
func ModeratorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "login required",
			})
			return
		}
		if !user.IsModerator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "moderator role required",
			})
			return
		}
		c.Next()
	}
}
