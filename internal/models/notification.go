package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReport NotificationType = "report" // 举报通知
	NotificationTypeSystem NotificationType = "system"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	ActorID   *uint            `gorm:"index" json:"actor_id"`         // Sender
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	StoryID   *uint            `gorm:"index" json:"story_id,omitempty"`
	ReportID  *uint            `json:"report_id,omitempty"`
	Reason    string           `gorm:"type:text" json:"reason"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
