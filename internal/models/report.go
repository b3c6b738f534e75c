package models

import (
	"time"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// Report against a story. The partial unique index keeps one pending report per reporter and story.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	StoryID    uint         `gorm:"not null;index;uniqueIndex:idx_report_pending,where:status = 'pending'" json:"story_id"`
	Story      Story        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ReporterID uint         `gorm:"not null;index;uniqueIndex:idx_report_pending,where:status = 'pending'" json:"reporter_id"`
	Reason     string       `gorm:"size:500;not null" json:"reason"`
	Status     ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResolvedBy *uint        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
