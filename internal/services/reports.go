package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"vibeapps/internal/models"
	"vibeapps/internal/utils"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

const ReportReasonMaxLength = 500

// ReportService owns abuse reports; one pending report per reporter and story.
type ReportService struct {
	base
}

// CreateReport files a pending report. A second pending report from the same user is a DuplicateActionError.
func (s *ReportService) CreateReport(ctx context.Context, storyID, reporterID uint, reason string) (report *models.Report, err error) {
	defer func(start time.Time) { s.observe("report", start, err) }(time.Now())

	reason = utils.StripTags(reason)
	if reason == "" {
		return nil, validationf("a reason is required to report a story")
	}
	if n := utils.RuneLen(reason); n > ReportReasonMaxLength {
		return nil, validationf("reason must be at most %d characters, got %d", ReportReasonMaxLength, n)
	}

	report = &models.Report{
		StoryID:    storyID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportPending,
	}
	var story *models.Story
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if story, err = lockStory(tx, storyID); err != nil {
			return err
		}

		var pending int64
		err = tx.Model(&models.Report{}).
			Where("story_id = ? AND reporter_id = ? AND status = ?", storyID, reporterID, models.ReportPending).
			Count(&pending).Error
		if err != nil {
			return pkgerrors.Wrap(err, "find pending report")
		}
		if pending > 0 {
			return duplicatef("you have already reported story %d and it is pending review", storyID)
		}

		if err := tx.Create(report).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicatef("you have already reported story %d and it is pending review", storyID)
			}
			return pkgerrors.Wrap(err, "create report")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyModerators(ctx, story, report)
	return report, nil
}

// notifyModerators tells every moderator about a new report. Failures are logged only;
// the report itself is already committed.
func (s *ReportService) notifyModerators(ctx context.Context, story *models.Story, report *models.Report) {
	db := s.db.WithContext(ctx)

	var moderators []models.User
	if err := db.Where("role IN ?", []string{models.RoleModerator, models.RoleAdmin}).Find(&moderators).Error; err != nil {
		slog.Error("load moderators for report notification", "report_id", report.ID, "err", err)
		return
	}

	notifications := make([]models.Notification, 0, len(moderators))
	for _, m := range moderators {
		notifications = append(notifications, models.Notification{
			UserID:   m.ID,
			ActorID:  &report.ReporterID,
			Type:     models.NotificationTypeReport,
			StoryID:  &report.StoryID,
			ReportID: &report.ID,
			Reason:   fmt.Sprintf("reported %q: %s", story.Title, report.Reason),
		})
	}
	if len(notifications) == 0 {
		return
	}
	if err := db.Create(&notifications).Error; err != nil {
		slog.Error("create report notifications", "report_id", report.ID, "err", err)
	}
}

// Resolve closes a pending report as resolved or dismissed.
func (s *ReportService) Resolve(ctx context.Context, reportID uint, outcome models.ReportStatus, moderatorID uint) (report *models.Report, err error) {
	defer func(start time.Time) { s.observe("resolve_report", start, err) }(time.Now())

	if outcome != models.ReportResolved && outcome != models.ReportDismissed {
		return nil, validationf("unknown report outcome %q", outcome)
	}

	report = &models.Report{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", reportID, models.ReportPending).
			UpdateColumns(map[string]any{
				"status":      outcome,
				"resolved_by": moderatorID,
				"resolved_at": now,
			})
		if res.Error != nil {
			return pkgerrors.Wrap(res.Error, "update report status")
		}

		if err := tx.First(report, reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("report %d not found", reportID)
			}
			return pkgerrors.Wrap(err, "find report")
		}
		if res.RowsAffected == 0 {
			return conflictf("report %d is already %s", reportID, report.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns reports in a given status, oldest first. An empty status lists pending ones.
func (s *ReportService) ListReports(ctx context.Context, status models.ReportStatus, limit int) ([]models.Report, error) {
	if status == "" {
		status = models.ReportPending
	}
	switch status {
	case models.ReportPending, models.ReportResolved, models.ReportDismissed:
	default:
		return nil, validationf("unknown report status %q", status)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list reports")
	}
	return reports, nil
}
