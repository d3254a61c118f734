package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// reminderService persists scheduled reminders. It implements the
// ReminderScheduler collaborator; actually delivering notifications is the
// job of whatever platform consumes the reminders table.
type reminderService struct {
	db *gorm.DB
}

// NewReminderService creates a new ReminderScheduler.
func NewReminderService(db *gorm.DB) ReminderScheduler {
	return &reminderService{db: db}
}

// Schedule records a reminder for a transaction and returns its id. The
// write goes through tx so it commits with the caller's transaction.
func (s *reminderService) Schedule(tx *gorm.DB, userID, transactionID string, fireAt time.Time, message string) (string, error) {
	reminder := &models.Reminder{
		UserID:        userID,
		TransactionID: transactionID,
		FireAt:        fireAt,
		Message:       message,
	}
	if err := tx.Create(reminder).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminder.ID, nil
}

// Cancel removes a scheduled reminder. Cancelling an already-removed
// reminder is a no-op so series deletion stays idempotent. The delete is
// hard: a rescheduled reminder reuses the transaction id, which the unique
// index would otherwise reject against a soft-deleted row.
func (s *reminderService) Cancel(tx *gorm.DB, reminderID string) error {
	if err := tx.Unscoped().Where("id = ?", reminderID).Delete(&models.Reminder{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListUpcoming returns the user's reminders firing at or after from,
// soonest first.
func (s *reminderService) ListUpcoming(userID string, from time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Reminder], error) {
	page.Defaults()

	base := s.db.Model(&models.Reminder{}).Where("user_id = ? AND fire_at >= ?", userID, from)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reminders []models.Reminder
	if err := base.Scopes(pagination.Paginate(page)).Order("fire_at ASC").Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(reminders, page.Page, page.PageSize, totalItems)
	return &result, nil
}
