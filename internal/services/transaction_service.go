package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"pennywise/internal/clock"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
	"pennywise/internal/pagination"
	"pennywise/internal/recurrence"
)

// transactionService handles transaction-related business logic. It wraps
// the pure recurrence expander with storage and reminder side effects,
// committing every series change as a single database transaction so a
// series is never observed half-materialized.
type transactionService struct {
	db        *gorm.DB
	expander  *recurrence.Expander
	scheduler ReminderScheduler
	clk       clock.Clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, expander *recurrence.Expander, scheduler ReminderScheduler, clk clock.Clock) TransactionServicer {
	return &transactionService{
		db:        db,
		expander:  expander,
		scheduler: scheduler,
		clk:       clk,
	}
}

// CreateTransaction creates a transaction and, when a recurrence rule is
// given, materializes the whole series up front: instances never appear
// lazily. The rule is validated fail-fast before expansion.
func (s *transactionService) CreateTransaction(
	userID string,
	categoryID *string,
	kind models.TransactionKind,
	amount int64,
	description string,
	date time.Time,
	rule *models.RecurrenceRule,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if kind != models.KindSpending && kind != models.KindIncome {
		return nil, apperrors.ErrInvalidTransactionKind
	}

	now := s.clk.Now()
	if date.IsZero() {
		date = now
	}

	if categoryID != nil {
		if err := s.checkCategory(userID, *categoryID); err != nil {
			return nil, err
		}
	}

	seed := models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Date:        date,
		SiblingIDs:  models.IDSet{},
	}

	if rule == nil {
		if err := s.db.Create(&seed).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &seed, nil
	}

	if err := validateRuleForDate(*rule, date); err != nil {
		return nil, err
	}

	series, err := s.expander.GenerateSeries(seed, *rule, now)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range series.Instances {
			if err := s.scheduleReminder(tx, &series.Instances[i], now); err != nil {
				return err
			}
		}
		if err := tx.Create(&series.Instances).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &series.Instances[0], nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetMonthTransactions retrieves the user's transactions for one calendar
// month, oldest first.
func (s *transactionService) GetMonthTransactions(userID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date ASC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Kind != nil {
		q = q.Where("kind = ?", *f.Kind)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != nil {
		q = q.Where("LOWER(description) LIKE LOWER(?)", "%"+*f.Search+"%")
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// FutureSiblings returns the members of the transaction's series dated
// strictly after it. A non-empty result is what prompts the client's
// "apply to future occurrences?" confirmation.
func (s *transactionService) FutureSiblings(userID, transactionID string) ([]models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.loadSiblings(userID, transaction)
	if err != nil {
		return nil, err
	}

	return recurrence.FindFutureSiblings(*transaction, siblings), nil
}

// UpdateTransaction edits a transaction. With applyToFuture set, amount
// and description changes cascade to every sibling dated after it, in the
// same database transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, fields TransactionUpdate, applyToFuture bool) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if fields.Amount != nil && *fields.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	updates := make(map[string]interface{})
	if fields.Amount != nil {
		updates["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.CategoryID != nil {
		if *fields.CategoryID != nil {
			if err := s.checkCategory(userID, **fields.CategoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = *fields.CategoryID
	}
	if fields.Date != nil {
		updates["date"] = *fields.Date
	}
	if len(updates) == 0 {
		return transaction, nil
	}

	// Only amount and description cascade; a date or category edit is
	// local to the edited instance.
	cascade := make(map[string]interface{})
	if fields.Amount != nil {
		cascade["amount"] = *fields.Amount
	}
	if fields.Description != nil {
		cascade["description"] = *fields.Description
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if !applyToFuture || len(cascade) == 0 {
			return nil
		}

		siblings, err := s.loadSiblings(userID, transaction)
		if err != nil {
			return err
		}
		future := recurrence.FindFutureSiblings(*transaction, siblings)
		for i := range future {
			if err := tx.Model(&future[i]).Updates(cascade).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// UpdateRecurrence replaces the recurrence rule on a materialized series,
// or attaches one to a standalone transaction. All siblings dated after
// the edited transaction are deleted with their reminders cancelled, the
// forward series is regenerated under the new rule, and the sibling sets
// of every surviving member are rebuilt, all in one database transaction.
func (s *transactionService) UpdateRecurrence(userID, transactionID string, rule models.RecurrenceRule) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.loadSiblings(userID, transaction)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	regen, err := s.expander.RegenerateFrom(*transaction, rule, siblings, now)
	if err != nil {
		return nil, err
	}

	reminderByTransaction := make(map[string]*string, len(siblings)+1)
	reminderByTransaction[transaction.ID] = transaction.ReminderID
	for _, sibling := range siblings {
		reminderByTransaction[sibling.ID] = sibling.ReminderID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Drop the obsolete forward instances and their reminders.
		for _, id := range regen.ToDelete {
			if reminderID := reminderByTransaction[id]; reminderID != nil {
				if err := s.scheduler.Cancel(tx, *reminderID); err != nil {
					return err
				}
			}
		}
		if len(regen.ToDelete) > 0 {
			if err := tx.Where("id IN ?", regen.ToDelete).Delete(&models.Transaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		// Materialize the replacement series.
		for i := range regen.ToCreate {
			if err := s.scheduleReminder(tx, &regen.ToCreate[i], now); err != nil {
				return err
			}
		}
		if len(regen.ToCreate) > 0 {
			if err := tx.Create(&regen.ToCreate).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		// Relink survivors. The first entry is the edited transaction,
		// which also takes the new rule and a rescheduled reminder.
		edited := &regen.ToUpdate[0]
		if edited.ReminderID != nil {
			if err := s.scheduler.Cancel(tx, *edited.ReminderID); err != nil {
				return err
			}
			edited.ReminderID = nil
		}
		if err := s.scheduleReminder(tx, edited, now); err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", edited.ID).Updates(map[string]interface{}{
			"sibling_ids":                edited.SiblingIDs,
			"recur_period":               rule.Period,
			"recur_unit":                 rule.Unit,
			"recur_end_date":             rule.EndDate,
			"recur_reminder_offset_days": rule.ReminderOffsetDays,
			"reminder_id":                edited.ReminderID,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, survivor := range regen.ToUpdate[1:] {
			if err := tx.Model(&models.Transaction{}).Where("id = ?", survivor.ID).
				Update("sibling_ids", survivor.SiblingIDs).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction deletes a transaction. With wholeSeries set, every
// member of its recurrence series goes with it; otherwise the remaining
// siblings are unlinked from the deleted instance. Scheduled reminders of
// removed instances are cancelled either way.
func (s *transactionService) DeleteTransaction(userID, transactionID string, wholeSeries bool) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	siblings, err := s.loadSiblings(userID, transaction)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.ReminderID != nil {
			if err := s.scheduler.Cancel(tx, *transaction.ReminderID); err != nil {
				return err
			}
		}

		if !wholeSeries {
			if err := tx.Delete(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			for _, sibling := range siblings {
				if err := tx.Model(&models.Transaction{}).Where("id = ?", sibling.ID).
					Update("sibling_ids", sibling.SiblingIDs.Without(transaction.ID)).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}
			return nil
		}

		ids := []string{transaction.ID}
		for _, sibling := range siblings {
			ids = append(ids, sibling.ID)
			if sibling.ReminderID != nil {
				if err := s.scheduler.Cancel(tx, *sibling.ReminderID); err != nil {
					return err
				}
			}
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// loadSiblings fetches the persisted members of a transaction's sibling set.
func (s *transactionService) loadSiblings(userID string, transaction *models.Transaction) ([]models.Transaction, error) {
	if len(transaction.SiblingIDs) == 0 {
		return []models.Transaction{}, nil
	}

	var siblings []models.Transaction
	if err := s.db.Where("user_id = ? AND id IN ?", userID, []string(transaction.SiblingIDs)).
		Find(&siblings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return siblings, nil
}

// scheduleReminder schedules a reminder for the instance when its rule
// carries an offset and the instance is still in the future, recording the
// reminder id on the instance.
func (s *transactionService) scheduleReminder(tx *gorm.DB, instance *models.Transaction, now time.Time) error {
	offset := instance.Recurrence.ReminderOffsetDays
	if offset == nil || !instance.Date.After(now) {
		return nil
	}

	message := instance.Description
	if message == "" {
		message = "Upcoming transaction"
	}
	fireAt := instance.Date.AddDate(0, 0, -*offset)

	reminderID, err := s.scheduler.Schedule(tx, instance.UserID, instance.ID, fireAt, message)
	if err != nil {
		return err
	}
	instance.ReminderID = &reminderID
	return nil
}

// checkCategory verifies the category exists and belongs to the user.
func (s *transactionService) checkCategory(userID, categoryID string) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// validateRuleForDate is the creation-time rule check: structural validity
// plus an end date strictly after the seed date. The expander would treat
// a same-day end date as a silent no-op; creating a recurrence that can
// never recur is rejected here instead.
func validateRuleForDate(rule models.RecurrenceRule, date time.Time) error {
	if rule.Period <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "recurrence period must be positive")
	}
	if !rule.Unit.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "unsupported recurrence unit")
	}
	if !rule.EndDate.After(date) {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "recurrence end date must be after the transaction date")
	}
	if rule.ReminderOffsetDays != nil && *rule.ReminderOffsetDays <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidRule, "reminder offset must be positive")
	}
	return nil
}
