package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/models"
)

// summaryService aggregates transactions into the month and year views
// behind the totals screens and the spending bar chart.
type summaryService struct {
	db *gorm.DB
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB) SummaryServicer {
	return &summaryService{db: db}
}

// MonthSummary returns income, spending, and net totals for one calendar month.
func (s *summaryService) MonthSummary(userID string, year int, month time.Month) (*MonthSummary, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.window(userID, year, int(month), start, end)
}

// YearSummary returns one MonthSummary per calendar month of the year.
func (s *summaryService) YearSummary(userID string, year int) (*YearSummary, error) {
	summary := &YearSummary{Year: year, Months: make([]MonthSummary, 0, 12)}
	for month := time.January; month <= time.December; month++ {
		ms, err := s.MonthSummary(userID, year, month)
		if err != nil {
			return nil, err
		}
		summary.Months = append(summary.Months, *ms)
	}
	return summary, nil
}

func (s *summaryService) window(userID string, year, month int, start, end time.Time) (*MonthSummary, error) {
	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	income, err := s.sumKind(userID, models.KindIncome, start, end)
	if err != nil {
		return nil, err
	}
	spending, err := s.sumKind(userID, models.KindSpending, start, end)
	if err != nil {
		return nil, err
	}

	return &MonthSummary{
		Year:     year,
		Month:    month,
		Income:   income,
		Spending: spending,
		Net:      income - spending,
		Count:    count,
	}, nil
}

func (s *summaryService) sumKind(userID string, kind models.TransactionKind, start, end time.Time) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND kind = ? AND date >= ? AND date < ?", userID, kind, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}
