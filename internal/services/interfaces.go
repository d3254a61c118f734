package services

import (
	"time"

	"gorm.io/gorm"

	"pennywise/internal/models"
	"pennywise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, displayName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, kind models.TransactionKind, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Kind       *models.TransactionKind
	CategoryID *string
	Search     *string
	MinAmount  *int64
	MaxAmount  *int64
}

// TransactionUpdate holds the editable fields of a transaction. A nil
// field is left unchanged. CategoryID uses a double pointer so callers can
// distinguish "don't change" from "clear".
type TransactionUpdate struct {
	Amount      *int64
	Description *string
	CategoryID  **string
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction-related business
// logic, including recurrence-series orchestration.
type TransactionServicer interface {
	CreateTransaction(userID string, categoryID *string, kind models.TransactionKind, amount int64, description string, date time.Time, rule *models.RecurrenceRule) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetMonthTransactions(userID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	FutureSiblings(userID, transactionID string) ([]models.Transaction, error)
	UpdateTransaction(userID, transactionID string, fields TransactionUpdate, applyToFuture bool) (*models.Transaction, error)
	UpdateRecurrence(userID, transactionID string, rule models.RecurrenceRule) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string, wholeSeries bool) error
}

// ReminderScheduler schedules and cancels transaction reminders. Schedule
// and Cancel take the caller's database handle so reminder writes join the
// caller's transaction and commit atomically with the series they belong to.
type ReminderScheduler interface {
	Schedule(tx *gorm.DB, userID, transactionID string, fireAt time.Time, message string) (string, error)
	Cancel(tx *gorm.DB, reminderID string) error
	ListUpcoming(userID string, from time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.Reminder], error)
}

// MonthSummary aggregates a user's totals for one calendar month. Amounts
// are in cents, so the two-decimal rounding of displayed totals is exact.
type MonthSummary struct {
	Year     int   `json:"year"`
	Month    int   `json:"month"`
	Income   int64 `json:"income"`
	Spending int64 `json:"spending"`
	Net      int64 `json:"net"`
	Count    int64 `json:"count"`
}

// YearSummary holds one entry per calendar month, in order; this is the
// data series behind the monthly spending bar chart.
type YearSummary struct {
	Year   int            `json:"year"`
	Months []MonthSummary `json:"months"`
}

// SummaryServicer defines the contract for aggregate views of transactions.
type SummaryServicer interface {
	MonthSummary(userID string, year int, month time.Month) (*MonthSummary, error)
	YearSummary(userID string, year int) (*YearSummary, error)
}
