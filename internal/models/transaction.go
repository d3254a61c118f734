package models

import "time"

// TransactionKind represents the direction of a transaction
type TransactionKind string

const (
	KindSpending TransactionKind = "spending"
	KindIncome   TransactionKind = "income"
)

// RecurrenceUnit is the calendar unit a recurrence rule steps by
type RecurrenceUnit string

const (
	UnitDay   RecurrenceUnit = "day"
	UnitWeek  RecurrenceUnit = "week"
	UnitMonth RecurrenceUnit = "month"
)

// Valid reports whether the unit is one of the supported calendar units.
func (u RecurrenceUnit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth:
		return true
	}
	return false
}

// RecurrenceRule describes how a seed transaction expands into a series.
// Every instance of a series stores its own copy so any member can
// regenerate the series. A zero Period means the transaction does not recur.
type RecurrenceRule struct {
	Period             int            `gorm:"column:recur_period" json:"period"`
	Unit               RecurrenceUnit `gorm:"column:recur_unit" json:"unit"`
	EndDate            time.Time      `gorm:"column:recur_end_date" json:"end_date"`
	ReminderOffsetDays *int           `gorm:"column:recur_reminder_offset_days" json:"reminder_offset_days,omitempty"`
}

// Transaction represents a single income or spending record. Members of a
// recurrence series carry a copy of the rule plus the full set of their
// sibling ids; a non-recurring transaction has a zero rule and an empty set.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Kind        TransactionKind `gorm:"not null" json:"kind"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	Recurrence RecurrenceRule `gorm:"embedded" json:"recurrence"`
	ReminderID *string        `gorm:"type:uuid" json:"reminder_id,omitempty"`
	SiblingIDs IDSet          `gorm:"type:text" json:"sibling_ids"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Recurring reports whether the transaction belongs to a recurrence series.
func (t *Transaction) Recurring() bool {
	return t.Recurrence.Period > 0
}
