package models

// Category groups transactions for browsing and charting. Kind mirrors the
// transaction kinds so income and spending categories stay separate.
type Category struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string          `gorm:"not null" json:"name"`
	Kind   TransactionKind `gorm:"not null" json:"kind"`
	Icon   string          `json:"icon"`
	Color  string          `json:"color"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
