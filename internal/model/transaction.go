package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single logged expense or income entry.
// Constructed by the parser from one inbound message and immutable after
// it has been handed to the repository.
type Transaction struct {
	TransactionID         string `gorm:"primaryKey;size:36"`
	LclDttm               time.Time
	EntityType            string
	Category              string
	UserUUID              string `gorm:"index;size:36"`
	AmountLcy             decimal.Decimal `gorm:"type:decimal(20,4)"`
	CurrencyCode          string
	Place                 string
	Description           string
	ExpectedTransactionID string
	CreatedAt             time.Time
}
