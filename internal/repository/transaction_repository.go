package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledger-bot/internal/model"
)

// CurrencyTotal is one row of a per-currency spending aggregate.
type CurrencyTotal struct {
	CurrencyCode string
	Total        decimal.Decimal
}

// TransactionRepository handles reads and writes for logged transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Insert(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// LastByUser returns the most recently logged transaction for the user,
// or (nil, nil) when the user has none.
func (r *TransactionRepository) LastByUser(ctx context.Context, userUUID string) (*model.Transaction, error) {
	var tx model.Transaction
	err := r.db.WithContext(ctx).Where("user_uuid = ?", userUUID).
		Order("created_at DESC").First(&tx).Error
	switch {
	case err == nil:
		return &tx, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find last transaction: %w", err)
	}
}

// DeleteByID removes a transaction and reports how many rows went away.
func (r *TransactionRepository) DeleteByID(ctx context.Context, transactionID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).
		Delete(&model.Transaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete transaction: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// TotalsByCurrency sums amounts per currency for one user since the given
// moment, ordered by currency code.
func (r *TransactionRepository) TotalsByCurrency(ctx context.Context, userUUID string, since time.Time) ([]CurrencyTotal, error) {
	var totals []CurrencyTotal
	if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("currency_code, SUM(amount_lcy) AS total").
		Where("user_uuid = ? AND lcl_dttm >= ?", userUUID, since).
		Group("currency_code").
		Order("currency_code ASC").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}
	return totals, nil
}
