// Package parser turns free-form message text into transactions.
//
// The accepted grammar is positional and whitespace-delimited:
//
//	[date] amount [currency] category
//
// where the optional date may be an explicit format ("2025-09-07",
// "25.03.2024") or a natural-language expression the configured resolver
// understands ("yesterday").
package parser

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-bot/internal/model"
)

var (
	// ErrTooFewTokens means the remainder after date stripping did not
	// contain both an amount and a category.
	ErrTooFewTokens = errors.New("parser: need at least an amount and a category")
	// ErrBadAmount means the first token did not parse as a decimal.
	ErrBadAmount = errors.New("parser: amount is not a number")
)

// Parser builds Transactions from message text. It is pure: no I/O, no
// database access, a fresh random identifier per call.
type Parser struct {
	dates *DateExtractor
	now   func() time.Time
}

func New(resolver DateResolver) *Parser {
	return &Parser{
		dates: NewDateExtractor(resolver),
		now:   time.Now,
	}
}

// Parse reads one message in the token grammar. The returned transaction
// carries no user reference; the caller resolves and sets that. Invalid
// input yields a sentinel error, never a partial transaction.
func (p *Parser) Parse(msg, defaultCurrency string) (*model.Transaction, error) {
	now := p.now()
	tx := &model.Transaction{
		TransactionID: uuid.NewString(),
		LclDttm:       now,
	}

	if date, consumed, ok := p.dates.Extract(msg, now); ok {
		tx.LclDttm = date
		msg = strings.TrimSpace(msg[consumed:])
	}

	parts := strings.Fields(msg)
	if len(parts) < 2 {
		return nil, ErrTooFewTokens
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(parts[0], ",", "."))
	if err != nil {
		return nil, ErrBadAmount
	}
	tx.AmountLcy = amount

	// A 3-letter alphabetic second token reads as a currency code only
	// when a category still remains after it.
	if len(parts) >= 3 && isCurrencyToken(parts[1]) {
		tx.CurrencyCode = strings.ToUpper(parts[1])
		tx.Category = strings.Join(parts[2:], " ")
	} else {
		tx.CurrencyCode = defaultCurrency
		tx.Category = strings.Join(parts[1:], " ")
	}

	return tx, nil
}

func isCurrencyToken(token string) bool {
	runes := []rune(token)
	if len(runes) != 3 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
