package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(resolver DateResolver) *Parser {
	p := New(resolver)
	p.now = func() time.Time { return testNow }
	return p
}

func TestParseDefaultCurrency(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("100 food", "EUR")

	require.NoError(t, err)
	assert.True(t, tx.AmountLcy.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "EUR", tx.CurrencyCode)
	assert.Equal(t, "food", tx.Category)
	assert.Equal(t, testNow, tx.LclDttm)
	assert.NotEmpty(t, tx.TransactionID)
}

func TestParseDateCurrencyCategory(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("25.03.2024 100 USD Groceries", "EUR")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), tx.LclDttm)
	assert.True(t, tx.AmountLcy.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "USD", tx.CurrencyCode)
	assert.Equal(t, "Groceries", tx.Category)
}

func TestParseISODateCommaAmount(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("2025-09-07 42,50 taxi", "EUR")

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC), tx.LclDttm)
	assert.True(t, tx.AmountLcy.Equal(decimal.RequireFromString("42.50")))
	assert.Equal(t, "EUR", tx.CurrencyCode)
	assert.Equal(t, "taxi", tx.Category)
}

func TestParseNaturalDate(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	p := newTestParser(&stubResolver{tokens: map[string]time.Time{"yesterday": yesterday}})

	tx, err := p.Parse("yesterday 250 taxi", "RUB")

	require.NoError(t, err)
	assert.Equal(t, yesterday, tx.LclDttm)
	assert.True(t, tx.AmountLcy.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "RUB", tx.CurrencyCode)
	assert.Equal(t, "taxi", tx.Category)
}

func TestParseMultiWordCategory(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("100 USD Utilities: Electricity", "EUR")

	require.NoError(t, err)
	assert.Equal(t, "USD", tx.CurrencyCode)
	assert.Equal(t, "Utilities: Electricity", tx.Category)
}

func TestParseLowercaseCurrencyUppercased(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("100 usd groceries", "EUR")

	require.NoError(t, err)
	assert.Equal(t, "USD", tx.CurrencyCode)
	assert.Equal(t, "groceries", tx.Category)
}

func TestParseTooFewTokens(t *testing.T) {
	yesterday := testNow.AddDate(0, 0, -1)
	p := newTestParser(&stubResolver{tokens: map[string]time.Time{"yesterday": yesterday}})

	for _, msg := range []string{"", "100", "yesterday", "yesterday 100"} {
		_, err := p.Parse(msg, "EUR")
		assert.ErrorIs(t, err, ErrTooFewTokens, "%q", msg)
	}
}

func TestParseBadAmount(t *testing.T) {
	p := newTestParser(&stubResolver{})

	for _, msg := range []string{"abc food", "12x food", "-- food"} {
		_, err := p.Parse(msg, "EUR")
		assert.ErrorIs(t, err, ErrBadAmount, "%q", msg)
	}
}

// A 3-letter alphabetic second token is a currency code only when a
// category still follows it; with exactly two tokens it is the category.
func TestCurrencyVersusCategoryBoundary(t *testing.T) {
	p := newTestParser(&stubResolver{})

	tx, err := p.Parse("100 cab", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", tx.CurrencyCode)
	assert.Equal(t, "cab", tx.Category)

	tx, err = p.Parse("100 cab fare", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "CAB", tx.CurrencyCode)
	assert.Equal(t, "fare", tx.Category)
}

func TestParseIdempotentExceptID(t *testing.T) {
	p := newTestParser(&stubResolver{})

	first, err := p.Parse("25.03.2024 100 USD Groceries", "EUR")
	require.NoError(t, err)
	second, err := p.Parse("25.03.2024 100 USD Groceries", "EUR")
	require.NoError(t, err)

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.LclDttm, second.LclDttm)
	assert.True(t, first.AmountLcy.Equal(second.AmountLcy))
	assert.Equal(t, first.CurrencyCode, second.CurrencyCode)
	assert.Equal(t, first.Category, second.Category)
}
