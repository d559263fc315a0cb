package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Amount with currency
// =============================================================================

// Money is a monetary amount tagged with its ISO currency code. All arithmetic
// on mixed currencies goes through Normalizer.ToBase first; Money itself never
// converts.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

func NewMoneyFromDecimal(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func (m Money) IsZero() bool { return m.Amount.IsZero() }

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Intended for constants and test fixtures.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
