package stockchat

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
type Money struct {
	value *money.Money
}

// NewMoney creates a new Money instance from a decimal.Decimal. An unknown
// currency returns the zero Money.
func NewMoney(amount decimal.Decimal, currency string) Money {
	// Find the currency first.
	cur := money.GetCurrency(currency)
	if cur == nil {
		return Money{}
	}

	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	amount = amount.Mul(factor).Round(0)
	return Money{money.New(amount.IntPart(), cur.Code)}
}

// ParseMoney reads a plain decimal string, like a price returned by a tool,
// as an amount in the given currency.
func ParseMoney(s, currency string) (Money, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, false
	}
	m := NewMoney(d, currency)
	return m, m.IsValid()
}

// IsValid reports whether m holds an amount in a known currency.
func (m Money) IsValid() bool { return m.value != nil }

// String returns the string representation of the money value.
func (m Money) String() string {
	if m.value == nil {
		return ""
	}
	return m.value.Display()
}
