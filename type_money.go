package stockroom

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a price in a currency, kept exact in major units. The zero Money
// has no currency and adds to any other.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M is the Money of a literal, M(0.02, "EUR").
func M[T number](n T, currency string) Money { return Money{toDecimal(n), currency} }

// ParseMoney reads an amount such as "0.02" in currency.
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid price %q", amount)
	}
	return Money{d, currency}, nil
}

func (m Money) Currency() string        { return m.cur }
func (m Money) Amount() decimal.Decimal { return m.value }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) Equal(o Money) bool      { return m.cur == o.cur && m.value.Equal(o.value) }

// Mul is the price of q units.
func (m Money) Mul(q Quantity) Money { return Money{m.value.Mul(q.d), m.cur} }

// Add panics when both sides have a different currency.
func (m Money) Add(o Money) Money {
	cur := m.cur
	switch {
	case cur == "":
		cur = o.cur
	case o.cur != "" && o.cur != cur:
		panic(fmt.Sprintf("adding %s to %s", o.cur, cur))
	}
	return Money{m.value.Add(o.value), cur}
}

// String uses the currency's symbol and decimals when go-money knows it,
// "1.5 XYZ" otherwise.
func (m Money) String() string {
	c := money.GetCurrency(m.cur)
	if c == nil {
		if m.cur == "" {
			return m.value.String()
		}
		return m.value.String() + " " + m.cur
	}
	minor := m.value.Shift(int32(c.Fraction)).Round(0).IntPart()
	return c.Formatter().Format(minor)
}
