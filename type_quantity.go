package stockroom

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger lines carry quantities as bare numbers: {"qty":2.5}.
func init() { decimal.MarshalJSONWithoutQuotes = true }

// number is what Q and M accept as a literal.
type number interface {
	~int | ~int64 | ~float64 | decimal.Decimal
}

func toDecimal[T number](n T) decimal.Decimal {
	switch v := any(n).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	panic(fmt.Sprintf("unsupported number %T", n))
}

// Quantity is an exact amount of a part, counted in the part's unit. Its zero
// value is zero.
type Quantity struct{ d decimal.Decimal }

// Q is the Quantity of a literal, Q(3) or Q(2.5).
func Q[T number](n T) Quantity { return Quantity{toDecimal(n)} }

// ParseQuantity reads a decimal quantity such as "12" or "0.25".
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return Quantity{d}, nil
}

func (q Quantity) Add(o Quantity) Quantity { return Quantity{q.d.Add(o.d)} }
func (q Quantity) Sub(o Quantity) Quantity { return Quantity{q.d.Sub(o.d)} }
func (q Quantity) Neg() Quantity           { return Quantity{q.d.Neg()} }

func (q Quantity) Equal(o Quantity) bool       { return q.d.Equal(o.d) }
func (q Quantity) LessThan(o Quantity) bool    { return q.d.LessThan(o.d) }
func (q Quantity) GreaterThan(o Quantity) bool { return q.d.GreaterThan(o.d) }

func (q Quantity) IsZero() bool     { return q.d.IsZero() }
func (q Quantity) IsPositive() bool { return q.d.IsPositive() }
func (q Quantity) IsNegative() bool { return q.d.IsNegative() }

func (q Quantity) String() string { return q.d.String() }

func (q Quantity) MarshalJSON() ([]byte, error) { return q.d.MarshalJSON() }

func (q *Quantity) UnmarshalJSON(b []byte) error { return q.d.UnmarshalJSON(b) }
