package types

import (
	"github.com/shopspring/decimal"
)

// Money renders a decimal as a JSON number with exactly two fraction digits.
type Money decimal.Decimal

func NewMoney(d decimal.Decimal) Money {
	return Money(d.Round(2))
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Numbers and numeric strings are accepted.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
