package payments

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
)

var (
	depositRate  = decimal.RequireFromString("0.5")
	integralRate = decimal.RequireFromString("0.95")
)

// Split holds the three simultaneous checkout offers derived from an order total.
type Split struct {
	Total    decimal.Decimal
	Reserva  decimal.Decimal
	Restante decimal.Decimal
	Integral decimal.Decimal
}

// SplitTotal derives deposit, balance and discounted full payment from total.
// Deposit plus balance always equals total exactly.
func SplitTotal(total decimal.Decimal) (Split, error) {
	total = total.Round(2)
	if !total.IsPositive() {
		return Split{}, pkgerrors.New(pkgerrors.CodeValidation, "valor total deve ser maior que zero")
	}
	reserva := total.Mul(depositRate).Round(2)
	return Split{
		Total:    total,
		Reserva:  reserva,
		Restante: total.Sub(reserva),
		Integral: total.Mul(integralRate).Round(2),
	}, nil
}
