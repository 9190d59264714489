package enums

import "fmt"

// PaymentKind identifies which checkout offer a payment settles.
type PaymentKind string

const (
	PaymentKindSinal      PaymentKind = "SINAL"
	PaymentKindRestante   PaymentKind = "RESTANTE"
	PaymentKindIntegral   PaymentKind = "INTEGRAL"
	PaymentKindPegueMonte PaymentKind = "PEGUE_MONTE"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindSinal,
	PaymentKindRestante,
	PaymentKindIntegral,
	PaymentKindPegueMonte,
}

// PaymentKinds returns every known kind in declaration order.
func PaymentKinds() []PaymentKind {
	kinds := make([]PaymentKind, len(validPaymentKinds))
	copy(kinds, validPaymentKinds)
	return kinds
}

// String implements fmt.Stringer.
func (k PaymentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PaymentKind.
func (k PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Label is the customer-facing description used in checkout titles and emails.
func (k PaymentKind) Label() string {
	switch k {
	case PaymentKindSinal:
		return "Sinal (50%)"
	case PaymentKindRestante:
		return "Restante (50%)"
	case PaymentKindIntegral:
		return "Pagamento integral (5% de desconto)"
	case PaymentKindPegueMonte:
		return "Pegue e Monte"
	}
	return string(k)
}

// SettlesOrder reports whether a reconciled payment of this kind leaves the order fully paid.
func (k PaymentKind) SettlesOrder() bool {
	return k == PaymentKindRestante || k == PaymentKindIntegral || k == PaymentKindPegueMonte
}

// SchedulesOrder reports whether a reconciled payment of this kind confirms the booking.
func (k PaymentKind) SchedulesOrder() bool {
	return k == PaymentKindSinal || k == PaymentKindIntegral || k == PaymentKindPegueMonte
}

// ParsePaymentKind converts raw input into a PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
