package enums

import "fmt"

// OrderStatus is the request lifecycle of an orcamento (status column).
type OrderStatus string

const (
	OrderStatusPendente OrderStatus = "pendente"
	OrderStatusAprovado OrderStatus = "aprovado"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendente,
	OrderStatusAprovado,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
