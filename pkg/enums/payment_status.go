package enums

import "fmt"

// PaymentStatus tracks how much of an orcamento has been paid (status_pagamento column).
type PaymentStatus string

const (
	PaymentStatusPendente PaymentStatus = "pendente"
	PaymentStatusParcial  PaymentStatus = "parcial"
	PaymentStatusPago     PaymentStatus = "pago"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPendente,
	PaymentStatusParcial,
	PaymentStatusPago,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank orders payment statuses so transitions can only move forward.
// Unknown values rank below pendente.
func (p PaymentStatus) Rank() int {
	for i, candidate := range validPaymentStatuses {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Advance returns the furthest of the current and target statuses.
func (p PaymentStatus) Advance(target PaymentStatus) PaymentStatus {
	if target.Rank() > p.Rank() {
		return target
	}
	return p
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
