package enums

import "testing"

func TestPaymentStatusAdvanceIsMonotonic(t *testing.T) {
	cases := []struct {
		current PaymentStatus
		target  PaymentStatus
		want    PaymentStatus
	}{
		{PaymentStatusPendente, PaymentStatusParcial, PaymentStatusParcial},
		{PaymentStatusParcial, PaymentStatusPago, PaymentStatusPago},
		{PaymentStatusPago, PaymentStatusParcial, PaymentStatusPago},
		{PaymentStatusPago, PaymentStatusPendente, PaymentStatusPago},
		{PaymentStatus(""), PaymentStatusParcial, PaymentStatusParcial},
	}
	for _, tc := range cases {
		if got := tc.current.Advance(tc.target); got != tc.want {
			t.Fatalf("%q.Advance(%q) = %q, want %q", tc.current, tc.target, got, tc.want)
		}
	}
}

func TestPaymentKindTransitionsFlags(t *testing.T) {
	if PaymentKindSinal.SettlesOrder() {
		t.Fatal("deposit must not settle the order")
	}
	if !PaymentKindSinal.SchedulesOrder() {
		t.Fatal("deposit schedules the order")
	}
	if PaymentKindRestante.SchedulesOrder() {
		t.Fatal("balance leaves the schedule unchanged")
	}
	for _, kind := range []PaymentKind{PaymentKindRestante, PaymentKindIntegral, PaymentKindPegueMonte} {
		if !kind.SettlesOrder() {
			t.Fatalf("%s should settle the order", kind)
		}
	}
}

func TestParsePaymentKind(t *testing.T) {
	for _, kind := range PaymentKinds() {
		got, err := ParsePaymentKind(kind.String())
		if err != nil || got != kind {
			t.Fatalf("ParsePaymentKind(%q) = %q, %v", kind, got, err)
		}
	}
	if _, err := ParsePaymentKind("sinal"); err == nil {
		t.Fatal("kinds are case sensitive")
	}
}

func TestParseScheduleStatus(t *testing.T) {
	if _, err := ParseScheduleStatus("concluido"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseScheduleStatus("cancelado"); err == nil {
		t.Fatal("expected invalid schedule status")
	}
}
