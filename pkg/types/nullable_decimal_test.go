package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNullableDecimalUnmarshal(t *testing.T) {
	type payload struct {
		Valor NullableDecimal `json:"valor_final"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"valor_final": 1250.5}`), &got); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !got.Valor.Valid || got.Valor.Value == nil {
		t.Fatalf("expected valid decimal, got %+v", got.Valor)
	}
	if got.Valor.Value.StringFixed(2) != "1250.50" {
		t.Fatalf("unexpected decimal %s", got.Valor.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"valor_final": "99.90"}`), &got); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if got.Valor.Value == nil || got.Valor.Value.StringFixed(2) != "99.90" {
		t.Fatalf("expected 99.90, got %+v", got.Valor)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"valor_final": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Valor.Valid || got.Valor.Value != nil {
		t.Fatalf("expected null to be valid but nil, got %+v", got.Valor)
	}
	if got.Valor.NullDecimal().Valid {
		t.Fatal("null should map to an invalid NullDecimal")
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.Valor.Valid {
		t.Fatalf("expected invalid flag for missing field, got %+v", got.Valor)
	}

	if err := json.Unmarshal([]byte(`{"valor_final": "abc"}`), &got); err == nil {
		t.Fatal("expected error for non numeric value")
	}
}

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Money{"reserva": NewMoney(decimal.RequireFromString("500"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"reserva":500.00}` {
		t.Fatalf("unexpected json %s", out)
	}

	var back Money
	if err := json.Unmarshal([]byte(`"50.005"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.String() != "50.01" {
		t.Fatalf("expected rounding to 50.01, got %s", back)
	}
}
