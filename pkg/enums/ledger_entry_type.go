package enums

import "fmt"

// LedgerEntryType classifies a custos_gerais row.
type LedgerEntryType string

const (
	LedgerEntryTypeReceita LedgerEntryType = "receita"
	LedgerEntryTypeDespesa LedgerEntryType = "despesa"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeReceita,
	LedgerEntryTypeDespesa,
}

// String implements fmt.Stringer.
func (s LedgerEntryType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LedgerEntryType.
func (s LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
