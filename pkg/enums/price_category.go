package enums

import "fmt"

// PriceCategory groups tabela_precos rows.
type PriceCategory string

const (
	PriceCategoryPadrao      PriceCategory = "padrao"
	PriceCategoryAlimentacao PriceCategory = "alimentacao"
	PriceCategoryTendas      PriceCategory = "tendas"
	PriceCategoryAdicional   PriceCategory = "adicional"
	PriceCategoryFrete       PriceCategory = "frete"
)

var validPriceCategories = []PriceCategory{
	PriceCategoryPadrao,
	PriceCategoryAlimentacao,
	PriceCategoryTendas,
	PriceCategoryAdicional,
	PriceCategoryFrete,
}

// String implements fmt.Stringer.
func (s PriceCategory) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PriceCategory.
func (s PriceCategory) IsValid() bool {
	for _, candidate := range validPriceCategories {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePriceCategory converts raw input into a PriceCategory.
func ParsePriceCategory(value string) (PriceCategory, error) {
	for _, candidate := range validPriceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price category %q", value)
}
