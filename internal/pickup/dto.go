package pickup

import "github.com/shopspring/decimal"

type CreatePackageInput struct {
	Nome      string          `json:"nome" validate:"required,max=255"`
	Descricao string          `json:"descricao" validate:"max=2000"`
	Valor     decimal.Decimal `json:"valor"`
	FotoURL   string          `json:"foto_url" validate:"omitempty,max=512"`
}

// UpdatePackageInput is a partial update; nil fields are left untouched.
type UpdatePackageInput struct {
	Nome      *string          `json:"nome" validate:"omitempty,min=1,max=255"`
	Descricao *string          `json:"descricao" validate:"omitempty,max=2000"`
	Valor     *decimal.Decimal `json:"valor"`
	FotoURL   *string          `json:"foto_url" validate:"omitempty,max=512"`
}

func (in UpdatePackageInput) updates() map[string]any {
	updates := map[string]any{}
	if in.Nome != nil {
		updates["nome"] = *in.Nome
	}
	if in.Descricao != nil {
		updates["descricao"] = *in.Descricao
	}
	if in.Valor != nil {
		updates["valor"] = *in.Valor
	}
	if in.FotoURL != nil {
		updates["foto_url"] = *in.FotoURL
	}
	return updates
}
