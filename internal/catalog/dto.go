package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// PublicItem is the customer-facing view of an available price row.
type PublicItem struct {
	Descricao string              `json:"descricao"`
	Categoria enums.PriceCategory `json:"categoria"`
	Valor     decimal.Decimal     `json:"valor"`
}

type CreatePriceInput struct {
	ItemChave  string              `json:"item_chave" validate:"omitempty,max=100"`
	Descricao  string              `json:"descricao" validate:"required,max=255"`
	Valor      decimal.Decimal     `json:"valor"`
	Categoria  enums.PriceCategory `json:"categoria" validate:"required"`
	Disponivel *bool               `json:"disponivel"`
}

// UpdatePriceInput is a partial update; nil fields are left untouched.
type UpdatePriceInput struct {
	Descricao  *string              `json:"descricao" validate:"omitempty,min=1,max=255"`
	Valor      *decimal.Decimal     `json:"valor"`
	Categoria  *enums.PriceCategory `json:"categoria"`
	Disponivel *bool                `json:"disponivel"`
}

func (in UpdatePriceInput) updates() map[string]any {
	updates := map[string]any{}
	if in.Descricao != nil {
		updates["descricao"] = *in.Descricao
	}
	if in.Valor != nil {
		updates["valor"] = in.Valor.Round(2)
	}
	if in.Categoria != nil {
		updates["categoria"] = *in.Categoria
	}
	if in.Disponivel != nil {
		updates["disponivel"] = *in.Disponivel
	}
	return updates
}

type CreateMenuInput struct {
	Nome           string          `json:"nome" validate:"required,max=255"`
	Descricao      string          `json:"descricao" validate:"max=2000"`
	ValorPorPessoa decimal.Decimal `json:"valor_por_pessoa"`
	Ativo          *bool           `json:"ativo"`
}

type UpdateMenuInput struct {
	Nome           *string          `json:"nome" validate:"omitempty,min=1,max=255"`
	Descricao      *string          `json:"descricao" validate:"omitempty,max=2000"`
	ValorPorPessoa *decimal.Decimal `json:"valor_por_pessoa"`
	Ativo          *bool            `json:"ativo"`
}

func (in UpdateMenuInput) updates() map[string]any {
	updates := map[string]any{}
	if in.Nome != nil {
		updates["nome"] = *in.Nome
	}
	if in.Descricao != nil {
		updates["descricao"] = *in.Descricao
	}
	if in.ValorPorPessoa != nil {
		updates["valor_por_pessoa"] = in.ValorPorPessoa.Round(2)
	}
	if in.Ativo != nil {
		updates["ativo"] = *in.Ativo
	}
	return updates
}

// CompositionItem is one food item in a menu with its per-guest quantity.
type CompositionItem struct {
	ItemID              int64           `json:"item_id" validate:"required,gt=0"`
	QuantidadePorPessoa decimal.Decimal `json:"quantidade_por_pessoa"`
}

type SetCompositionInput struct {
	Itens []CompositionItem `json:"itens" validate:"dive"`
}

type CreateFoodItemInput struct {
	Nome          string          `json:"nome" validate:"required,max=255"`
	Unidade       string          `json:"unidade" validate:"max=50"`
	CustoUnitario decimal.Decimal `json:"custo_unitario"`
}
