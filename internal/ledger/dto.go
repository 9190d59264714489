package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

type CreateEntryInput struct {
	Descricao      string                `json:"descricao" validate:"required,max=255"`
	Valor          decimal.Decimal       `json:"valor"`
	Tipo           enums.LedgerEntryType `json:"tipo" validate:"required"`
	Categoria      string                `json:"categoria" validate:"max=100"`
	DataLancamento *time.Time            `json:"data_lancamento"`
	OrcamentoID    *int64                `json:"orcamento_id"`
}

type CreatePartyCostInput struct {
	Descricao string          `json:"descricao" validate:"required,max=255"`
	Valor     decimal.Decimal `json:"valor"`
}

// Summary totals a set of ledger entries.
type Summary struct {
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Saldo    decimal.Decimal `json:"saldo"`
}

type Statement struct {
	Mes      string              `json:"mes,omitempty"`
	Resumo   Summary             `json:"resumo"`
	Entradas []models.CustoGeral `json:"entradas"`
}

func summarize(entries []models.CustoGeral) Summary {
	sum := Summary{Receitas: decimal.Zero, Despesas: decimal.Zero}
	for _, entry := range entries {
		switch entry.Tipo {
		case enums.LedgerEntryTypeReceita:
			sum.Receitas = sum.Receitas.Add(entry.Valor)
		case enums.LedgerEntryTypeDespesa:
			sum.Despesas = sum.Despesas.Add(entry.Valor)
		}
	}
	sum.Saldo = sum.Receitas.Sub(sum.Despesas)
	return sum
}
