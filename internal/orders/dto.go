package orders

import (
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	dbtypes "github.com/cabanadebrincar/cabana-backend/pkg/db/types"
	"github.com/cabanadebrincar/cabana-backend/pkg/types"
)

const dateLayout = "2006-01-02"

// SubmitOrderInput is the public quote form.
type SubmitOrderInput struct {
	Nome               string             `json:"nome" validate:"required,max=255"`
	Whatsapp           string             `json:"whatsapp" validate:"required,max=40"`
	Email              *string            `json:"email" validate:"omitempty,email"`
	Endereco           string             `json:"endereco" validate:"max=500"`
	DataFesta          string             `json:"data_festa" validate:"required,datetime=2006-01-02"`
	Horario            string             `json:"horario" validate:"max=40"`
	QtdCriancas        int                `json:"qtd_criancas" validate:"gte=0"`
	FaixaEtaria        string             `json:"faixa_etaria" validate:"max=100"`
	ModeloBarraca      string             `json:"modelo_barraca" validate:"max=100"`
	QtdBarracas        int                `json:"qtd_barracas" validate:"gte=0"`
	Cores              dbtypes.StringList `json:"cores"`
	Tema               string             `json:"tema" validate:"max=500"`
	ItensPadrao        dbtypes.StringList `json:"itens_padrao"`
	ItensAdicionais    dbtypes.StringList `json:"itens_adicionais"`
	Alimentacao        dbtypes.StringList `json:"alimentacao"`
	Alergias           string             `json:"alergias" validate:"max=1000"`
	Observacoes        string             `json:"observacoes" validate:"max=2000"`
	PacotePegueMonteID *int64             `json:"pacote_pegue_monte_id" validate:"omitempty,gt=0"`
}

// StatusAction is an admin schedule transition.
type StatusAction string

const (
	StatusActionApprove  StatusAction = "aprovado"
	StatusActionComplete StatusAction = "concluido"
)

// UpdateStatusInput drives approve/complete. Money fields are only honoured on complete.
type UpdateStatusInput struct {
	Status               StatusAction     `json:"status" validate:"required,oneof=aprovado concluido"`
	ValorFinal           *decimal.Decimal `json:"valor_final"`
	ValorItensExtras     *decimal.Decimal `json:"valor_itens_extras"`
	DescricaoItensExtras *string          `json:"descricao_itens_extras" validate:"omitempty,max=1000"`
}

// FinancialsInput is a partial update. Absent fields are untouched; an explicit
// null clears valor_final or custos.
type FinancialsInput struct {
	ValorFinal           types.NullableDecimal `json:"valor_final"`
	Custos               types.NullableDecimal `json:"custos"`
	ValorItensExtras     *decimal.Decimal      `json:"valor_itens_extras"`
	DescricaoItensExtras *string               `json:"descricao_itens_extras" validate:"omitempty,max=1000"`
}

func (in FinancialsInput) updates() map[string]any {
	updates := map[string]any{}
	if in.ValorFinal.Valid {
		updates["valor_final"] = in.ValorFinal.NullDecimal()
	}
	if in.Custos.Valid {
		updates["custos"] = in.Custos.NullDecimal()
	}
	if in.ValorItensExtras != nil {
		updates["valor_itens_extras"] = in.ValorItensExtras.Round(2)
	}
	if in.DescricaoItensExtras != nil {
		updates["descricao_itens_extras"] = *in.DescricaoItensExtras
	}
	return updates
}

// SubmitResult is returned to the public form.
type SubmitResult struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

type OrderList struct {
	Orders     []models.Orcamento `json:"orders"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
