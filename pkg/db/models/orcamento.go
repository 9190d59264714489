package models

import (
	"time"

	"github.com/shopspring/decimal"

	dbtypes "github.com/cabanadebrincar/cabana-backend/pkg/db/types"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// Orcamento is a customer's party booking request and the root of every other record.
type Orcamento struct {
	ID                   int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome                 string                `gorm:"column:nome;not null" json:"nome"`
	Whatsapp             string                `gorm:"column:whatsapp;not null" json:"whatsapp"`
	Email                *string               `gorm:"column:email" json:"email"`
	Endereco             string                `gorm:"column:endereco" json:"endereco"`
	DataFesta            time.Time             `gorm:"column:data_festa;type:date;not null;index" json:"data_festa"`
	Horario              string                `gorm:"column:horario" json:"horario"`
	QtdCriancas          int                   `gorm:"column:qtd_criancas" json:"qtd_criancas"`
	FaixaEtaria          string                `gorm:"column:faixa_etaria" json:"faixa_etaria"`
	ModeloBarraca        string                `gorm:"column:modelo_barraca" json:"modelo_barraca"`
	QtdBarracas          int                   `gorm:"column:qtd_barracas" json:"qtd_barracas"`
	Cores                dbtypes.StringList    `gorm:"column:cores;type:text" json:"cores"`
	Tema                 string                `gorm:"column:tema" json:"tema"`
	ItensPadrao          dbtypes.StringList    `gorm:"column:itens_padrao;type:text" json:"itens_padrao"`
	ItensAdicionais      dbtypes.StringList    `gorm:"column:itens_adicionais;type:text" json:"itens_adicionais"`
	Alimentacao          dbtypes.StringList    `gorm:"column:alimentacao;type:text" json:"alimentacao"`
	Alergias             string                `gorm:"column:alergias" json:"alergias"`
	Observacoes          string                `gorm:"column:observacoes" json:"observacoes"`
	Status               enums.OrderStatus     `gorm:"column:status;not null;default:'pendente'" json:"status"`
	StatusAgenda         *enums.ScheduleStatus `gorm:"column:status_agenda" json:"status_agenda"`
	StatusPagamento      enums.PaymentStatus   `gorm:"column:status_pagamento;not null;default:'pendente'" json:"status_pagamento"`
	ValorFinal           decimal.NullDecimal   `gorm:"column:valor_final;type:numeric(12,2)" json:"valor_final"`
	ValorItensExtras     decimal.Decimal       `gorm:"column:valor_itens_extras;type:numeric(12,2);not null;default:0" json:"valor_itens_extras"`
	DescricaoItensExtras *string               `gorm:"column:descricao_itens_extras" json:"descricao_itens_extras"`
	Custos               decimal.NullDecimal   `gorm:"column:custos;type:numeric(12,2)" json:"custos"`
	PacotePegueMonteID   *int64                `gorm:"column:pacote_pegue_monte_id;index" json:"pacote_pegue_monte_id"`
	PacotePegueMonte     *PacotePegueMonte     `gorm:"foreignKey:PacotePegueMonteID;constraint:OnDelete:SET NULL" json:"-"`
	TokenAvaliacao       *string               `gorm:"column:token_avaliacao;uniqueIndex:ux_orcamentos_token_avaliacao" json:"-"`
	DataPedido           time.Time             `gorm:"column:data_pedido;autoCreateTime" json:"data_pedido"`
}

func (Orcamento) TableName() string { return "orcamentos" }

// Total is the amount payable: valor_final plus the signed extras adjustment.
// A missing valor_final counts as zero.
func (o Orcamento) Total() decimal.Decimal {
	base := decimal.Zero
	if o.ValorFinal.Valid {
		base = o.ValorFinal.Decimal
	}
	return base.Add(o.ValorItensExtras)
}

// IsConcluded reports whether the order already left the active calendar.
func (o Orcamento) IsConcluded() bool {
	return o.StatusAgenda != nil && *o.StatusAgenda == enums.ScheduleStatusConcluido
}
