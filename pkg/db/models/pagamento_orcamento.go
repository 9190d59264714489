package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// PaymentUniqueIndex guards one reconciled payment per (order, kind).
const PaymentUniqueIndex = "ux_pagamentos_orcamento_tipo"

// PagamentoOrcamento is the append-only record of a reconciled payment.
type PagamentoOrcamento struct {
	ID                int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrcamentoID       int64             `gorm:"column:orcamento_id;not null;uniqueIndex:ux_pagamentos_orcamento_tipo,priority:1" json:"orcamento_id"`
	Valor             decimal.Decimal   `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	Tipo              enums.PaymentKind `gorm:"column:tipo;not null;uniqueIndex:ux_pagamentos_orcamento_tipo,priority:2" json:"tipo"`
	DataPagamento     time.Time         `gorm:"column:data_pagamento;not null" json:"data_pagamento"`
	Metodo            string            `gorm:"column:metodo;not null" json:"metodo"`
	ProviderPaymentID string            `gorm:"column:provider_payment_id" json:"provider_payment_id"`
}

func (PagamentoOrcamento) TableName() string { return "pagamentos_orcamento" }
