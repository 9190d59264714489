package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// CustoGeral is a general income or expense line.
type CustoGeral struct {
	ID             int64                 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Descricao      string                `gorm:"column:descricao;not null" json:"descricao"`
	Valor          decimal.Decimal       `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	Tipo           enums.LedgerEntryType `gorm:"column:tipo;not null" json:"tipo"`
	Categoria      string                `gorm:"column:categoria" json:"categoria"`
	DataLancamento time.Time             `gorm:"column:data_lancamento;not null;index" json:"data_lancamento"`
	OrcamentoID    *int64                `gorm:"column:orcamento_id;index" json:"orcamento_id"`
}

func (CustoGeral) TableName() string { return "custos_gerais" }

// CustoFesta is an expense attached to a single party.
type CustoFesta struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrcamentoID int64           `gorm:"column:orcamento_id;not null;index" json:"orcamento_id"`
	Descricao   string          `gorm:"column:descricao;not null" json:"descricao"`
	Valor       decimal.Decimal `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CustoFesta) TableName() string { return "custos_festa" }
