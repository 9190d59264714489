package models

import (
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// PacotePegueMonte is a pre-assembled rental kit the customer picks up and sets up.
type PacotePegueMonte struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome      string              `gorm:"column:nome;not null" json:"nome"`
	Descricao string              `gorm:"column:descricao" json:"descricao"`
	Valor     decimal.Decimal     `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	FotoURL   string              `gorm:"column:foto_url" json:"foto_url"`
	Status    enums.PackageStatus `gorm:"column:status;not null;default:'liberado'" json:"status"`
}

func (PacotePegueMonte) TableName() string { return "pacotes_pegue_monte" }
