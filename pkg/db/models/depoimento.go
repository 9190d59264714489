package models

import "time"

// Depoimento is a customer testimonial awaiting or past moderation.
type Depoimento struct {
	ID          int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrcamentoID *int64           `gorm:"column:orcamento_id;index" json:"orcamento_id"`
	Nome        string           `gorm:"column:nome;not null" json:"nome"`
	Texto       string           `gorm:"column:texto;not null" json:"texto"`
	Nota        int              `gorm:"column:nota;not null;default:5" json:"nota"`
	Aprovado    bool             `gorm:"column:aprovado;not null;default:false" json:"aprovado"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Fotos       []FotoDepoimento `gorm:"foreignKey:DepoimentoID;constraint:OnDelete:CASCADE" json:"fotos"`
}

func (Depoimento) TableName() string { return "depoimentos" }

type FotoDepoimento struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DepoimentoID int64  `gorm:"column:depoimento_id;not null;index" json:"depoimento_id"`
	URL          string `gorm:"column:url;not null" json:"url"`
}

func (FotoDepoimento) TableName() string { return "fotos_depoimento" }
