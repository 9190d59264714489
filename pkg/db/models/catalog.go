package models

import (
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

type TabelaPreco struct {
	ID         int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ItemChave  string              `gorm:"column:item_chave;not null;uniqueIndex:ux_tabela_precos_item_chave" json:"item_chave"`
	Descricao  string              `gorm:"column:descricao;not null" json:"descricao"`
	Valor      decimal.Decimal     `gorm:"column:valor;type:numeric(12,2);not null" json:"valor"`
	Categoria  enums.PriceCategory `gorm:"column:categoria;not null" json:"categoria"`
	Disponivel bool                `gorm:"column:disponivel;not null;default:true" json:"disponivel"`
}

func (TabelaPreco) TableName() string { return "tabela_precos" }

type Cardapio struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome           string               `gorm:"column:nome;not null" json:"nome"`
	Descricao      string               `gorm:"column:descricao" json:"descricao"`
	ValorPorPessoa decimal.Decimal      `gorm:"column:valor_por_pessoa;type:numeric(12,2);not null;default:0" json:"valor_por_pessoa"`
	Ativo          bool                 `gorm:"column:ativo;not null;default:true" json:"ativo"`
	Composicao     []CardapioComposicao `gorm:"foreignKey:CardapioID;constraint:OnDelete:CASCADE" json:"composicao"`
}

func (Cardapio) TableName() string { return "cardapios" }

type ItemAlimentacao struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome          string          `gorm:"column:nome;not null" json:"nome"`
	Unidade       string          `gorm:"column:unidade" json:"unidade"`
	CustoUnitario decimal.Decimal `gorm:"column:custo_unitario;type:numeric(12,2);not null;default:0" json:"custo_unitario"`
}

func (ItemAlimentacao) TableName() string { return "itens_alimentacao" }

// CardapioComposicao links a menu to a food item with a per-guest quantity.
type CardapioComposicao struct {
	ID                  int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CardapioID          int64            `gorm:"column:cardapio_id;not null;index" json:"cardapio_id"`
	ItemID              int64            `gorm:"column:item_id;not null" json:"item_id"`
	QuantidadePorPessoa decimal.Decimal  `gorm:"column:quantidade_por_pessoa;type:numeric(10,3);not null" json:"quantidade_por_pessoa"`
	Item                *ItemAlimentacao `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (CardapioComposicao) TableName() string { return "cardapio_composicao" }
