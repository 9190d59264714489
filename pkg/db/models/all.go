package models

// All lists every persisted model, parents first.
func All() []any {
	return []any{
		&PacotePegueMonte{},
		&Orcamento{},
		&PagamentoOrcamento{},
		&CustoGeral{},
		&CustoFesta{},
		&TabelaPreco{},
		&Cardapio{},
		&ItemAlimentacao{},
		&CardapioComposicao{},
		&Depoimento{},
		&FotoDepoimento{},
	}
}
