package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
)

const customKeyPrefix = "custom_"

// publicCategories are the price groups shown on the quote form.
var publicCategories = []enums.PriceCategory{
	enums.PriceCategoryPadrao,
	enums.PriceCategoryAlimentacao,
	enums.PriceCategoryTendas,
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the price table, menus and food items.
type Service interface {
	ListAvailableItems(ctx context.Context) ([]PublicItem, error)
	ListPrices(ctx context.Context) ([]models.TabelaPreco, error)
	CreatePrice(ctx context.Context, input CreatePriceInput) (*models.TabelaPreco, error)
	UpdatePrice(ctx context.Context, id int64, input UpdatePriceInput) (*models.TabelaPreco, error)
	DeletePrice(ctx context.Context, id int64) error

	ListMenus(ctx context.Context) ([]models.Cardapio, error)
	CreateMenu(ctx context.Context, input CreateMenuInput) (*models.Cardapio, error)
	UpdateMenu(ctx context.Context, id int64, input UpdateMenuInput) (*models.Cardapio, error)
	DeleteMenu(ctx context.Context, id int64) error
	SetComposition(ctx context.Context, menuID int64, input SetCompositionInput) (*models.Cardapio, error)

	ListFoodItems(ctx context.Context) ([]models.ItemAlimentacao, error)
	CreateFoodItem(ctx context.Context, input CreateFoodItemInput) (*models.ItemAlimentacao, error)
	DeleteFoodItem(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) ListAvailableItems(ctx context.Context) ([]PublicItem, error) {
	prices, err := s.repo.ListPrices(ctx, publicCategories, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prices")
	}
	items := make([]PublicItem, 0, len(prices))
	for _, p := range prices {
		items = append(items, PublicItem{Descricao: p.Descricao, Categoria: p.Categoria, Valor: p.Valor})
	}
	return items, nil
}

func (s *service) ListPrices(ctx context.Context) ([]models.TabelaPreco, error) {
	prices, err := s.repo.ListPrices(ctx, nil, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prices")
	}
	return prices, nil
}

func (s *service) CreatePrice(ctx context.Context, input CreatePriceInput) (*models.TabelaPreco, error) {
	if !input.Categoria.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "categoria inválida %q", input.Categoria)
	}
	if input.Valor.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor não pode ser negativo")
	}
	key := strings.TrimSpace(input.ItemChave)
	if key == "" {
		key = customKeyPrefix + strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	disponivel := true
	if input.Disponivel != nil {
		disponivel = *input.Disponivel
	}
	price := &models.TabelaPreco{
		ItemChave:  key,
		Descricao:  strings.TrimSpace(input.Descricao),
		Valor:      input.Valor.Round(2),
		Categoria:  input.Categoria,
		Disponivel: disponivel,
	}
	if err := s.repo.CreatePrice(ctx, price); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "item_chave %q já existe", key)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create price")
	}
	return price, nil
}

func (s *service) UpdatePrice(ctx context.Context, id int64, input UpdatePriceInput) (*models.TabelaPreco, error) {
	if input.Categoria != nil && !input.Categoria.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "categoria inválida %q", *input.Categoria)
	}
	if input.Valor != nil && input.Valor.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor não pode ser negativo")
	}
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nenhum campo para atualizar")
	}
	found, err := s.repo.UpdatePrice(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update price")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preço não encontrado")
	}
	price, err := s.repo.FindPrice(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load price")
	}
	if price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preço não encontrado")
	}
	return price, nil
}

func (s *service) DeletePrice(ctx context.Context, id int64) error {
	found, err := s.repo.DeletePrice(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete price")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "preço não encontrado")
	}
	return nil
}

func (s *service) ListMenus(ctx context.Context) ([]models.Cardapio, error) {
	menus, err := s.repo.ListMenus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list menus")
	}
	return menus, nil
}

func (s *service) getMenu(ctx context.Context, id int64) (*models.Cardapio, error) {
	menu, err := s.repo.FindMenu(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load menu")
	}
	if menu == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cardápio não encontrado")
	}
	return menu, nil
}

func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*models.Cardapio, error) {
	if input.ValorPorPessoa.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor_por_pessoa não pode ser negativo")
	}
	ativo := true
	if input.Ativo != nil {
		ativo = *input.Ativo
	}
	menu := &models.Cardapio{
		Nome:           strings.TrimSpace(input.Nome),
		Descricao:      input.Descricao,
		ValorPorPessoa: input.ValorPorPessoa.Round(2),
		Ativo:          ativo,
	}
	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create menu")
	}
	return menu, nil
}

func (s *service) UpdateMenu(ctx context.Context, id int64, input UpdateMenuInput) (*models.Cardapio, error) {
	if input.ValorPorPessoa != nil && input.ValorPorPessoa.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor_por_pessoa não pode ser negativo")
	}
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nenhum campo para atualizar")
	}
	found, err := s.repo.UpdateMenu(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update menu")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cardápio não encontrado")
	}
	return s.getMenu(ctx, id)
}

func (s *service) DeleteMenu(ctx context.Context, id int64) error {
	var found bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		found, err = s.repo.WithTx(tx).DeleteMenu(ctx, id)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete menu")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cardápio não encontrado")
	}
	return nil
}

func (s *service) SetComposition(ctx context.Context, menuID int64, input SetCompositionInput) (*models.Cardapio, error) {
	seen := make(map[int64]struct{}, len(input.Itens))
	rows := make([]models.CardapioComposicao, 0, len(input.Itens))
	ids := make([]int64, 0, len(input.Itens))
	for _, item := range input.Itens {
		if item.ItemID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_id inválido")
		}
		if !item.QuantidadePorPessoa.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantidade_por_pessoa deve ser positiva")
		}
		if _, dup := seen[item.ItemID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "item %d repetido", item.ItemID)
		}
		seen[item.ItemID] = struct{}{}
		ids = append(ids, item.ItemID)
		rows = append(rows, models.CardapioComposicao{
			ItemID:              item.ItemID,
			QuantidadePorPessoa: item.QuantidadePorPessoa.Round(3),
		})
	}

	if _, err := s.getMenu(ctx, menuID); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		count, err := s.repo.CountFoodItems(ctx, ids)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check food items")
		}
		if count != int64(len(ids)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item de alimentação inexistente")
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceComposition(ctx, menuID, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace menu composition")
	}
	return s.getMenu(ctx, menuID)
}

func (s *service) ListFoodItems(ctx context.Context) ([]models.ItemAlimentacao, error) {
	items, err := s.repo.ListFoodItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list food items")
	}
	return items, nil
}

func (s *service) CreateFoodItem(ctx context.Context, input CreateFoodItemInput) (*models.ItemAlimentacao, error) {
	if input.CustoUnitario.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custo_unitario não pode ser negativo")
	}
	item := &models.ItemAlimentacao{
		Nome:          strings.TrimSpace(input.Nome),
		Unidade:       strings.TrimSpace(input.Unidade),
		CustoUnitario: input.CustoUnitario.Round(2),
	}
	if err := s.repo.CreateFoodItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create food item")
	}
	return item, nil
}

func (s *service) DeleteFoodItem(ctx context.Context, id int64) error {
	var found bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		found, err = s.repo.WithTx(tx).DeleteFoodItem(ctx, id)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete food item")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item não encontrado")
	}
	return nil
}
