package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// Repository persists prices, menus and the food items menus are composed of.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListPrices(ctx context.Context, categories []enums.PriceCategory, availableOnly bool) ([]models.TabelaPreco, error)
	FindPrice(ctx context.Context, id int64) (*models.TabelaPreco, error)
	CreatePrice(ctx context.Context, price *models.TabelaPreco) error
	UpdatePrice(ctx context.Context, id int64, updates map[string]any) (bool, error)
	DeletePrice(ctx context.Context, id int64) (bool, error)

	ListMenus(ctx context.Context) ([]models.Cardapio, error)
	FindMenu(ctx context.Context, id int64) (*models.Cardapio, error)
	CreateMenu(ctx context.Context, menu *models.Cardapio) error
	UpdateMenu(ctx context.Context, id int64, updates map[string]any) (bool, error)
	DeleteMenu(ctx context.Context, id int64) (bool, error)
	ReplaceComposition(ctx context.Context, menuID int64, rows []models.CardapioComposicao) error

	ListFoodItems(ctx context.Context) ([]models.ItemAlimentacao, error)
	CountFoodItems(ctx context.Context, ids []int64) (int64, error)
	CreateFoodItem(ctx context.Context, item *models.ItemAlimentacao) error
	DeleteFoodItem(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListPrices(ctx context.Context, categories []enums.PriceCategory, availableOnly bool) ([]models.TabelaPreco, error) {
	query := r.db.WithContext(ctx).Order("categoria ASC").Order("descricao ASC")
	if len(categories) > 0 {
		query = query.Where("categoria IN ?", categories)
	}
	if availableOnly {
		query = query.Where("disponivel = ?", true)
	}
	var prices []models.TabelaPreco
	if err := query.Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repository) FindPrice(ctx context.Context, id int64) (*models.TabelaPreco, error) {
	var price models.TabelaPreco
	if err := r.db.WithContext(ctx).First(&price, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

// CreatePrice inserts the row. gorm skips zero values on columns with a default,
// so an unavailable price is written in a second statement.
func (r *repository) CreatePrice(ctx context.Context, price *models.TabelaPreco) error {
	if err := r.db.WithContext(ctx).Create(price).Error; err != nil {
		return err
	}
	if price.Disponivel {
		return nil
	}
	return r.db.WithContext(ctx).Model(price).Update("disponivel", false).Error
}

func (r *repository) UpdatePrice(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.TabelaPreco{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeletePrice(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.TabelaPreco{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) menus() *gorm.DB {
	return r.db.Preload("Composicao", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Composicao.Item")
}

func (r *repository) ListMenus(ctx context.Context) ([]models.Cardapio, error) {
	var menus []models.Cardapio
	if err := r.menus().WithContext(ctx).Order("nome ASC").Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *repository) FindMenu(ctx context.Context, id int64) (*models.Cardapio, error) {
	var menu models.Cardapio
	if err := r.menus().WithContext(ctx).First(&menu, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &menu, nil
}

func (r *repository) CreateMenu(ctx context.Context, menu *models.Cardapio) error {
	if err := r.db.WithContext(ctx).Omit("Composicao").Create(menu).Error; err != nil {
		return err
	}
	if menu.Ativo {
		return nil
	}
	return r.db.WithContext(ctx).Model(menu).Update("ativo", false).Error
}

func (r *repository) UpdateMenu(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Cardapio{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteMenu(ctx context.Context, id int64) (bool, error) {
	if err := r.db.WithContext(ctx).Where("cardapio_id = ?", id).Delete(&models.CardapioComposicao{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Cardapio{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// ReplaceComposition drops the menu's composition rows and inserts rows in their place.
// Callers run it inside a transaction.
func (r *repository) ReplaceComposition(ctx context.Context, menuID int64, rows []models.CardapioComposicao) error {
	if err := r.db.WithContext(ctx).Where("cardapio_id = ?", menuID).Delete(&models.CardapioComposicao{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].CardapioID = menuID
	}
	return r.db.WithContext(ctx).Omit("Item").Create(&rows).Error
}

func (r *repository) ListFoodItems(ctx context.Context) ([]models.ItemAlimentacao, error) {
	var items []models.ItemAlimentacao
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CountFoodItems(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ItemAlimentacao{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *repository) CreateFoodItem(ctx context.Context, item *models.ItemAlimentacao) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) DeleteFoodItem(ctx context.Context, id int64) (bool, error) {
	if err := r.db.WithContext(ctx).Where("item_id = ?", id).Delete(&models.CardapioComposicao{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Delete(&models.ItemAlimentacao{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
