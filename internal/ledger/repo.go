package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
)

// Repository persists ledger lines and per-party costs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.CustoGeral) error
	ListEntries(ctx context.Context, from, to *time.Time) ([]models.CustoGeral, error)
	DeleteEntry(ctx context.Context, id int64) (bool, error)
	DetachOrder(ctx context.Context, orderID int64) error
	ListPartyCosts(ctx context.Context, orderID int64) ([]models.CustoFesta, error)
	CreatePartyCost(ctx context.Context, cost *models.CustoFesta) error
	DeletePartyCost(ctx context.Context, id int64) (bool, error)
	DeletePartyCostsForOrder(ctx context.Context, orderID int64) error
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

func (r *repository) CreateEntry(ctx context.Context, entry *models.CustoGeral) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListEntries returns entries newest first, optionally bounded to [from, to).
func (r *repository) ListEntries(ctx context.Context, from, to *time.Time) ([]models.CustoGeral, error) {
	query := r.db.WithContext(ctx).Order("data_lancamento DESC").Order("id DESC")
	if from != nil {
		query = query.Where("data_lancamento >= ?", *from)
	}
	if to != nil {
		query = query.Where("data_lancamento < ?", *to)
	}
	var entries []models.CustoGeral
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) DeleteEntry(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.CustoGeral{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// DetachOrder keeps the financial history of an order while dropping the reference.
func (r *repository) DetachOrder(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CustoGeral{}).
		Where("orcamento_id = ?", orderID).
		Update("orcamento_id", nil).Error
}

func (r *repository) ListPartyCosts(ctx context.Context, orderID int64) ([]models.CustoFesta, error) {
	var costs []models.CustoFesta
	err := r.db.WithContext(ctx).
		Where("orcamento_id = ?", orderID).
		Order("id ASC").
		Find(&costs).Error
	if err != nil {
		return nil, err
	}
	return costs, nil
}

func (r *repository) CreatePartyCost(ctx context.Context, cost *models.CustoFesta) error {
	return r.db.WithContext(ctx).Create(cost).Error
}

func (r *repository) DeletePartyCost(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.CustoFesta{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeletePartyCostsForOrder(ctx context.Context, orderID int64) error {
	return r.db.WithContext(ctx).Delete(&models.CustoFesta{}, "orcamento_id = ?", orderID).Error
}
