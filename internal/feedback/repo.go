package feedback

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
)

// Repository persists testimonials and the order review tokens that gate them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, id int64) (*models.Orcamento, error)
	FindOrderByToken(ctx context.Context, token string) (*models.Orcamento, error)
	SetToken(ctx context.Context, orderID int64, token string) (bool, error)
	ConsumeToken(ctx context.Context, orderID int64, token string) (bool, error)
	CreateTestimonial(ctx context.Context, dep *models.Depoimento) error
	ListTestimonials(ctx context.Context, approvedOnly bool) ([]models.Depoimento, error)
	FindTestimonial(ctx context.Context, id int64) (*models.Depoimento, error)
	UpdateTestimonial(ctx context.Context, id int64, updates map[string]any) (bool, error)
	DeleteTestimonial(ctx context.Context, id int64) (bool, error)
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

func (r *repository) FindOrder(ctx context.Context, id int64) (*models.Orcamento, error) {
	return firstOrNil[models.Orcamento](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) FindOrderByToken(ctx context.Context, token string) (*models.Orcamento, error) {
	return firstOrNil[models.Orcamento](r.db.WithContext(ctx).Where("token_avaliacao = ?", token))
}

func (r *repository) SetToken(ctx context.Context, orderID int64, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Orcamento{}).
		Where("id = ?", orderID).
		Update("token_avaliacao", token)
	return res.RowsAffected > 0, res.Error
}

// ConsumeToken clears the review token only while it still holds the given value.
func (r *repository) ConsumeToken(ctx context.Context, orderID int64, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Orcamento{}).
		Where("id = ? AND token_avaliacao = ?", orderID, token).
		Update("token_avaliacao", gorm.Expr("NULL"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTestimonial(ctx context.Context, dep *models.Depoimento) error {
	return r.db.WithContext(ctx).Create(dep).Error
}

func (r *repository) ListTestimonials(ctx context.Context, approvedOnly bool) ([]models.Depoimento, error) {
	query := r.db.WithContext(ctx).
		Preload("Fotos", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Order("id DESC")
	if approvedOnly {
		query = query.Where("aprovado = ?", true)
	}
	var deps []models.Depoimento
	if err := query.Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *repository) FindTestimonial(ctx context.Context, id int64) (*models.Depoimento, error) {
	return firstOrNil[models.Depoimento](r.db.WithContext(ctx).Preload("Fotos").Where("id = ?", id))
}

func (r *repository) UpdateTestimonial(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Depoimento{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteTestimonial(ctx context.Context, id int64) (bool, error) {
	if err := r.db.WithContext(ctx).Where("depoimento_id = ?", id).Delete(&models.FotoDepoimento{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Delete(&models.Depoimento{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func firstOrNil[T any](query *gorm.DB) (*T, error) {
	var out T
	if err := query.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
