package pickup

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

// Repository manages persistence for pickup packages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, status *enums.PackageStatus) ([]models.PacotePegueMonte, error)
	FindByID(ctx context.Context, id int64) (*models.PacotePegueMonte, error)
	Create(ctx context.Context, pkg *models.PacotePegueMonte) error
	Update(ctx context.Context, id int64, updates map[string]any) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to enums.PackageStatus) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pickup package repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, status *enums.PackageStatus) ([]models.PacotePegueMonte, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var pkgs []models.PacotePegueMonte
	if err := query.Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.PacotePegueMonte, error) {
	var pkg models.PacotePegueMonte
	if err := r.db.WithContext(ctx).First(&pkg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *repository) Create(ctx context.Context, pkg *models.PacotePegueMonte) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PacotePegueMonte{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.PacotePegueMonte{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// TransitionStatus moves the package to the target status only when it is currently in from.
func (r *repository) TransitionStatus(ctx context.Context, id int64, from, to enums.PackageStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PacotePegueMonte{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
