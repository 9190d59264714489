package mercadopagowebhook

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
)

// PaymentRepository persists reconciled payment records.
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	InsertIfAbsent(ctx context.Context, record *models.PagamentoOrcamento) (bool, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.PagamentoOrcamento, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(conn *gorm.DB) PaymentRepository {
	return &paymentRepository{db: conn}
}

func (r *paymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &paymentRepository{db: tx}
}

// InsertIfAbsent inserts the record unless (orcamento_id, tipo) already exists.
// It returns false when the pair was already recorded.
func (r *paymentRepository) InsertIfAbsent(ctx context.Context, record *models.PagamentoOrcamento) (bool, error) {
	query := r.db.WithContext(ctx)
	// MySQL reports matched rows for ON DUPLICATE KEY, so rely on the duplicate-key error there.
	if query.Dialector.Name() != "mysql" {
		query = query.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "orcamento_id"}, {Name: "tipo"}},
			DoNothing: true,
		})
	}

	res := query.Create(record)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error, "") {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]models.PagamentoOrcamento, error) {
	var records []models.PagamentoOrcamento
	err := r.db.WithContext(ctx).
		Where("orcamento_id = ?", orderID).
		Order("data_pagamento ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
