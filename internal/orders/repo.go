package orders

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	"github.com/cabanadebrincar/cabana-backend/pkg/pagination"
)

// Repository defines persistence operations for orcamentos and their dependents.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Orcamento) error
	FindByID(ctx context.Context, id int64) (*models.Orcamento, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Orcamento, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	Update(ctx context.Context, id int64, updates map[string]any) (bool, error)
	MarkConcluded(ctx context.Context, id int64) (bool, error)
	ListReleaseCandidates(ctx context.Context, cutoff time.Time) ([]models.Orcamento, error)
	DeleteCascade(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Orcamento) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Orcamento, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate row-locks the order for the rest of the surrounding transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Orcamento, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) find(query *gorm.DB, id int64) (*models.Orcamento, error) {
	var order models.Orcamento
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List returns orders newest first using (data_pedido, id) keyset pagination.
func (r *repository) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Order("data_pedido DESC").
		Order("id DESC").
		Limit(pagination.FetchLimit(params.Limit))
	if cursor != nil {
		query = query.Where(
			"data_pedido < ? OR (data_pedido = ? AND id < ?)",
			cursor.At, cursor.At, cursor.ID,
		)
	}

	var rows []models.Orcamento
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	page, more := pagination.Trim(rows, params.Limit)
	list := &OrderList{Orders: page}
	if more {
		last := page[len(page)-1]
		list.NextCursor = pagination.Cursor{At: last.DataPedido, ID: last.ID}.Encode()
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Orcamento{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// MarkConcluded sets status_agenda to concluido unless it already is.
func (r *repository) MarkConcluded(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Orcamento{}).
		Where("id = ? AND (status_agenda IS NULL OR status_agenda <> ?)", id, enums.ScheduleStatusConcluido).
		Update("status_agenda", enums.ScheduleStatusConcluido)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListReleaseCandidates returns unfinished pickup orders dated on or before cutoff.
// An order is a pickup order when it links a package or was paid as PEGUE_MONTE;
// the theme text alone never qualifies it.
func (r *repository) ListReleaseCandidates(ctx context.Context, cutoff time.Time) ([]models.Orcamento, error) {
	db := r.db.WithContext(ctx)
	pickupPaid := db.Model(&models.PagamentoOrcamento{}).
		Select("orcamento_id").
		Where("tipo = ?", enums.PaymentKindPegueMonte)

	var rows []models.Orcamento
	err := db.
		Where("data_festa <= ?", cutoff).
		Where("status_agenda IS NULL OR status_agenda <> ?", enums.ScheduleStatusConcluido).
		Where("pacote_pegue_monte_id IS NOT NULL OR id IN (?)", pickupPaid).
		Order("data_festa ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteCascade removes the order with its payments, testimonials and party costs.
// Ledger lines are detached rather than deleted.
func (r *repository) DeleteCascade(ctx context.Context, id int64) (bool, error) {
	db := r.db.WithContext(ctx)

	testimonials := db.Model(&models.Depoimento{}).Select("id").Where("orcamento_id = ?", id)
	if err := db.Where("depoimento_id IN (?)", testimonials).Delete(&models.FotoDepoimento{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("orcamento_id = ?", id).Delete(&models.Depoimento{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("orcamento_id = ?", id).Delete(&models.PagamentoOrcamento{}).Error; err != nil {
		return false, err
	}
	if err := db.Where("orcamento_id = ?", id).Delete(&models.CustoFesta{}).Error; err != nil {
		return false, err
	}
	if err := db.Model(&models.CustoGeral{}).Where("orcamento_id = ?", id).Update("orcamento_id", nil).Error; err != nil {
		return false, err
	}

	res := db.Delete(&models.Orcamento{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
