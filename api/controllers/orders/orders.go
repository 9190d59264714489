package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	"github.com/cabanadebrincar/cabana-backend/api/validators"
	internalorders "github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/pagination"
)

type paymentLister interface {
	ListByOrder(ctx context.Context, orderID int64) ([]models.PagamentoOrcamento, error)
}

// OrderDetail is the admin view of one order with its reconciled payments.
type OrderDetail struct {
	Pedido     *models.Orcamento           `json:"pedido"`
	Pagamentos []models.PagamentoOrcamento `json:"pagamentos"`
}

// Submit accepts the public quote form.
func Submit(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalorders.SubmitOrderInput
		if err := validators.DecodeJSONBody(w, r, &input); err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, internalorders.SubmitResult{Success: true, ID: order.ID})
	}
}

// List returns orders newest first, paged by cursor.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Detail(svc internalorders.Service, payments paymentLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail := OrderDetail{Pedido: order, Pagamentos: []models.PagamentoOrcamento{}}
		if payments != nil {
			list, err := payments.ListByOrder(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order payments"))
				return
			}
			if list != nil {
				detail.Pagamentos = list
			}
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateStatus approves or concludes an order.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalorders.UpdateStatusInput
		if err := validators.DecodeJSONBody(w, r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func UpdateFinancials(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalorders.FinancialsInput
		if err := validators.DecodeJSONBody(w, r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateFinancials(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Delete removes the order and everything attached to it except ledger lines.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}
