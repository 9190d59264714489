package payments

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	"github.com/cabanadebrincar/cabana-backend/api/validators"
	internalpayments "github.com/cabanadebrincar/cabana-backend/internal/payments"
	mercadopagowebhook "github.com/cabanadebrincar/cabana-backend/internal/webhooks/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

// GenerateOrderLinks issues the reserva, restante and integral checkout links.
func GenerateOrderLinks(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		links, err := svc.GenerateOrderLinks(r.Context(), orderID)
		if err != nil {
			responses.WriteFlatError(r.Context(), logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, links)
	}
}

func GeneratePickupLink(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		link, err := svc.GeneratePickupLink(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, link)
	}
}

type mockApprover interface {
	MockApprove(externalReference string, amount decimal.Decimal) (string, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, paymentID string) (mercadopagowebhook.Result, error)
}

type simulateRequest struct {
	Tipo  enums.PaymentKind `json:"tipo" validate:"required"`
	Valor decimal.Decimal   `json:"valor"`
}

// SimulatePayment approves a fake payment against the mock provider and reconciles
// it synchronously. It is only mounted when the provider runs in mock mode.
func SimulatePayment(provider mockApprover, rec reconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input simulateRequest
		if err := validators.DecodeJSONBody(w, r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !input.Tipo.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "tipo inválido: %s", input.Tipo))
			return
		}
		if !input.Valor.IsPositive() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser maior que zero"))
			return
		}

		paymentID, err := provider.MockApprove(internalpayments.EncodeReference(orderID, input.Tipo), input.Valor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mock approve"))
			return
		}
		result, err := rec.Reconcile(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"payment_id": paymentID,
			"outcome":    result.Outcome,
			"reason":     result.Reason,
		})
	}
}
