package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/cabanadebrincar/cabana-backend/api/responses"
	mercadopagowebhook "github.com/cabanadebrincar/cabana-backend/internal/webhooks/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	maxWebhookBody    = 64 << 10
	headerSignature   = "x-signature"
	headerMPRequestID = "x-request-id"
)

type dispatcher interface {
	Dispatch(ctx context.Context, n mercadopagowebhook.Notification) error
}

// MercadoPagoWebhook acknowledges every notification with 200 and hands it to the
// async runner. The body is untrusted; the payment is always re-fetched.
func MercadoPagoWebhook(runner dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil && logg != nil {
			logg.Warn(ctx, "read mercado pago webhook body: "+err.Error())
		}

		notification := mercadopagowebhook.ParseNotification(body, r.URL.Query())
		notification.RequestID = r.Header.Get(headerMPRequestID)
		notification.Signature = r.Header.Get(headerSignature)

		if runner != nil {
			if err := runner.Dispatch(ctx, notification); err != nil && logg != nil {
				logg.Error(ctx, "dispatch mercado pago webhook", err)
			}
		}
		responses.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}
