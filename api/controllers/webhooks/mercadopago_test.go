package webhooks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mercadopagowebhook "github.com/cabanadebrincar/cabana-backend/internal/webhooks/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	seen []mercadopagowebhook.Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n mercadopagowebhook.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = append(d.seen, n)
	return d.err
}

type blockingReconciler struct {
	release chan struct{}
	done    chan string
}

func (b *blockingReconciler) Reconcile(ctx context.Context, paymentID string) (mercadopagowebhook.Result, error) {
	<-b.release
	b.done <- paymentID
	return mercadopagowebhook.Result{Outcome: metrics.OutcomeProcessed, OrderID: 1}, nil
}

func postWebhook(handler http.Handler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-request-id", "req-1")
	req.Header.Set("x-signature", "ts=1,v1=abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMercadoPagoWebhookForwardsNotification(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := MercadoPagoWebhook(dispatcher, nil)

	rec := postWebhook(handler, "/api/webhook", `{"type":"payment","data":{"id":"321"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	require.Len(t, dispatcher.seen, 1)
	n := dispatcher.seen[0]
	assert.Equal(t, "321", n.PaymentID)
	assert.Equal(t, "payment", n.Topic)
	assert.Equal(t, "req-1", n.RequestID)
	assert.Equal(t, "ts=1,v1=abc", n.Signature)
}

func TestMercadoPagoWebhookQueryShape(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := MercadoPagoWebhook(dispatcher, nil)

	rec := postWebhook(handler, "/api/webhook?topic=payment&id=77", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, dispatcher.seen, 1)
	assert.Equal(t, "77", dispatcher.seen[0].PaymentID)
}

func TestMercadoPagoWebhookAcknowledgesDispatchFailure(t *testing.T) {
	dispatcher := &recordingDispatcher{err: mercadopagowebhook.ErrRunnerClosed}
	handler := MercadoPagoWebhook(dispatcher, nil)

	rec := postWebhook(handler, "/api/webhook", `{"type":"payment","data":{"id":"1"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postWebhook(MercadoPagoWebhook(nil, nil), "/api/webhook", `garbage`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMercadoPagoWebhookRespondsBeforeReconciling(t *testing.T) {
	reconciler := &blockingReconciler{release: make(chan struct{}), done: make(chan string, 1)}
	runner, err := mercadopagowebhook.NewRunner(mercadopagowebhook.RunnerParams{
		Reconciler: reconciler,
		Workers:    1,
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	handler := MercadoPagoWebhook(runner, nil)

	rec := postWebhook(handler, "/api/webhook", `{"type":"payment","data":{"id":"555"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-reconciler.done:
		t.Fatal("reconciliation finished before it was released")
	default:
	}

	close(reconciler.release)
	select {
	case id := <-reconciler.done:
		assert.Equal(t, "555", id)
	case <-time.After(2 * time.Second):
		t.Fatal("reconciliation never ran")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, runner.Close(ctx))
	assert.True(t, errors.Is(runner.Dispatch(context.Background(), mercadopagowebhook.Notification{}), mercadopagowebhook.ErrRunnerClosed))
}
