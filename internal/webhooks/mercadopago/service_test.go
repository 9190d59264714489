package mercadopagowebhook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/internal/ledger"
	"github.com/cabanadebrincar/cabana-backend/internal/notifications"
	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/internal/payments"
	"github.com/cabanadebrincar/cabana-backend/internal/pickup"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	"github.com/cabanadebrincar/cabana-backend/pkg/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
)

type fakeProvider struct {
	mu       sync.Mutex
	payments map[string]*mercadopago.Payment
	err      error
}

func (f *fakeProvider) GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, mercadopago.ErrPaymentNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProvider) approve(id string, orderID int64, kind enums.PaymentKind, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payments == nil {
		f.payments = map[string]*mercadopago.Payment{}
	}
	f.payments[id] = &mercadopago.Payment{
		ID:                id,
		Status:            mercadopago.StatusApproved,
		ExternalReference: payments.EncodeReference(orderID, kind),
		TransactionAmount: decimal.RequireFromString(amount),
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notifications.Message
	err      error
}

func (r *recordingNotifier) Enqueue(ctx context.Context, msg notifications.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.err
}

type failingLedger struct{}

func (failingLedger) RecordRevenue(ctx context.Context, tx *gorm.DB, orderID int64, kind enums.PaymentKind, customerName string, amount decimal.Decimal) (*models.CustoGeral, error) {
	return nil, errors.New("ledger unavailable")
}

type reconcilerFixture struct {
	conn     *gorm.DB
	provider *fakeProvider
	notifier *recordingNotifier
	service  *Service
}

func setupWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// sqlite serializes writers; one connection keeps concurrent deliveries from hitting table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	conn := setupWebhookTestDB(t)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	require.NoError(t, err)
	pickupSvc, err := pickup.NewService(pickup.NewRepository(conn), nil)
	require.NoError(t, err)

	fx := &reconcilerFixture{conn: conn, provider: &fakeProvider{}, notifier: &recordingNotifier{}}
	fx.service, err = NewService(ServiceParams{
		Provider:          fx.provider,
		Orders:            orders.NewRepository(conn),
		Payments:          NewPaymentRepository(conn),
		Ledger:            ledgerSvc,
		Packages:          pickupSvc,
		Notifier:          fx.notifier,
		TransactionRunner: db.NewFromGorm(conn),
	})
	require.NoError(t, err)
	return fx
}

func (fx *reconcilerFixture) createOrder(t *testing.T, mutate func(o *models.Orcamento)) *models.Orcamento {
	t.Helper()
	email := "cliente@example.com"
	order := &models.Orcamento{
		Nome:             "Carla Dias",
		Whatsapp:         "11988887777",
		Email:            &email,
		DataFesta:        time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Status:           enums.OrderStatusPendente,
		StatusPagamento:  enums.PaymentStatusPendente,
		ValorFinal:       decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		ValorItensExtras: decimal.Zero,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, fx.conn.Create(order).Error)
	return order
}

func (fx *reconcilerFixture) reload(t *testing.T, id int64) models.Orcamento {
	t.Helper()
	var order models.Orcamento
	require.NoError(t, fx.conn.First(&order, id).Error)
	return order
}

func (fx *reconcilerFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, fx.conn.Model(model).Count(&n).Error)
	return n
}

func TestReconcileDepositAndRedelivery(t *testing.T) {
	fx := newReconcilerFixture(t)
	ctx := context.Background()
	order := fx.createOrder(t, nil)
	fx.provider.approve("111", order.ID, enums.PaymentKindSinal, "500")

	result, err := fx.service.Reconcile(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, result.Outcome)

	stored := fx.reload(t, order.ID)
	assert.Equal(t, enums.PaymentStatusParcial, stored.StatusPagamento)
	require.NotNil(t, stored.StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusAgendado, *stored.StatusAgenda)
	assert.Equal(t, enums.OrderStatusAprovado, stored.Status)

	var records []models.PagamentoOrcamento
	require.NoError(t, fx.conn.Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, enums.PaymentKindSinal, records[0].Tipo)
	assert.Equal(t, "500.00", records[0].Valor.StringFixed(2))
	assert.Equal(t, PaymentMethod, records[0].Metodo)
	assert.Equal(t, "111", records[0].ProviderPaymentID)

	var entries []models.CustoGeral
	require.NoError(t, fx.conn.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.LedgerEntryTypeReceita, entries[0].Tipo)
	assert.Equal(t, "Pagamento SINAL - Carla Dias", entries[0].Descricao)
	assert.Equal(t, "500.00", entries[0].Valor.StringFixed(2))

	for i := 0; i < 3; i++ {
		again, err := fx.service.Reconcile(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeDuplicate, again.Outcome)
	}
	assert.Equal(t, int64(1), fx.count(t, &models.PagamentoOrcamento{}))
	assert.Equal(t, int64(1), fx.count(t, &models.CustoGeral{}))
	assert.Len(t, fx.notifier.messages, 1)
}

func TestReconcileConcurrentDeliveriesApplyOnce(t *testing.T) {
	fx := newReconcilerFixture(t)
	order := fx.createOrder(t, nil)
	fx.provider.approve("222", order.ID, enums.PaymentKindIntegral, "950")

	var wg sync.WaitGroup
	outcomes := make(chan string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := fx.service.Reconcile(context.Background(), "222")
			if err != nil {
				outcomes <- metrics.OutcomeFailed
				return
			}
			outcomes <- result.Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	processed := 0
	for outcome := range outcomes {
		if outcome == metrics.OutcomeProcessed {
			processed++
		}
	}
	assert.Equal(t, 1, processed)
	assert.Equal(t, int64(1), fx.count(t, &models.PagamentoOrcamento{}))
	assert.Equal(t, int64(1), fx.count(t, &models.CustoGeral{}))
	assert.Equal(t, enums.PaymentStatusPago, fx.reload(t, order.ID).StatusPagamento)
}

func TestReconcileIsMonotonic(t *testing.T) {
	fx := newReconcilerFixture(t)
	ctx := context.Background()
	concluded := enums.ScheduleStatusConcluido
	order := fx.createOrder(t, func(o *models.Orcamento) {
		o.StatusAgenda = &concluded
		o.Status = enums.OrderStatusAprovado
	})

	fx.provider.approve("301", order.ID, enums.PaymentKindRestante, "500")
	fx.provider.approve("302", order.ID, enums.PaymentKindSinal, "500")
	fx.provider.approve("303", order.ID, enums.PaymentKindIntegral, "950")

	for _, id := range []string{"301", "302", "303"} {
		result, err := fx.service.Reconcile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeProcessed, result.Outcome, id)

		stored := fx.reload(t, order.ID)
		assert.Equal(t, enums.PaymentStatusPago, stored.StatusPagamento, "pago must survive a late %s", result.Kind)
		assert.True(t, stored.IsConcluded(), "concluido must survive %s", result.Kind)
	}
}

func TestReconcileIgnoresUnapprovedAndUnknownReferences(t *testing.T) {
	fx := newReconcilerFixture(t)
	ctx := context.Background()
	order := fx.createOrder(t, nil)

	fx.provider.payments = map[string]*mercadopago.Payment{
		"401": {ID: "401", Status: "pending", ExternalReference: payments.EncodeReference(order.ID, enums.PaymentKindSinal), TransactionAmount: decimal.NewFromInt(500)},
		"402": {ID: "402", Status: mercadopago.StatusApproved, ExternalReference: "pedido-7", TransactionAmount: decimal.NewFromInt(500)},
		"403": {ID: "403", Status: mercadopago.StatusApproved, ExternalReference: "999__SINAL", TransactionAmount: decimal.NewFromInt(500)},
	}
	for _, id := range []string{"401", "402", "403"} {
		result, err := fx.service.Reconcile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, metrics.OutcomeIgnored, result.Outcome, id)
	}
	assert.Zero(t, fx.count(t, &models.PagamentoOrcamento{}))
	assert.Equal(t, enums.PaymentStatusPendente, fx.reload(t, order.ID).StatusPagamento)
}

func TestReconcileRollsBackOnFailure(t *testing.T) {
	fx := newReconcilerFixture(t)
	ctx := context.Background()
	order := fx.createOrder(t, nil)
	fx.provider.approve("501", order.ID, enums.PaymentKindSinal, "500")

	fx.service.ledger = failingLedger{}
	result, err := fx.service.Reconcile(ctx, "501")
	require.Error(t, err)
	assert.Equal(t, metrics.OutcomeFailed, result.Outcome)
	assert.Zero(t, fx.count(t, &models.PagamentoOrcamento{}))
	assert.Equal(t, enums.PaymentStatusPendente, fx.reload(t, order.ID).StatusPagamento)
	assert.Empty(t, fx.notifier.messages)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(fx.conn))
	require.NoError(t, err)
	fx.service.ledger = ledgerSvc
	result, err = fx.service.Reconcile(ctx, "501")
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, result.Outcome, "redelivery after a rollback must succeed")

	fx.provider.err = errors.New("timeout")
	result, err = fx.service.Reconcile(ctx, "501")
	require.Error(t, err)
	assert.Equal(t, metrics.OutcomeFailed, result.Outcome)
}

func TestReconcilePickupPackage(t *testing.T) {
	fx := newReconcilerFixture(t)
	ctx := context.Background()

	pkg := &models.PacotePegueMonte{ID: 42, Nome: "Kit Unicórnio", Valor: decimal.NewFromInt(300), Status: enums.PackageStatusLiberado}
	require.NoError(t, fx.conn.Create(pkg).Error)
	order := fx.createOrder(t, func(o *models.Orcamento) {
		o.Tema = "Pegue e Monte Unicórnio ID: 42"
		o.ValorFinal = decimal.NullDecimal{}
	})
	fx.provider.approve("601", order.ID, enums.PaymentKindPegueMonte, "300")

	result, err := fx.service.Reconcile(ctx, "601")
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, result.Outcome)

	var stored models.PacotePegueMonte
	require.NoError(t, fx.conn.First(&stored, 42).Error)
	assert.Equal(t, enums.PackageStatusReservado, stored.Status)

	updated := fx.reload(t, order.ID)
	assert.Equal(t, enums.PaymentStatusPago, updated.StatusPagamento)
	require.NotNil(t, updated.StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusAgendado, *updated.StatusAgenda)
	assert.Equal(t, enums.OrderStatusAprovado, updated.Status)
}

func TestReconcilePickupWithoutPackageStillTransitions(t *testing.T) {
	fx := newReconcilerFixture(t)
	order := fx.createOrder(t, nil)
	fx.provider.approve("701", order.ID, enums.PaymentKindPegueMonte, "300")

	result, err := fx.service.Reconcile(context.Background(), "701")
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, result.Outcome)
	assert.Equal(t, enums.PaymentStatusPago, fx.reload(t, order.ID).StatusPagamento)
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	fx := newReconcilerFixture(t)
	order := fx.createOrder(t, nil)
	fx.notifier.err = notifications.ErrQueueFull
	fx.provider.approve("801", order.ID, enums.PaymentKindRestante, "500")

	result, err := fx.service.Reconcile(context.Background(), "801")
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeProcessed, result.Outcome)
	assert.Equal(t, int64(1), fx.count(t, &models.PagamentoOrcamento{}))
}

func TestTransitionTable(t *testing.T) {
	agendado := enums.ScheduleStatusAgendado
	pending := &models.Orcamento{Status: enums.OrderStatusPendente, StatusPagamento: enums.PaymentStatusPendente}

	assert.Equal(t, map[string]any{
		"status_pagamento": enums.PaymentStatusParcial,
		"status_agenda":    enums.ScheduleStatusAgendado,
		"status":           enums.OrderStatusAprovado,
	}, Transition(pending, enums.PaymentKindSinal))

	assert.Equal(t, map[string]any{
		"status_pagamento": enums.PaymentStatusPago,
	}, Transition(pending, enums.PaymentKindRestante))

	paid := &models.Orcamento{Status: enums.OrderStatusAprovado, StatusAgenda: &agendado, StatusPagamento: enums.PaymentStatusPago}
	assert.Empty(t, Transition(paid, enums.PaymentKindSinal))
}
