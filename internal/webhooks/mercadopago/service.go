package mercadopagowebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/internal/notifications"
	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/internal/payments"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
)

// PaymentMethod tags records written by this reconciler.
const PaymentMethod = "mercadopago"

var (
	errAlreadyProcessed = errors.New("payment already processed")
	errOrderMissing     = errors.New("order not found")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentFetcher interface {
	GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error)
}

type revenueRecorder interface {
	RecordRevenue(ctx context.Context, tx *gorm.DB, orderID int64, kind enums.PaymentKind, customerName string, amount decimal.Decimal) (*models.CustoGeral, error)
}

type packageReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
}

type notifier interface {
	Enqueue(ctx context.Context, msg notifications.Message) error
}

// Result describes what a reconciliation did.
type Result struct {
	Outcome string
	OrderID int64
	Kind    enums.PaymentKind
	Reason  string
}

type ServiceParams struct {
	Provider          paymentFetcher
	Orders            orders.Repository
	Payments          PaymentRepository
	Ledger            revenueRecorder
	Packages          packageReserver
	Notifier          notifier
	TransactionRunner txRunner
	Logger            *logger.Logger
	Now               func() time.Time
}

// Service reconciles approved provider payments into order state exactly once.
type Service struct {
	provider paymentFetcher
	orders   orders.Repository
	payments PaymentRepository
	ledger   revenueRecorder
	packages packageReserver
	notifier notifier
	txRunner txRunner
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if params.Packages == nil {
		return nil, fmt.Errorf("pickup service required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		provider: params.Provider,
		orders:   params.Orders,
		payments: params.Payments,
		ledger:   params.Ledger,
		packages: params.Packages,
		notifier: params.Notifier,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Reconcile fetches the authoritative payment and applies it to its order once.
func (s *Service) Reconcile(ctx context.Context, paymentID string) (Result, error) {
	payment, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		return Result{Outcome: metrics.OutcomeFailed}, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if !payment.Approved() {
		return Result{Outcome: metrics.OutcomeIgnored, Reason: "status " + payment.Status}, nil
	}

	orderID, kind, err := payments.DecodeReference(payment.ExternalReference)
	if err != nil {
		return Result{Outcome: metrics.OutcomeIgnored, Reason: err.Error()}, nil
	}
	result := Result{OrderID: orderID, Kind: kind}

	var order *models.Orcamento
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		var applyErr error
		order, applyErr = s.apply(ctx, tx, payment, orderID, kind)
		return applyErr
	})
	switch {
	case errors.Is(err, errAlreadyProcessed):
		result.Outcome = metrics.OutcomeDuplicate
		return result, nil
	case errors.Is(err, errOrderMissing):
		result.Outcome = metrics.OutcomeIgnored
		result.Reason = err.Error()
		return result, nil
	case err != nil:
		result.Outcome = metrics.OutcomeFailed
		return result, err
	}

	result.Outcome = metrics.OutcomeProcessed
	s.notify(ctx, order, kind, payment.TransactionAmount)
	return result, nil
}

func (s *Service) apply(ctx context.Context, tx *gorm.DB, payment *mercadopago.Payment, orderID int64, kind enums.PaymentKind) (*models.Orcamento, error) {
	orderRepo := s.orders.WithTx(tx)
	order, err := orderRepo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return nil, errOrderMissing
	}

	inserted, err := s.payments.WithTx(tx).InsertIfAbsent(ctx, &models.PagamentoOrcamento{
		OrcamentoID:       orderID,
		Valor:             payment.TransactionAmount,
		Tipo:              kind,
		DataPagamento:     s.now().UTC(),
		Metodo:            PaymentMethod,
		ProviderPaymentID: payment.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("insert payment record: %w", err)
	}
	if !inserted {
		return nil, errAlreadyProcessed
	}

	updates := Transition(order, kind)
	if len(updates) > 0 {
		if _, err := orderRepo.Update(ctx, orderID, updates); err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
	}

	if _, err := s.ledger.RecordRevenue(ctx, tx, orderID, kind, order.Nome, payment.TransactionAmount); err != nil {
		return nil, fmt.Errorf("record revenue: %w", err)
	}

	if kind == enums.PaymentKindPegueMonte {
		if pkgID, ok := orders.PackageRef(order); ok {
			if _, err := s.packages.Reserve(ctx, tx, pkgID); err != nil {
				return nil, fmt.Errorf("reserve package: %w", err)
			}
		} else if s.logg != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, orderID), "pickup payment without package reference")
		}
	}
	return order, nil
}

// Transition returns the column updates a reconciled payment of kind applies to order.
// Statuses only move forward: pago never drops to parcial and concluido is never reopened.
func Transition(order *models.Orcamento, kind enums.PaymentKind) map[string]any {
	updates := map[string]any{}

	target := enums.PaymentStatusParcial
	if kind.SettlesOrder() {
		target = enums.PaymentStatusPago
	}
	if next := order.StatusPagamento.Advance(target); next != order.StatusPagamento {
		updates["status_pagamento"] = next
	}

	if kind.SchedulesOrder() {
		scheduled := order.StatusAgenda != nil && *order.StatusAgenda == enums.ScheduleStatusAgendado
		if !order.IsConcluded() && !scheduled {
			updates["status_agenda"] = enums.ScheduleStatusAgendado
		}
		if order.Status != enums.OrderStatusAprovado {
			updates["status"] = enums.OrderStatusAprovado
		}
	}
	return updates
}

func (s *Service) notify(ctx context.Context, order *models.Orcamento, kind enums.PaymentKind, amount decimal.Decimal) {
	if s.notifier == nil || order == nil {
		return
	}
	msg, ok, err := notifications.PaymentConfirmation(order, kind, amount)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, order.ID), "render payment confirmation", err)
		}
		return
	}
	if !ok {
		return
	}
	if err := s.notifier.Enqueue(ctx, msg); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID), "payment confirmation not queued: "+err.Error())
	}
}
