package mercadopagowebhook

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
)

const (
	providerName      = "mercadopago"
	defaultWorkers    = 4
	defaultJobTimeout = 30 * time.Second
)

// ErrRunnerClosed is returned by Dispatch after Close.
var ErrRunnerClosed = errors.New("webhook runner closed")

type reconciler interface {
	Reconcile(ctx context.Context, paymentID string) (Result, error)
}

type guard interface {
	CheckAndMark(ctx context.Context, paymentID string) (bool, error)
	Delete(ctx context.Context, paymentID string) error
}

type RunnerParams struct {
	Reconciler    reconciler
	Guard         guard
	WebhookSecret string
	Workers       int
	Timeout       time.Duration
	Metrics       *metrics.WebhookMetrics
	Logger        *logger.Logger
}

// Runner processes notifications after the HTTP acknowledgement with bounded concurrency.
type Runner struct {
	reconciler reconciler
	guard      guard
	secret     string
	timeout    time.Duration
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger

	sem    chan struct{}
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Reconciler == nil {
		return nil, errors.New("reconciler required")
	}
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	return &Runner{
		reconciler: params.Reconciler,
		guard:      params.Guard,
		secret:     params.WebhookSecret,
		timeout:    timeout,
		metrics:    params.Metrics,
		logg:       params.Logger,
		sem:        make(chan struct{}, workers),
	}, nil
}

// Dispatch schedules the notification and returns immediately. The job runs on a
// context detached from the request so the acknowledgement does not cancel it.
func (r *Runner) Dispatch(ctx context.Context, n Notification) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRunnerClosed
	}

	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		jobCtx, cancel := context.WithTimeout(detached, r.timeout)
		defer cancel()
		r.Process(jobCtx, n)
	}()
	return nil
}

// Process handles one notification synchronously and returns the outcome.
func (r *Runner) Process(ctx context.Context, n Notification) string {
	start := time.Now()
	outcome := r.process(ctx, n)
	r.metrics.Observe(providerName, outcome, time.Since(start))
	return outcome
}

func (r *Runner) process(ctx context.Context, n Notification) string {
	if !n.IsPayment() {
		return metrics.OutcomeIgnored
	}
	if r.logg != nil {
		ctx = r.logg.WithPaymentID(ctx, n.PaymentID)
	}

	if r.secret != "" && !VerifySignature(r.secret, n.Signature, n.RequestID, n.PaymentID) {
		if r.logg != nil {
			r.logg.Warn(ctx, "mercado pago notification signature mismatch")
		}
		return metrics.OutcomeInvalidSignature
	}

	if r.guard != nil {
		seen, err := r.guard.CheckAndMark(ctx, n.PaymentID)
		if err != nil {
			if r.logg != nil {
				r.logg.Warn(ctx, "webhook guard unavailable: "+err.Error())
			}
		} else if seen {
			return metrics.OutcomeDuplicate
		}
	}

	result, err := r.reconciler.Reconcile(ctx, n.PaymentID)
	if r.logg != nil && result.OrderID > 0 {
		ctx = r.logg.WithFields(r.logg.WithOrderID(ctx, result.OrderID), map[string]any{"kind": result.Kind})
	}
	if err != nil {
		r.release(ctx, n.PaymentID)
		if r.logg != nil {
			r.logg.Error(ctx, "mercado pago reconciliation failed", err)
		}
		return metrics.OutcomeFailed
	}

	switch result.Outcome {
	case metrics.OutcomeProcessed:
		if r.logg != nil {
			r.logg.Info(ctx, "mercado pago payment reconciled")
		}
	case metrics.OutcomeDuplicate:
		if r.logg != nil {
			r.logg.Info(ctx, "mercado pago payment already reconciled")
		}
	default:
		// the same payment id is notified again when its status changes
		r.release(ctx, n.PaymentID)
		if r.logg != nil {
			r.logg.Warn(ctx, "mercado pago notification ignored: "+result.Reason)
		}
	}
	return result.Outcome
}

func (r *Runner) release(ctx context.Context, paymentID string) {
	if r.guard == nil {
		return
	}
	if err := r.guard.Delete(context.WithoutCancel(ctx), paymentID); err != nil && r.logg != nil {
		r.logg.Warn(ctx, "webhook guard release failed: "+err.Error())
	}
}

// Close stops accepting notifications and waits for in-flight jobs or ctx.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
