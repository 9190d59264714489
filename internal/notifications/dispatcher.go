package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
)

const (
	channelEmail       = "email"
	defaultQueueSize   = 64
	defaultSendTimeout = 30 * time.Second
)

// ErrDispatcherClosed is returned by Enqueue once Close has been called.
var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("notification queue full")

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// Message is one queued email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	OrderID  int64
}

// Dispatcher drains a buffered queue of messages on a single worker goroutine.
type Dispatcher struct {
	sender      Sender
	queue       chan Message
	logg        *logger.Logger
	metrics     *metrics.NotificationMetrics
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	QueueSize   int
	SendTimeout time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.NotificationMetrics
}

// NewDispatcher starts the worker goroutine. Call Close to drain and stop it.
func NewDispatcher(sender Sender, opts DispatcherOptions) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("notification sender required")
	}
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	d := &Dispatcher{
		sender:      sender,
		queue:       make(chan Message, size),
		logg:        opts.Logger,
		metrics:     opts.Metrics,
		sendTimeout: timeout,
		done:        make(chan struct{}),
	}
	go d.run()
	return d, nil
}

// Enqueue hands a message to the worker without blocking. A full queue drops the message.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient required")
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.metrics.Inc(channelEmail, "dropped")
		if d.logg != nil {
			d.logg.Warn(d.logg.WithOrderID(ctx, msg.OrderID), "notification queue full, email dropped")
		}
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg.To, msg.Subject, msg.TextBody, msg.HTMLBody); err != nil {
		d.metrics.Inc(channelEmail, "failed")
		if d.logg != nil {
			d.logg.Error(d.logg.WithOrderID(ctx, msg.OrderID), "notification send failed", err)
		}
		return
	}
	d.metrics.Inc(channelEmail, "sent")
	if d.logg != nil {
		d.logg.Info(d.logg.WithOrderID(ctx, msg.OrderID), "notification sent")
	}
}
