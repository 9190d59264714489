package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []Message
	block   chan struct{}
	failFor string
}

func (r *recordingSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if r.block != nil {
		<-r.block
	}
	if to == r.failFor {
		return errors.New("smtp down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Message{To: to, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	return nil
}

func (r *recordingSender) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.sent...)
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sender := &recordingSender{failFor: "fail@example.com"}
	d, err := NewDispatcher(sender, DispatcherOptions{QueueSize: 4})
	require.NoError(t, err)

	require.NoError(t, d.Enqueue(context.Background(), Message{To: "a@example.com", Subject: "one"}))
	require.NoError(t, d.Enqueue(context.Background(), Message{To: "fail@example.com", Subject: "two"}))
	require.NoError(t, d.Enqueue(context.Background(), Message{To: "b@example.com", Subject: "three"}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	sent := sender.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, "one", sent[0].Subject)
	assert.Equal(t, "three", sent[1].Subject)

	assert.ErrorIs(t, d.Enqueue(context.Background(), Message{To: "c@example.com"}), ErrDispatcherClosed)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d, err := NewDispatcher(sender, DispatcherOptions{QueueSize: 1})
	require.NoError(t, err)

	// the worker takes the first message and blocks in Send
	require.NoError(t, d.Enqueue(context.Background(), Message{To: "a@example.com"}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Enqueue(context.Background(), Message{To: "b@example.com"}))

	start := time.Now()
	err = d.Enqueue(context.Background(), Message{To: "c@example.com"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(sender.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, sender.messages(), 2)
}

func TestPaymentConfirmation(t *testing.T) {
	email := " ana@example.com "
	order := &models.Orcamento{
		ID:        12,
		Nome:      "Ana <Souza>",
		Email:     &email,
		DataFesta: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	}

	msg, ok, err := PaymentConfirmation(order, enums.PaymentKindSinal, decimal.RequireFromString("1500.5"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Pagamento confirmado - Pedido #12", msg.Subject)
	assert.Contains(t, msg.TextBody, "R$ 1.500,50")
	assert.Contains(t, msg.TextBody, "10/05/2025")
	assert.Contains(t, msg.TextBody, "Sinal (50%)")
	assert.Contains(t, msg.HTMLBody, "Ana &lt;Souza&gt;")

	order.Email = nil
	_, ok, err = PaymentConfirmation(order, enums.PaymentKindSinal, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "950,00", formatBRL(decimal.NewFromInt(950)))
	assert.Equal(t, "1.000,00", formatBRL(decimal.NewFromInt(1000)))
	assert.Equal(t, "1.234.567,89", formatBRL(decimal.RequireFromString("1234567.891")))
	assert.Equal(t, "-50,00", formatBRL(decimal.NewFromInt(-50)))
}
