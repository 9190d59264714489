package mercadopago

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	// StatusApproved is the payment status that credits an order.
	StatusApproved = "approved"

	currencyBRL       = "BRL"
	autoReturnApprove = "approved"
	defaultTimeout    = 10 * time.Second
	mockCheckoutBase  = "https://www.mercadopago.com.br/checkout/v1/redirect?pref_id="
)

var (
	ErrMissingAccessToken = errors.New("missing mercado pago access token")
	ErrPaymentNotFound    = errors.New("mercado pago payment not found")
)

// PreferenceInput describes a single-item hosted checkout.
type PreferenceInput struct {
	Title             string
	Amount            decimal.Decimal
	ExternalReference string
	NotificationURL   string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
}

// Preference is the created checkout.
type Preference struct {
	ID        string
	InitPoint string
}

// Payment is the authoritative payment state fetched from the provider.
type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount decimal.Decimal
	PaymentMethodID   string
}

// Approved reports whether the payment credits the order.
func (p Payment) Approved() bool {
	return p.Status == StatusApproved
}

// Client wraps the Mercado Pago SDK preference and payment clients.
// In mock mode no network calls are made.
type Client struct {
	preferences         preference.Client
	payments            payment.Client
	timeout             time.Duration
	statementDescriptor string
	logg                *logger.Logger

	mock         bool
	mu           sync.Mutex
	mockPayments map[string]Payment
}

func New(cfg config.MercadoPagoConfig, logg *logger.Logger) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		timeout:             timeout,
		statementDescriptor: cfg.StatementDescriptor,
		logg:                logg,
	}

	if cfg.Mock {
		client.mock = true
		client.mockPayments = map[string]Payment{}
		if logg != nil {
			logg.Warn(context.Background(), "mercado pago mock mode enabled")
		}
		return client, nil
	}

	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, ErrMissingAccessToken
	}
	sdkCfg, err := mpconfig.New(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("mercado pago sdk config: %w", err)
	}
	client.preferences = preference.NewClient(sdkCfg)
	client.payments = payment.NewClient(sdkCfg)
	return client, nil
}

// IsMock reports whether the client fakes provider calls.
func (c *Client) IsMock() bool {
	return c != nil && c.mock
}

// CreatePreference creates a hosted checkout for one item and returns its init point.
func (c *Client) CreatePreference(ctx context.Context, in PreferenceInput) (*Preference, error) {
	if c == nil {
		return nil, errors.New("mercado pago client not initialized")
	}
	if c.mock {
		id := "mock-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		return &Preference{ID: id, InitPoint: mockCheckoutBase + id}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := preference.Request{
		Items: []preference.ItemRequest{{
			Title:      in.Title,
			Quantity:   1,
			UnitPrice:  in.Amount.Round(2).InexactFloat64(),
			CurrencyID: currencyBRL,
		}},
		ExternalReference:   in.ExternalReference,
		NotificationURL:     in.NotificationURL,
		StatementDescriptor: c.statementDescriptor,
		BackURLs: &preference.BackURLsRequest{
			Success: in.SuccessURL,
			Failure: in.FailureURL,
			Pending: in.PendingURL,
		},
		AutoReturn: autoReturnApprove,
	}

	resp, err := c.preferences.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	return &Preference{ID: resp.ID, InitPoint: resp.InitPoint}, nil
}

// GetPayment fetches the payment by its provider identifier.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if c == nil {
		return nil, errors.New("mercado pago client not initialized")
	}
	numericID, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || numericID <= 0 {
		return nil, fmt.Errorf("invalid payment id %q", id)
	}

	if c.mock {
		c.mu.Lock()
		defer c.mu.Unlock()
		p, ok := c.mockPayments[strconv.Itoa(numericID)]
		if !ok {
			return nil, ErrPaymentNotFound
		}
		return &p, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.payments.Get(ctx, numericID)
	if err != nil {
		return nil, fmt.Errorf("get payment %d: %w", numericID, err)
	}
	if resp == nil {
		return nil, ErrPaymentNotFound
	}
	return &Payment{
		ID:                strconv.Itoa(resp.ID),
		Status:            resp.Status,
		StatusDetail:      resp.StatusDetail,
		ExternalReference: resp.ExternalReference,
		TransactionAmount: decimal.NewFromFloat(resp.TransactionAmount).Round(2),
		PaymentMethodID:   resp.PaymentMethodID,
	}, nil
}

// MockApprove registers an approved payment in mock mode and returns its id.
func (c *Client) MockApprove(externalReference string, amount decimal.Decimal) (string, error) {
	if !c.IsMock() {
		return "", errors.New("mercado pago client is not in mock mode")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	id := strconv.Itoa(1000 + len(c.mockPayments))
	c.mockPayments[id] = Payment{
		ID:                id,
		Status:            StatusApproved,
		StatusDetail:      "accredited",
		ExternalReference: externalReference,
		TransactionAmount: amount.Round(2),
		PaymentMethodID:   "pix",
	}
	return id, nil
}
