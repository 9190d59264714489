package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/types"
)

// ErrLinkUnavailable is returned when the provider could not mint a checkout link.
var ErrLinkUnavailable = errors.New("payment link unavailable")

// PreferenceCreator is the provider surface needed to mint checkout links.
type PreferenceCreator interface {
	CreatePreference(ctx context.Context, in mercadopago.PreferenceInput) (*mercadopago.Preference, error)
}

type orderLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Orcamento, error)
}

type packageLoader interface {
	Get(ctx context.Context, id int64) (*models.PacotePegueMonte, error)
}

type packageResolver func(order *models.Orcamento) (int64, bool)

// OrderLinks is the admin response for the three order offers.
type OrderLinks struct {
	Reserva      types.Money `json:"reserva"`
	LinkReserva  string      `json:"linkReserva"`
	Restante     types.Money `json:"restante"`
	LinkRestante string      `json:"linkRestante"`
	Integral     types.Money `json:"integral"`
	LinkIntegral string      `json:"linkIntegral"`
}

type PickupLink struct {
	Valor types.Money `json:"valor"`
	Link  string      `json:"link"`
}

// Service issues provider checkout links for orders.
type Service interface {
	Issue(ctx context.Context, title string, amount decimal.Decimal, orderID int64, kind enums.PaymentKind) (string, error)
	GenerateOrderLinks(ctx context.Context, orderID int64) (*OrderLinks, error)
	GeneratePickupLink(ctx context.Context, orderID int64) (*PickupLink, error)
}

// ServiceParams groups the issuer dependencies.
type ServiceParams struct {
	Provider       PreferenceCreator
	Orders         orderLoader
	Packages       packageLoader
	ResolvePackage packageResolver
	Domain         string
	Logger         *logger.Logger
}

type service struct {
	provider       PreferenceCreator
	orders         orderLoader
	packages       packageLoader
	resolvePackage packageResolver
	domain         string
	logg           *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if params.Packages == nil {
		return nil, fmt.Errorf("package loader required")
	}
	if params.ResolvePackage == nil {
		return nil, fmt.Errorf("package resolver required")
	}
	if params.Domain == "" {
		return nil, fmt.Errorf("public domain required")
	}
	return &service{
		provider:       params.Provider,
		orders:         params.Orders,
		packages:       params.Packages,
		resolvePackage: params.ResolvePackage,
		domain:         params.Domain,
		logg:           params.Logger,
	}, nil
}

// Issue mints one hosted checkout link. Provider failures are logged and reported as ErrLinkUnavailable.
func (s *service) Issue(ctx context.Context, title string, amount decimal.Decimal, orderID int64, kind enums.PaymentKind) (string, error) {
	if !amount.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser maior que zero")
	}
	pref, err := s.provider.CreatePreference(ctx, mercadopago.PreferenceInput{
		Title:             title,
		Amount:            amount,
		ExternalReference: EncodeReference(orderID, kind),
		NotificationURL:   s.domain + "/api/webhook",
		SuccessURL:        s.domain + "/sucesso.html",
		FailureURL:        s.domain + "/erro.html",
		PendingURL:        s.domain + "/pendente.html",
	})
	if err == nil && (pref == nil || pref.InitPoint == "") {
		err = errors.New("empty init point")
	}
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, orderID), map[string]any{"kind": kind})
			s.logg.Error(logCtx, "mercado pago preference failed", err)
		}
		return "", ErrLinkUnavailable
	}
	return pref.InitPoint, nil
}

func (s *service) GenerateOrderLinks(ctx context.Context, orderID int64) (*OrderLinks, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	split, err := SplitTotal(order.Total())
	if err != nil {
		return nil, err
	}

	links := &OrderLinks{
		Reserva:  types.NewMoney(split.Reserva),
		Restante: types.NewMoney(split.Restante),
		Integral: types.NewMoney(split.Integral),
	}
	offers := []struct {
		kind   enums.PaymentKind
		amount decimal.Decimal
		link   *string
	}{
		{enums.PaymentKindSinal, split.Reserva, &links.LinkReserva},
		{enums.PaymentKindRestante, split.Restante, &links.LinkRestante},
		{enums.PaymentKindIntegral, split.Integral, &links.LinkIntegral},
	}

	for _, offer := range offers {
		url, err := s.Issue(ctx, checkoutTitle(offer.kind, order), offer.amount, order.ID, offer.kind)
		if err != nil {
			return nil, linkError(err)
		}
		*offer.link = url
	}
	return links, nil
}

// GeneratePickupLink issues the single PEGUE_MONTE link. The package price is used
// when the order has no agreed valor_final.
func (s *service) GeneratePickupLink(ctx context.Context, orderID int64) (*PickupLink, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	pkgID, ok := s.resolvePackage(order)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido não referencia um pacote Pegue e Monte")
	}

	amount := order.Total()
	if !order.ValorFinal.Valid {
		pkg, err := s.packages.Get(ctx, pkgID)
		if err != nil {
			return nil, err
		}
		amount = pkg.Valor.Add(order.ValorItensExtras)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor total deve ser maior que zero")
	}

	url, err := s.Issue(ctx, checkoutTitle(enums.PaymentKindPegueMonte, order), amount, order.ID, enums.PaymentKindPegueMonte)
	if err != nil {
		return nil, linkError(err)
	}
	return &PickupLink{Valor: types.NewMoney(amount), Link: url}, nil
}

func (s *service) loadOrder(ctx context.Context, orderID int64) (*models.Orcamento, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}
	return order, nil
}

func checkoutTitle(kind enums.PaymentKind, order *models.Orcamento) string {
	return fmt.Sprintf("Cabana de Brincar - %s - Pedido #%d", kind.Label(), order.ID)
}

func linkError(err error) error {
	if errors.Is(err, ErrLinkUnavailable) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "não foi possível gerar o link de pagamento")
	}
	return err
}
