package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
)

const (
	monthLayout     = "2006-01"
	revenueCategory = "pagamento"
)

// Service records revenue mirrored from reconciled payments and manages admin finance entries.
type Service interface {
	RecordRevenue(ctx context.Context, tx *gorm.DB, orderID int64, kind enums.PaymentKind, customerName string, amount decimal.Decimal) (*models.CustoGeral, error)
	CreateEntry(ctx context.Context, input CreateEntryInput) (*models.CustoGeral, error)
	Statement(ctx context.Context, month string) (*Statement, error)
	DeleteEntry(ctx context.Context, id int64) error
	ListPartyCosts(ctx context.Context, orderID int64) ([]models.CustoFesta, error)
	AddPartyCost(ctx context.Context, orderID int64, input CreatePartyCostInput) (*models.CustoFesta, error)
	DeletePartyCost(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// RevenueDescription is the ledger title for a reconciled payment.
func RevenueDescription(kind enums.PaymentKind, customerName string) string {
	return fmt.Sprintf("Pagamento %s - %s", kind, strings.TrimSpace(customerName))
}

func (s *service) RecordRevenue(ctx context.Context, tx *gorm.DB, orderID int64, kind enums.PaymentKind, customerName string, amount decimal.Decimal) (*models.CustoGeral, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("order id is required")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid payment kind %q", kind)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("revenue amount must be positive, got %s", amount)
	}

	entry := &models.CustoGeral{
		Descricao:      RevenueDescription(kind, customerName),
		Valor:          amount.Round(2),
		Tipo:           enums.LedgerEntryTypeReceita,
		Categoria:      revenueCategory,
		DataLancamento: s.now().UTC(),
		OrcamentoID:    &orderID,
	}
	if err := s.repo.WithTx(tx).CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.CustoGeral, error) {
	if !input.Tipo.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "tipo inválido: %s", input.Tipo)
	}
	if !input.Valor.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser positivo")
	}
	when := s.now().UTC()
	if input.DataLancamento != nil && !input.DataLancamento.IsZero() {
		when = input.DataLancamento.UTC()
	}

	entry := &models.CustoGeral{
		Descricao:      strings.TrimSpace(input.Descricao),
		Valor:          input.Valor.Round(2),
		Tipo:           input.Tipo,
		Categoria:      strings.TrimSpace(input.Categoria),
		DataLancamento: when,
		OrcamentoID:    input.OrcamentoID,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create ledger entry")
	}
	return entry, nil
}

// Statement lists entries for the given YYYY-MM month, or every entry when month is empty.
func (s *service) Statement(ctx context.Context, month string) (*Statement, error) {
	var from, to *time.Time
	month = strings.TrimSpace(month)
	if month != "" {
		start, err := time.ParseInLocation(monthLayout, month, time.UTC)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mes deve estar no formato AAAA-MM")
		}
		end := start.AddDate(0, 1, 0)
		from, to = &start, &end
	}

	entries, err := s.repo.ListEntries(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ledger entries")
	}
	if entries == nil {
		entries = []models.CustoGeral{}
	}
	return &Statement{Mes: month, Resumo: summarize(entries), Entradas: entries}, nil
}

func (s *service) DeleteEntry(ctx context.Context, id int64) error {
	found, err := s.repo.DeleteEntry(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete ledger entry")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "lançamento não encontrado")
	}
	return nil
}

func (s *service) ListPartyCosts(ctx context.Context, orderID int64) ([]models.CustoFesta, error) {
	costs, err := s.repo.ListPartyCosts(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list party costs")
	}
	if costs == nil {
		costs = []models.CustoFesta{}
	}
	return costs, nil
}

func (s *service) AddPartyCost(ctx context.Context, orderID int64, input CreatePartyCostInput) (*models.CustoFesta, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pedido inválido")
	}
	if !input.Valor.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser positivo")
	}
	cost := &models.CustoFesta{
		OrcamentoID: orderID,
		Descricao:   strings.TrimSpace(input.Descricao),
		Valor:       input.Valor.Round(2),
	}
	if err := s.repo.CreatePartyCost(ctx, cost); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create party cost")
	}
	return cost, nil
}

func (s *service) DeletePartyCost(ctx context.Context, id int64) error {
	found, err := s.repo.DeletePartyCost(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete party cost")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "custo não encontrado")
	}
	return nil
}
