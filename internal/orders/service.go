package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type packageFinder interface {
	FindByID(ctx context.Context, id int64) (*models.PacotePegueMonte, error)
}

// Service implements quote intake and the admin side of the order state machine.
type Service interface {
	Submit(ctx context.Context, input SubmitOrderInput) (*models.Orcamento, error)
	Get(ctx context.Context, id int64) (*models.Orcamento, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*models.Orcamento, error)
	Approve(ctx context.Context, id int64) (*models.Orcamento, error)
	Complete(ctx context.Context, id int64, input UpdateStatusInput) (*models.Orcamento, error)
	UpdateFinancials(ctx context.Context, id int64, input FinancialsInput) (*models.Orcamento, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo     Repository
	packages packageFinder
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds the order service.
func NewService(repo Repository, packages packageFinder, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if packages == nil {
		return nil, fmt.Errorf("pickup package repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, packages: packages, tx: tx, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitOrderInput) (*models.Orcamento, error) {
	nome := strings.TrimSpace(input.Nome)
	whatsapp := strings.TrimSpace(input.Whatsapp)
	if nome == "" || whatsapp == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nome e whatsapp são obrigatórios")
	}
	dataFesta, err := time.ParseInLocation(dateLayout, strings.TrimSpace(input.DataFesta), time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "data_festa deve estar no formato AAAA-MM-DD")
	}

	order := &models.Orcamento{
		Nome:            nome,
		Whatsapp:        whatsapp,
		Email:           normalizeEmail(input.Email),
		Endereco:        strings.TrimSpace(input.Endereco),
		DataFesta:       dataFesta,
		Horario:         input.Horario,
		QtdCriancas:     input.QtdCriancas,
		FaixaEtaria:     input.FaixaEtaria,
		ModeloBarraca:   input.ModeloBarraca,
		QtdBarracas:     input.QtdBarracas,
		Cores:           input.Cores,
		Tema:            input.Tema,
		ItensPadrao:     input.ItensPadrao,
		ItensAdicionais: input.ItensAdicionais,
		Alimentacao:     input.Alimentacao,
		Alergias:        input.Alergias,
		Observacoes:     input.Observacoes,
		Status:          enums.OrderStatusPendente,
		StatusPagamento: enums.PaymentStatusPendente,
	}
	pkgID, err := s.linkPackage(ctx, input.PacotePegueMonteID)
	if err != nil {
		return nil, err
	}
	order.PacotePegueMonteID = pkgID

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "order submitted")
	}
	return order, nil
}

// linkPackage keeps the requested pickup package only when it exists. The theme text
// is never parsed here: a customer may mention "ID: 7" in an ordinary party theme.
func (s *service) linkPackage(ctx context.Context, requested *int64) (*int64, error) {
	id, ok := explicitRef(requested)
	if !ok {
		return nil, nil
	}
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pickup package")
	}
	if pkg == nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "pacote_pegue_monte_id", id), "quote references unknown pickup package, dropping reference")
		}
		return nil, nil
	}
	return &id, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Orcamento, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cursor inválido")
	}
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return list, nil
}

func (s *service) UpdateStatus(ctx context.Context, id int64, input UpdateStatusInput) (*models.Orcamento, error) {
	switch input.Status {
	case StatusActionApprove:
		return s.Approve(ctx, id)
	case StatusActionComplete:
		return s.Complete(ctx, id, input)
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "status inválido: %s", input.Status)
	}
}

// Approve moves the order to (aprovado, agendado). A concluded order cannot be reopened.
func (s *service) Approve(ctx context.Context, id int64) (*models.Orcamento, error) {
	var result *models.Orcamento
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
		}
		if order.IsConcluded() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pedido já concluído")
		}

		agendado := enums.ScheduleStatusAgendado
		if _, err := repo.Update(ctx, id, map[string]any{
			"status":        enums.OrderStatusAprovado,
			"status_agenda": agendado,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve order")
		}
		order.Status = enums.OrderStatusAprovado
		order.StatusAgenda = &agendado
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Complete moves status_agenda to concluido, optionally recording the final amounts.
func (s *service) Complete(ctx context.Context, id int64, input UpdateStatusInput) (*models.Orcamento, error) {
	updates := map[string]any{"status_agenda": enums.ScheduleStatusConcluido}
	if input.ValorFinal != nil {
		if input.ValorFinal.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor_final não pode ser negativo")
		}
		updates["valor_final"] = input.ValorFinal.Round(2)
	}
	if input.ValorItensExtras != nil {
		updates["valor_itens_extras"] = input.ValorItensExtras.Round(2)
	}
	if input.DescricaoItensExtras != nil {
		updates["descricao_itens_extras"] = *input.DescricaoItensExtras
	}

	found, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete order")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}
	return s.Get(ctx, id)
}

func (s *service) UpdateFinancials(ctx context.Context, id int64, input FinancialsInput) (*models.Orcamento, error) {
	if input.ValorFinal.Value != nil && input.ValorFinal.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor_final não pode ser negativo")
	}
	if input.Custos.Value != nil && input.Custos.Value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custos não pode ser negativo")
	}
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nenhum campo para atualizar")
	}

	found, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order financials")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.WithTx(tx).DeleteCascade(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
		}
		return nil
	})
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
