package pickup

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

// Service exposes pickup package management and the guarded status transitions
// shared by payment reconciliation and the release job.
type Service interface {
	ListAvailable(ctx context.Context) ([]models.PacotePegueMonte, error)
	ListAll(ctx context.Context) ([]models.PacotePegueMonte, error)
	Get(ctx context.Context, id int64) (*models.PacotePegueMonte, error)
	Create(ctx context.Context, input CreatePackageInput) (*models.PacotePegueMonte, error)
	Update(ctx context.Context, id int64, input UpdatePackageInput) (*models.PacotePegueMonte, error)
	Delete(ctx context.Context, id int64) error
	Reserve(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, id int64) (bool, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pickup repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]models.PacotePegueMonte, error) {
	status := enums.PackageStatusLiberado
	pkgs, err := s.repo.List(ctx, &status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list packages")
	}
	return pkgs, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.PacotePegueMonte, error) {
	pkgs, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list packages")
	}
	return pkgs, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.PacotePegueMonte, error) {
	pkg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load package")
	}
	if pkg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pacote não encontrado")
	}
	return pkg, nil
}

func (s *service) Create(ctx context.Context, input CreatePackageInput) (*models.PacotePegueMonte, error) {
	if !input.Valor.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser positivo")
	}
	pkg := &models.PacotePegueMonte{
		Nome:      input.Nome,
		Descricao: input.Descricao,
		Valor:     input.Valor.Round(2),
		FotoURL:   input.FotoURL,
		Status:    enums.PackageStatusLiberado,
	}
	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create package")
	}
	return pkg, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdatePackageInput) (*models.PacotePegueMonte, error) {
	if input.Valor != nil && !input.Valor.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valor deve ser positivo")
	}
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nenhum campo para atualizar")
	}
	found, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update package")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pacote não encontrado")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete package")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pacote não encontrado")
	}
	return nil
}

// Reserve moves a package from liberado to reservado. Any other current state is a no-op.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	return s.transition(ctx, tx, id, enums.PackageStatusLiberado, enums.PackageStatusReservado)
}

// Release moves a package from reservado back to liberado. Any other current state is a no-op.
func (s *service) Release(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	return s.transition(ctx, tx, id, enums.PackageStatusReservado, enums.PackageStatusLiberado)
}

func (s *service) transition(ctx context.Context, tx *gorm.DB, id int64, from, to enums.PackageStatus) (bool, error) {
	changed, err := s.repo.WithTx(tx).TransitionStatus(ctx, id, from, to)
	if err != nil {
		return false, fmt.Errorf("package %d %s->%s: %w", id, from, to, err)
	}
	if !changed && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"package_id": id,
			"from":       from,
			"to":         to,
		}), "package status transition skipped")
	}
	return changed, nil
}
