package feedback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/security"
)

const (
	tokenBytes       = 32
	defaultMaxPhotos = 6
	defaultMaxBytes  = 8 << 20
	objectPrefix     = "depoimentos/"
	sniffLen         = 512
)

var allowedPhotoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ObjectStore is the storage surface for testimonial photos. Both the GCS
// client and the local directory store satisfy it.
type ObjectStore interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, object string) error
	ObjectFromURL(raw string) (string, bool)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the review token flow and testimonial moderation.
type Service interface {
	IssueToken(ctx context.Context, orderID int64) (*TokenLink, error)
	Lookup(ctx context.Context, token string) (*Target, error)
	Submit(ctx context.Context, token string, input SubmitInput) (*models.Depoimento, error)
	ListPublic(ctx context.Context) ([]models.Depoimento, error)
	ListAll(ctx context.Context) ([]models.Depoimento, error)
	Moderate(ctx context.Context, id int64, input ModerateInput) (*models.Depoimento, error)
	Delete(ctx context.Context, id int64) error
}

type ServiceParams struct {
	Repository        Repository
	TransactionRunner txRunner
	Store             ObjectStore
	Domain            string
	MaxPhotos         int
	MaxPhotoBytes     int64
	Logger            *logger.Logger
	NewToken          func() (string, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	store     ObjectStore
	domain    string
	maxPhotos int
	maxBytes  int64
	logg      *logger.Logger
	newToken  func() (string, error)
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("object store required")
	}
	svc := &service{
		repo:      params.Repository,
		tx:        params.TransactionRunner,
		store:     params.Store,
		domain:    strings.TrimRight(params.Domain, "/"),
		maxPhotos: params.MaxPhotos,
		maxBytes:  params.MaxPhotoBytes,
		logg:      params.Logger,
		newToken:  params.NewToken,
	}
	if svc.maxPhotos <= 0 {
		svc.maxPhotos = defaultMaxPhotos
	}
	if svc.maxBytes <= 0 {
		svc.maxBytes = defaultMaxBytes
	}
	if svc.newToken == nil {
		svc.newToken = func() (string, error) { return security.GenerateToken(tokenBytes) }
	}
	return svc, nil
}

func (s *service) IssueToken(ctx context.Context, orderID int64) (*TokenLink, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido não encontrado")
	}

	token, err := s.newToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate review token")
	}
	if _, err := s.repo.SetToken(ctx, orderID, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store review token")
	}
	return &TokenLink{
		Token: token,
		Link:  s.domain + "/feedback.html?t=" + token,
	}, nil
}

func (s *service) Lookup(ctx context.Context, token string) (*Target, error) {
	order, err := s.orderForToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Target{Nome: order.Nome}, nil
}

func (s *service) orderForToken(ctx context.Context, token string) (*models.Orcamento, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link inválido ou já utilizado")
	}
	order, err := s.repo.FindOrderByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order by token")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link inválido ou já utilizado")
	}
	return order, nil
}

func (s *service) Submit(ctx context.Context, token string, input SubmitInput) (*models.Depoimento, error) {
	texto := strings.TrimSpace(input.Texto)
	if texto == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "texto é obrigatório")
	}
	if input.Nota < 1 || input.Nota > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nota deve estar entre 1 e 5")
	}
	if len(input.Photos) > s.maxPhotos {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "máximo de %d fotos", s.maxPhotos)
	}

	order, err := s.orderForToken(ctx, token)
	if err != nil {
		return nil, err
	}

	photos, err := s.readPhotos(input.Photos)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		url, err := s.store.Upload(ctx, objectPrefix+uuid.NewString()+p.ext, p.contentType, bytes.NewReader(p.data))
		if err != nil {
			s.discard(ctx, urls)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "falha ao enviar fotos")
		}
		urls = append(urls, url)
	}

	nome := order.Nome
	if input.Nome != nil && strings.TrimSpace(*input.Nome) != "" {
		nome = strings.TrimSpace(*input.Nome)
	}
	orderID := order.ID
	dep := &models.Depoimento{
		OrcamentoID: &orderID,
		Nome:        nome,
		Texto:       texto,
		Nota:        input.Nota,
		Aprovado:    false,
	}
	for _, u := range urls {
		dep.Fotos = append(dep.Fotos, models.FotoDepoimento{URL: u})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		consumed, err := repo.ConsumeToken(ctx, order.ID, token)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume review token")
		}
		if !consumed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "link inválido ou já utilizado")
		}
		if err := repo.CreateTestimonial(ctx, dep); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create testimonial")
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, urls)
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID)
		logCtx = s.logg.WithFields(logCtx, map[string]any{"depoimento_id": dep.ID, "fotos": len(urls)})
		s.logg.Info(logCtx, "testimonial submitted")
	}
	return dep, nil
}

type photoData struct {
	data        []byte
	contentType string
	ext         string
}

func (s *service) readPhotos(photos []Photo) ([]photoData, error) {
	out := make([]photoData, 0, len(photos))
	for _, p := range photos {
		if p.Body == nil {
			continue
		}
		if p.Size > s.maxBytes {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "foto %q excede o tamanho máximo", p.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(p.Body, s.maxBytes+1))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "falha ao ler foto")
		}
		if int64(len(data)) > s.maxBytes {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "foto %q excede o tamanho máximo", p.Filename)
		}
		head := data
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		contentType := http.DetectContentType(head)
		ext, ok := allowedPhotoTypes[contentType]
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "foto %q deve ser png, jpeg ou webp", p.Filename)
		}
		out = append(out, photoData{data: data, contentType: contentType, ext: ext})
	}
	return out, nil
}

// discard removes uploaded objects. Failures are logged together and never
// reach the caller.
func (s *service) discard(ctx context.Context, urls []string) {
	var errs error
	for _, u := range urls {
		object, ok := s.store.ObjectFromURL(u)
		if !ok {
			continue
		}
		if err := s.store.DeleteObject(ctx, object); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", object, err))
		}
	}
	if errs != nil {
		s.logg.Warn(s.logg.WithField(ctx, "failed_objects", len(multierr.Errors(errs))),
			"failed to delete testimonial photos: "+errs.Error())
	}
}

func (s *service) ListPublic(ctx context.Context) ([]models.Depoimento, error) {
	deps, err := s.repo.ListTestimonials(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list testimonials")
	}
	return deps, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Depoimento, error) {
	deps, err := s.repo.ListTestimonials(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list testimonials")
	}
	return deps, nil
}

func (s *service) Moderate(ctx context.Context, id int64, input ModerateInput) (*models.Depoimento, error) {
	if input.Texto != nil && strings.TrimSpace(*input.Texto) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "texto não pode ser vazio")
	}
	updates := input.updates()
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nenhum campo para atualizar")
	}
	found, err := s.repo.UpdateTestimonial(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update testimonial")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depoimento não encontrado")
	}
	dep, err := s.repo.FindTestimonial(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load testimonial")
	}
	if dep == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "depoimento não encontrado")
	}
	return dep, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	dep, err := s.repo.FindTestimonial(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load testimonial")
	}
	if dep == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "depoimento não encontrado")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).DeleteTestimonial(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete testimonial")
		}
		return nil
	})
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(dep.Fotos))
	for _, foto := range dep.Fotos {
		urls = append(urls, foto.URL)
	}
	s.discard(ctx, urls)
	return nil
}
