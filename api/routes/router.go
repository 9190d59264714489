package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cabanadebrincar/cabana-backend/api/controllers"
	catalogcontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/catalog"
	feedbackcontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/feedback"
	financecontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/finances"
	ordercontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/orders"
	paymentcontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/payments"
	pickupcontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/pickup"
	webhookcontrollers "github.com/cabanadebrincar/cabana-backend/api/controllers/webhooks"
	"github.com/cabanadebrincar/cabana-backend/api/middleware"
	"github.com/cabanadebrincar/cabana-backend/internal/catalog"
	"github.com/cabanadebrincar/cabana-backend/internal/feedback"
	"github.com/cabanadebrincar/cabana-backend/internal/ledger"
	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/internal/payments"
	"github.com/cabanadebrincar/cabana-backend/internal/pickup"
	mercadopagowebhook "github.com/cabanadebrincar/cabana-backend/internal/webhooks/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

const (
	galleryPath = "/fotos"
	uploadsPath = "/uploads"
)

type redisStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

type paymentHistory interface {
	ListByOrder(ctx context.Context, orderID int64) ([]models.PagamentoOrcamento, error)
}

type webhookDispatcher interface {
	Dispatch(ctx context.Context, n mercadopagowebhook.Notification) error
}

type photoLister interface {
	List(ctx context.Context) ([]string, error)
}

type mockProvider interface {
	IsMock() bool
	MockApprove(externalReference string, amount decimal.Decimal) (string, error)
}

type paymentReconciler interface {
	Reconcile(ctx context.Context, paymentID string) (mercadopagowebhook.Result, error)
}

// Services groups the domain services mounted by the router.
type Services struct {
	Orders         orders.Service
	Payments       payments.Service
	PaymentHistory paymentHistory
	Feedback       feedback.Service
	Catalog        catalog.Service
	Pickup         pickup.Service
	Ledger         ledger.Service
	Gallery        photoLister
	Webhooks       webhookDispatcher
	Provider       mockProvider
	Reconciler     paymentReconciler
}

// Assets are served from disk next to the API. UploadsDir is empty when
// uploads live in a bucket.
type Assets struct {
	GalleryDir string
	UploadsDir string
	Metrics    http.Handler
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisStore,
	svc Services,
	assets Assets,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	quotePolicy := middleware.NewRateLimitPolicy(
		"orcamento",
		cfg.RateLimit.QuoteWindow,
		cfg.RateLimit.QuoteIPLimit,
	)
	feedbackPolicy := middleware.NewRateLimitPolicy(
		"feedback",
		cfg.RateLimit.FeedbackWindow,
		cfg.RateLimit.FeedbackLimit,
	)
	uploadLimits := feedbackcontrollers.UploadLimits{
		MaxPhotos:     cfg.Media.MaxFeedbackPics,
		MaxPhotoBytes: cfg.Media.MaxUploadBytes(),
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "database", Pinger: dbP},
			controllers.ReadinessCheck{Name: "redis", Pinger: redisClient},
		))
	})

	if assets.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", assets.Metrics)
	}
	if assets.GalleryDir != "" {
		mountStatic(r, galleryPath, assets.GalleryDir)
	}
	if assets.UploadsDir != "" {
		mountStatic(r, uploadsPath, assets.UploadsDir)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/fotos", controllers.GalleryPhotos(svc.Gallery, logg))
		r.Get("/itens-disponiveis", catalogcontrollers.AvailableItems(svc.Catalog, logg))
		r.Get("/pacotes", pickupcontrollers.ListAvailable(svc.Pickup, logg))
		r.Get("/depoimentos", feedbackcontrollers.ListPublic(svc.Feedback, logg))
		r.With(middleware.RateLimit(quotePolicy, redisClient, logg)).Post("/orcamento", ordercontrollers.Submit(svc.Orders, logg))
		r.Post("/webhook", webhookcontrollers.MercadoPagoWebhook(svc.Webhooks, logg))

		r.Route("/feedback/{token}", func(r chi.Router) {
			r.Get("/", feedbackcontrollers.Lookup(svc.Feedback, logg))
			r.With(middleware.RateLimit(feedbackPolicy, redisClient, logg)).Post("/", feedbackcontrollers.Submit(svc.Feedback, uploadLimits, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.Admin, logg))

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(svc.Orders, logg))
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ordercontrollers.Detail(svc.Orders, svc.PaymentHistory, logg))
					r.Delete("/", ordercontrollers.Delete(svc.Orders, logg))
					r.Put("/status", ordercontrollers.UpdateStatus(svc.Orders, logg))
					r.Put("/financeiro", ordercontrollers.UpdateFinancials(svc.Orders, logg))
					r.Get("/custos", financecontrollers.ListPartyCosts(svc.Ledger, logg))
					r.Post("/custos", financecontrollers.AddPartyCost(svc.Ledger, logg))
				})
			})
			r.Delete("/custos-festa/{id}", financecontrollers.DeletePartyCost(svc.Ledger, logg))

			r.Post("/gerar-links-mp/{orderId}", paymentcontrollers.GenerateOrderLinks(svc.Payments, logg))
			r.Post("/gerar-link-pegue-monte/{orderId}", paymentcontrollers.GeneratePickupLink(svc.Payments, logg))
			r.Post("/gerar-token/{orderId}", feedbackcontrollers.IssueToken(svc.Feedback, logg))
			if svc.Provider != nil && svc.Provider.IsMock() && svc.Reconciler != nil {
				r.Post("/simular-pagamento/{orderId}", paymentcontrollers.SimulatePayment(svc.Provider, svc.Reconciler, logg))
			}

			r.Route("/precos", func(r chi.Router) {
				r.Get("/", catalogcontrollers.ListPrices(svc.Catalog, logg))
				r.Post("/", catalogcontrollers.CreatePrice(svc.Catalog, logg))
				r.Put("/{id}", catalogcontrollers.UpdatePrice(svc.Catalog, logg))
				r.Delete("/{id}", catalogcontrollers.DeletePrice(svc.Catalog, logg))
			})
			r.Route("/cardapios", func(r chi.Router) {
				r.Get("/", catalogcontrollers.ListMenus(svc.Catalog, logg))
				r.Post("/", catalogcontrollers.CreateMenu(svc.Catalog, logg))
				r.Put("/{id}", catalogcontrollers.UpdateMenu(svc.Catalog, logg))
				r.Delete("/{id}", catalogcontrollers.DeleteMenu(svc.Catalog, logg))
				r.Put("/{id}/composicao", catalogcontrollers.SetComposition(svc.Catalog, logg))
			})
			r.Route("/itens-alimentacao", func(r chi.Router) {
				r.Get("/", catalogcontrollers.ListFoodItems(svc.Catalog, logg))
				r.Post("/", catalogcontrollers.CreateFoodItem(svc.Catalog, logg))
				r.Delete("/{id}", catalogcontrollers.DeleteFoodItem(svc.Catalog, logg))
			})

			r.Route("/pacotes", func(r chi.Router) {
				r.Get("/", pickupcontrollers.ListAll(svc.Pickup, logg))
				r.Post("/", pickupcontrollers.Create(svc.Pickup, logg))
				r.Put("/{id}", pickupcontrollers.Update(svc.Pickup, logg))
				r.Delete("/{id}", pickupcontrollers.Delete(svc.Pickup, logg))
			})

			r.Get("/financeiro", financecontrollers.Statement(svc.Ledger, logg))
			r.Post("/custos-gerais", financecontrollers.CreateEntry(svc.Ledger, logg))
			r.Delete("/custos-gerais/{id}", financecontrollers.DeleteEntry(svc.Ledger, logg))

			r.Route("/depoimentos", func(r chi.Router) {
				r.Get("/", feedbackcontrollers.ListAll(svc.Feedback, logg))
				r.Put("/{id}", feedbackcontrollers.Moderate(svc.Feedback, logg))
				r.Delete("/{id}", feedbackcontrollers.Delete(svc.Feedback, logg))
			})
		})
	})

	return r
}

func mountStatic(r chi.Router, prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/")
	fileServer := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(dir)))
	r.Get(prefix+"/*", fileServer.ServeHTTP)
}
