package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cabanadebrincar/cabana-backend/api/routes"
	"github.com/cabanadebrincar/cabana-backend/internal/catalog"
	"github.com/cabanadebrincar/cabana-backend/internal/feedback"
	"github.com/cabanadebrincar/cabana-backend/internal/gallery"
	"github.com/cabanadebrincar/cabana-backend/internal/ledger"
	"github.com/cabanadebrincar/cabana-backend/internal/notifications"
	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/internal/payments"
	"github.com/cabanadebrincar/cabana-backend/internal/pickup"
	mercadopagowebhook "github.com/cabanadebrincar/cabana-backend/internal/webhooks/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/config"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
	"github.com/cabanadebrincar/cabana-backend/pkg/mailer"
	"github.com/cabanadebrincar/cabana-backend/pkg/mercadopago"
	"github.com/cabanadebrincar/cabana-backend/pkg/metrics"
	"github.com/cabanadebrincar/cabana-backend/pkg/migrate"
	"github.com/cabanadebrincar/cabana-backend/pkg/redis"
	"github.com/cabanadebrincar/cabana-backend/pkg/storage/gcs"
	"github.com/cabanadebrincar/cabana-backend/pkg/storage/local"
)

const (
	webhookGuardScope = "mercadopago-webhook"
	uploadsURLPrefix  = "/uploads"
	shutdownTimeout   = 20 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()
	go dbClient.KeepAlive(ctx, cfg.DB.KeepAlive, logg)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mpClient, err := mercadopago.New(cfg.MercadoPago, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mercado pago client", err)
		os.Exit(1)
	}

	domain := payments.NormalizeDomain(cfg.App.PublicDomain, cfg.App.Port)

	pickupRepo := pickup.NewRepository(dbClient.DB())
	pickupService, err := pickup.NewService(pickupRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create pickup service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, pickupRepo, dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create ledger service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Provider:       mpClient,
		Orders:         ordersRepo,
		Packages:       pickupService,
		ResolvePackage: orders.LinkedPackage,
		Domain:         domain,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payments service", err)
		os.Exit(1)
	}

	sender, err := newSender(cfg.SMTP, logg)
	if err != nil {
		logg.Error(ctx, "failed to create email sender", err)
		os.Exit(1)
	}
	dispatcher, err := notifications.NewDispatcher(sender, notifications.DispatcherOptions{
		QueueSize: cfg.Notifications.QueueSize,
		Logger:    logg,
		Metrics:   metrics.NewNotificationMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(ctx, "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	paymentRepo := mercadopagowebhook.NewPaymentRepository(dbClient.DB())
	reconciler, err := mercadopagowebhook.NewService(mercadopagowebhook.ServiceParams{
		Provider:          mpClient,
		Orders:            ordersRepo,
		Payments:          paymentRepo,
		Ledger:            ledgerService,
		Packages:          pickupService,
		Notifier:          dispatcher,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook reconciler", err)
		os.Exit(1)
	}
	guard, err := mercadopagowebhook.NewIdempotencyGuard(redisClient, cfg.MercadoPago.WebhookGuardTTL, webhookGuardScope)
	if err != nil {
		logg.Error(ctx, "failed to create webhook guard", err)
		os.Exit(1)
	}
	runner, err := mercadopagowebhook.NewRunner(mercadopagowebhook.RunnerParams{
		Reconciler:    reconciler,
		Guard:         guard,
		WebhookSecret: cfg.MercadoPago.WebhookSecret,
		Workers:       cfg.MercadoPago.WebhookWorkers,
		Timeout:       cfg.MercadoPago.WebhookTimeout,
		Metrics:       metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook runner", err)
		os.Exit(1)
	}

	store, uploadsDir, err := newObjectStore(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to create upload store", err)
		os.Exit(1)
	}
	feedbackService, err := feedback.NewService(feedback.ServiceParams{
		Repository:        feedback.NewRepository(dbClient.DB()),
		TransactionRunner: dbClient,
		Store:             store,
		Domain:            domain,
		MaxPhotos:         cfg.Media.MaxFeedbackPics,
		MaxPhotoBytes:     cfg.Media.MaxUploadBytes(),
		Logger:            logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create feedback service", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":    addr,
		"domain":  domain,
		"mp_mock": mpClient.IsMock(),
	})

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
		Orders:         ordersService,
		Payments:       paymentsService,
		PaymentHistory: paymentRepo,
		Feedback:       feedbackService,
		Catalog:        catalogService,
		Pickup:         pickupService,
		Ledger:         ledgerService,
		Gallery:        gallery.NewService(cfg.Gallery.Dir, logg),
		Webhooks:       runner,
		Provider:       mpClient,
		Reconciler:     reconciler,
	}, routes.Assets{
		GalleryDir: cfg.Gallery.Dir,
		UploadsDir: uploadsDir,
		Metrics:    promhttp.Handler(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "api server shutdown failed", err)
	}
	if err := runner.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "webhook runner did not drain", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "notification dispatcher did not drain", err)
	}
	logg.Info(shutdownCtx, "api server stopped")

	if exitCode != 0 {
		stop()
		os.Exit(exitCode)
	}
}

func newSender(cfg config.SMTPConfig, logg *logger.Logger) (notifications.Sender, error) {
	if !cfg.Configured() {
		return mailer.NewLogSender(logg), nil
	}
	sender, err := mailer.NewSMTPSender(cfg)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

// newObjectStore picks the bucket when configured and falls back to a local
// directory served under /uploads.
func newObjectStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (feedback.ObjectStore, string, error) {
	if cfg.GCS.BucketName != "" {
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, "", err
		}
		return client, "", nil
	}
	store, err := local.New(cfg.Media.LocalDir, uploadsURLPrefix)
	if err != nil {
		return nil, "", err
	}
	logg.Warn(ctx, "gcs bucket not configured, storing uploads on local disk")
	return store, cfg.Media.LocalDir, nil
}
