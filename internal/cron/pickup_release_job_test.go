package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/internal/orders"
	"github.com/cabanadebrincar/cabana-backend/internal/pickup"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	"github.com/cabanadebrincar/cabana-backend/pkg/logger"
)

var releaseNow = time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

func setupReleaseTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.PacotePegueMonte{}, &models.Orcamento{}, &models.PagamentoOrcamento{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newReleaseJob(t *testing.T, conn *gorm.DB, packages packageReleaser) Job {
	t.Helper()
	if packages == nil {
		svc, err := pickup.NewService(pickup.NewRepository(conn), nil)
		require.NoError(t, err)
		packages = svc
	}
	job, err := NewPickupReleaseJob(PickupReleaseJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:       db.NewFromGorm(conn),
		Orders:   orders.NewRepository(conn),
		Packages: packages,
		Now:      func() time.Time { return releaseNow },
	})
	require.NoError(t, err)
	return job
}

func seedPackage(t *testing.T, conn *gorm.DB, id int64, status enums.PackageStatus) {
	t.Helper()
	require.NoError(t, conn.Create(&models.PacotePegueMonte{
		ID:     id,
		Nome:   "Kit",
		Valor:  decimal.NewFromInt(300),
		Status: status,
	}).Error)
}

func seedPartyOrder(t *testing.T, conn *gorm.DB, daysAgo int, packageID *int64, tema string) *models.Orcamento {
	t.Helper()
	agendado := enums.ScheduleStatusAgendado
	day := time.Date(releaseNow.Year(), releaseNow.Month(), releaseNow.Day(), 0, 0, 0, 0, time.UTC)
	order := &models.Orcamento{
		Nome:               "Cliente",
		Whatsapp:           "11999990000",
		DataFesta:          day.AddDate(0, 0, -daysAgo),
		Tema:               tema,
		Status:             enums.OrderStatusAprovado,
		StatusAgenda:       &agendado,
		StatusPagamento:    enums.PaymentStatusPago,
		PacotePegueMonteID: packageID,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func loadOrder(t *testing.T, conn *gorm.DB, id int64) models.Orcamento {
	t.Helper()
	var order models.Orcamento
	require.NoError(t, conn.First(&order, id).Error)
	return order
}

func loadPackage(t *testing.T, conn *gorm.DB, id int64) models.PacotePegueMonte {
	t.Helper()
	var pkg models.PacotePegueMonte
	require.NoError(t, conn.First(&pkg, id).Error)
	return pkg
}

func int64Ptr(v int64) *int64 { return &v }

func TestPickupReleaseTwoDaysPastReleases(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 42, enums.PackageStatusReservado)
	order := seedPartyOrder(t, conn, 2, int64Ptr(42), "Safari")

	require.NoError(t, newReleaseJob(t, conn, nil).Run(context.Background()))

	assert.Equal(t, enums.PackageStatusLiberado, loadPackage(t, conn, 42).Status)
	got := loadOrder(t, conn, order.ID)
	require.NotNil(t, got.StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusConcluido, *got.StatusAgenda)
}

func TestPickupReleaseOneDayPastIsUntouched(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 42, enums.PackageStatusReservado)
	order := seedPartyOrder(t, conn, 1, int64Ptr(42), "Safari")

	require.NoError(t, newReleaseJob(t, conn, nil).Run(context.Background()))

	assert.Equal(t, enums.PackageStatusReservado, loadPackage(t, conn, 42).Status)
	got := loadOrder(t, conn, order.ID)
	require.NotNil(t, got.StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusAgendado, *got.StatusAgenda)
}

func seedPickupPayment(t *testing.T, conn *gorm.DB, orderID int64) {
	t.Helper()
	require.NoError(t, conn.Create(&models.PagamentoOrcamento{
		OrcamentoID:   orderID,
		Valor:         decimal.NewFromInt(300),
		Tipo:          enums.PaymentKindPegueMonte,
		DataPagamento: releaseNow.AddDate(0, 0, -10),
		Metodo:        "mercadopago",
	}).Error)
}

func TestPickupReleaseLegacyThemeReference(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 7, enums.PackageStatusReservado)
	order := seedPartyOrder(t, conn, 5, nil, "Pegue e Monte - Kit Fazenda (ID: 7)")
	seedPickupPayment(t, conn, order.ID)
	unrelated := seedPartyOrder(t, conn, 5, nil, "Unicórnio")

	require.NoError(t, newReleaseJob(t, conn, nil).Run(context.Background()))

	assert.Equal(t, enums.PackageStatusLiberado, loadPackage(t, conn, 7).Status)
	assert.Equal(t, enums.ScheduleStatusConcluido, *loadOrder(t, conn, order.ID).StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusAgendado, *loadOrder(t, conn, unrelated.ID).StatusAgenda)
}

func TestPickupReleaseSkipsThemeTagWithoutPickupPayment(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 7, enums.PackageStatusReservado)
	party := seedPartyOrder(t, conn, 5, nil, "Festa Homem-Aranha, personagem ID: 7 do catálogo")

	require.NoError(t, newReleaseJob(t, conn, nil).Run(context.Background()))

	assert.Equal(t, enums.PackageStatusReservado, loadPackage(t, conn, 7).Status)
	assert.Equal(t, enums.ScheduleStatusAgendado, *loadOrder(t, conn, party.ID).StatusAgenda)
}

func TestPickupReleaseAlreadyLiberadoStillConcludes(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 9, enums.PackageStatusLiberado)
	order := seedPartyOrder(t, conn, 3, int64Ptr(9), "")

	require.NoError(t, newReleaseJob(t, conn, nil).Run(context.Background()))

	assert.Equal(t, enums.PackageStatusLiberado, loadPackage(t, conn, 9).Status)
	assert.Equal(t, enums.ScheduleStatusConcluido, *loadOrder(t, conn, order.ID).StatusAgenda)
}

type flakyReleaser struct {
	failFor int64
	inner   packageReleaser
}

func (f flakyReleaser) Release(ctx context.Context, tx *gorm.DB, id int64) (bool, error) {
	if id == f.failFor {
		return false, errors.New("release failed")
	}
	return f.inner.Release(ctx, tx, id)
}

func TestPickupReleaseContinuesPastFailures(t *testing.T) {
	conn := setupReleaseTestDB(t)
	seedPackage(t, conn, 1, enums.PackageStatusReservado)
	seedPackage(t, conn, 2, enums.PackageStatusReservado)
	failing := seedPartyOrder(t, conn, 4, int64Ptr(1), "")
	ok := seedPartyOrder(t, conn, 3, int64Ptr(2), "")

	svc, err := pickup.NewService(pickup.NewRepository(conn), nil)
	require.NoError(t, err)
	job := newReleaseJob(t, conn, flakyReleaser{failFor: 1, inner: svc})

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Contains(t, err.Error(), "order")

	assert.Equal(t, enums.ScheduleStatusAgendado, *loadOrder(t, conn, failing.ID).StatusAgenda)
	assert.Equal(t, enums.PackageStatusReservado, loadPackage(t, conn, 1).Status)
	assert.Equal(t, enums.ScheduleStatusConcluido, *loadOrder(t, conn, ok.ID).StatusAgenda)
	assert.Equal(t, enums.PackageStatusLiberado, loadPackage(t, conn, 2).Status)
}

func TestPickupReleaseRegistersInRegistry(t *testing.T) {
	conn := setupReleaseTestDB(t)
	job := newReleaseJob(t, conn, nil)
	registry := NewRegistry(job)
	require.Len(t, registry.Jobs(), 1)
	assert.Equal(t, "pickup-release", registry.Jobs()[0].Name())
}
