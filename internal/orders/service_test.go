package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/internal/pickup"
	"github.com/cabanadebrincar/cabana-backend/pkg/db"
	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
	"github.com/cabanadebrincar/cabana-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newOrdersService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), pickup.NewRepository(conn), db.NewFromGorm(conn), nil)
	require.NoError(t, err)
	return svc
}

func submitTestOrder(t *testing.T, svc Service, tema string) *models.Orcamento {
	t.Helper()
	order, err := svc.Submit(context.Background(), SubmitOrderInput{
		Nome:      "Ana Souza",
		Whatsapp:  "11999990000",
		DataFesta: "2025-05-10",
		Tema:      tema,
		Cores:     []string{"rosa", "lilás"},
	})
	require.NoError(t, err)
	return order
}

func TestSubmitCreatesPendingOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)

	order := submitTestOrder(t, svc, "Safari")
	assert.Positive(t, order.ID)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendente, stored.Status)
	assert.Nil(t, stored.StatusAgenda)
	assert.Equal(t, enums.PaymentStatusPendente, stored.StatusPagamento)
	assert.Equal(t, []string{"rosa", "lilás"}, []string(stored.Cores))
	assert.Nil(t, stored.PacotePegueMonteID)
	assert.Equal(t, "2025-05-10", stored.DataFesta.Format(dateLayout))
}

func setupForeignKeyDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func seedTestPackage(t *testing.T, conn *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, conn.Create(&models.PacotePegueMonte{
		ID:     id,
		Nome:   "Kit Dino",
		Valor:  decimal.NewFromInt(250),
		Status: enums.PackageStatusLiberado,
	}).Error)
}

func TestSubmitIgnoresPackageTagInTheme(t *testing.T) {
	conn := setupForeignKeyDB(t)
	seedTestPackage(t, conn, 7)
	svc := newOrdersService(t, conn)

	for _, tema := range []string{
		"Festa Homem-Aranha, personagem ID: 7 do catálogo",
		"Festa Dinossauro ID: 999",
	} {
		order := submitTestOrder(t, svc, tema)
		assert.Nil(t, order.PacotePegueMonteID, tema)
	}
}

func TestSubmitLinksExistingPackage(t *testing.T) {
	conn := setupForeignKeyDB(t)
	seedTestPackage(t, conn, 42)
	svc := newOrdersService(t, conn)

	pkgID := int64(42)
	order, err := svc.Submit(context.Background(), SubmitOrderInput{
		Nome:               "Ana Souza",
		Whatsapp:           "11999990000",
		DataFesta:          "2025-05-10",
		Tema:               "Pegue e Monte Dino",
		PacotePegueMonteID: &pkgID,
	})
	require.NoError(t, err)
	require.NotNil(t, order.PacotePegueMonteID)
	assert.Equal(t, int64(42), *order.PacotePegueMonteID)
}

func TestSubmitDropsUnknownPackage(t *testing.T) {
	conn := setupForeignKeyDB(t)
	svc := newOrdersService(t, conn)

	missing := int64(404)
	order, err := svc.Submit(context.Background(), SubmitOrderInput{
		Nome:               "Ana Souza",
		Whatsapp:           "11999990000",
		DataFesta:          "2025-05-10",
		PacotePegueMonteID: &missing,
	})
	require.NoError(t, err)
	assert.Nil(t, order.PacotePegueMonteID)

	stored, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PacotePegueMonteID)
}

func TestSubmitValidation(t *testing.T) {
	svc := newOrdersService(t, setupOrdersTestDB(t))

	_, err := svc.Submit(context.Background(), SubmitOrderInput{Nome: " ", Whatsapp: "1", DataFesta: "2025-01-01"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Submit(context.Background(), SubmitOrderInput{Nome: "Ana", Whatsapp: "1", DataFesta: "10/05/2025"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestApproveAndComplete(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	ctx := context.Background()
	order := submitTestOrder(t, svc, "")

	approved, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: StatusActionApprove})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAprovado, approved.Status)
	require.NotNil(t, approved.StatusAgenda)
	assert.Equal(t, enums.ScheduleStatusAgendado, *approved.StatusAgenda)

	valor := decimal.NewFromInt(1200)
	extras := decimal.NewFromInt(-50)
	desc := "desconto amiga"
	completed, err := svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{
		Status:               StatusActionComplete,
		ValorFinal:           &valor,
		ValorItensExtras:     &extras,
		DescricaoItensExtras: &desc,
	})
	require.NoError(t, err)
	assert.True(t, completed.IsConcluded())
	assert.Equal(t, "1150.00", completed.Total().StringFixed(2))
	assert.Equal(t, enums.OrderStatusAprovado, completed.Status)

	_, err = svc.Approve(ctx, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Approve(ctx, 9999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateFinancialsPartial(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	ctx := context.Background()
	order := submitTestOrder(t, svc, "")

	var input FinancialsInput
	require.NoError(t, json.Unmarshal([]byte(`{"valor_final": 1000, "custos": 300}`), &input))
	updated, err := svc.UpdateFinancials(ctx, order.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", updated.ValorFinal.Decimal.StringFixed(2))
	assert.True(t, updated.Custos.Valid)

	input = FinancialsInput{}
	require.NoError(t, json.Unmarshal([]byte(`{"custos": null}`), &input))
	updated, err = svc.UpdateFinancials(ctx, order.ID, input)
	require.NoError(t, err)
	assert.False(t, updated.Custos.Valid)
	assert.True(t, updated.ValorFinal.Valid, "absent field must be untouched")

	_, err = svc.UpdateFinancials(ctx, order.ID, FinancialsInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteCascadesAndDetachesLedger(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	ctx := context.Background()
	order := submitTestOrder(t, svc, "")

	require.NoError(t, conn.Create(&models.PagamentoOrcamento{
		OrcamentoID:   order.ID,
		Valor:         decimal.NewFromInt(500),
		Tipo:          enums.PaymentKindSinal,
		DataPagamento: time.Now().UTC(),
		Metodo:        "mercadopago",
	}).Error)
	entry := &models.CustoGeral{
		Descricao:      "Pagamento SINAL - Ana Souza",
		Valor:          decimal.NewFromInt(500),
		Tipo:           enums.LedgerEntryTypeReceita,
		DataLancamento: time.Now().UTC(),
		OrcamentoID:    &order.ID,
	}
	require.NoError(t, conn.Create(entry).Error)
	testimonial := &models.Depoimento{OrcamentoID: &order.ID, Nome: "Ana", Texto: "Amamos", Nota: 5}
	require.NoError(t, conn.Create(testimonial).Error)
	require.NoError(t, conn.Create(&models.FotoDepoimento{DepoimentoID: testimonial.ID, URL: "/uploads/a.png"}).Error)
	require.NoError(t, conn.Create(&models.CustoFesta{OrcamentoID: order.ID, Descricao: "Balões", Valor: decimal.NewFromInt(40)}).Error)

	require.NoError(t, svc.Delete(ctx, order.ID))

	var count int64
	require.NoError(t, conn.Model(&models.PagamentoOrcamento{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.Depoimento{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.FotoDepoimento{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&models.CustoFesta{}).Count(&count).Error)
	assert.Zero(t, count)

	var kept models.CustoGeral
	require.NoError(t, conn.First(&kept, entry.ID).Error)
	assert.Nil(t, kept.OrcamentoID)

	err := svc.Delete(ctx, order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc := newOrdersService(t, conn)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := submitTestOrder(t, svc, "")
		require.NoError(t, conn.Model(&models.Orcamento{}).Where("id = ?", order.ID).
			Update("data_pedido", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, int64(3), page.Orders[0].ID)
	assert.Equal(t, int64(2), page.Orders[1].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Orders, 1)
	assert.Equal(t, int64(1), next.Orders[0].ID)
	assert.Empty(t, next.NextCursor)

	_, err = svc.List(ctx, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestResolvePackageRef(t *testing.T) {
	explicit := int64(7)
	cases := []struct {
		name     string
		explicit *int64
		tema     string
		want     int64
		ok       bool
	}{
		{name: "explicit wins", explicit: &explicit, tema: "ID: 42", want: 7, ok: true},
		{name: "legacy tag", tema: "Kit Fazendinha ID: 42", want: 42, ok: true},
		{name: "tag without space", tema: "ID:9", want: 9, ok: true},
		{name: "no tag", tema: "Fazendinha", ok: false},
		{name: "zero id", tema: "ID: 0", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolvePackageRef(tc.explicit, tc.tema)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLinkedPackageIgnoresTheme(t *testing.T) {
	_, ok := LinkedPackage(&models.Orcamento{Tema: "Kit Fazendinha ID: 42"})
	assert.False(t, ok)

	id := int64(42)
	got, ok := LinkedPackage(&models.Orcamento{PacotePegueMonteID: &id, Tema: "ID: 7"})
	assert.True(t, ok)
	assert.Equal(t, int64(42), got)

	_, ok = LinkedPackage(nil)
	assert.False(t, ok)
}
