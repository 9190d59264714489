package pickup

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cabanadebrincar/cabana-backend/pkg/db/models"
	"github.com/cabanadebrincar/cabana-backend/pkg/enums"
	pkgerrors "github.com/cabanadebrincar/cabana-backend/pkg/errors"
)

func setupPickupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PacotePegueMonte{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), nil)
	require.NoError(t, err)
	return svc
}

func TestReserveOnlyFromLiberado(t *testing.T) {
	db := setupPickupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	pkg, err := svc.Create(ctx, CreatePackageInput{Nome: "Kit Safari", Valor: decimal.NewFromInt(350)})
	require.NoError(t, err)
	assert.Equal(t, enums.PackageStatusLiberado, pkg.Status)

	changed, err := svc.Reserve(ctx, db, pkg.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Reserve(ctx, db, pkg.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second reserve must be a no-op")

	got, err := svc.Get(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PackageStatusReservado, got.Status)

	available, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestReleaseOnlyFromReservado(t *testing.T) {
	db := setupPickupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	pkg, err := svc.Create(ctx, CreatePackageInput{Nome: "Kit Princesa", Valor: decimal.NewFromInt(280)})
	require.NoError(t, err)

	changed, err := svc.Release(ctx, db, pkg.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = svc.Reserve(ctx, db, pkg.ID)
	require.NoError(t, err)

	changed, err = svc.Release(ctx, db, pkg.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Reserve(ctx, db, 9999)
	require.NoError(t, err)
	assert.False(t, changed, "missing package is a no-op")
}

func TestUpdateAndDelete(t *testing.T) {
	db := setupPickupTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	pkg, err := svc.Create(ctx, CreatePackageInput{Nome: "Kit Dino", Valor: decimal.NewFromInt(300)})
	require.NoError(t, err)

	nome := "Kit Dinossauro"
	updated, err := svc.Update(ctx, pkg.ID, UpdatePackageInput{Nome: &nome})
	require.NoError(t, err)
	assert.Equal(t, nome, updated.Nome)
	assert.True(t, updated.Valor.Equal(decimal.NewFromInt(300)))

	_, err = svc.Update(ctx, pkg.ID, UpdatePackageInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(ctx, pkg.ID))
	err = svc.Delete(ctx, pkg.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateRejectsNonPositiveValue(t *testing.T) {
	svc, err := NewService(&fakeRepository{}, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreatePackageInput{Nome: "Kit", Valor: decimal.Zero})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type fakeRepository struct {
	Repository
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }
